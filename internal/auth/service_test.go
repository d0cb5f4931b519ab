package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/men4u-admin/internal/activity"
	"github.com/angelmondragon/men4u-admin/internal/session"
	"github.com/angelmondragon/men4u-admin/pkg/config"
	"github.com/angelmondragon/men4u-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/men4u"
	"github.com/angelmondragon/men4u-admin/pkg/types"
)

type stubAPI struct {
	otpReqs    []men4u.OTPRequest
	verifyReqs []men4u.VerifyOTPRequest
	result     *men4u.LoginResult
	err        error
}

func (s *stubAPI) RequestOTP(_ context.Context, req men4u.OTPRequest) (*men4u.Ack, error) {
	s.otpReqs = append(s.otpReqs, req)
	if s.err != nil {
		return nil, s.err
	}
	return &men4u.Ack{Detail: "OTP sent"}, nil
}

func (s *stubAPI) VerifyOTP(_ context.Context, req men4u.VerifyOTPRequest) (*men4u.LoginResult, error) {
	s.verifyReqs = append(s.verifyReqs, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type captureRecorder struct {
	events []activity.Event
}

func (c *captureRecorder) Record(_ context.Context, _ *session.Session, ev activity.Event) {
	c.events = append(c.events, ev)
}

func buildService(t *testing.T, api *stubAPI) (Service, *session.MemoryStore, *captureRecorder) {
	t.Helper()
	store := session.NewMemoryStore()
	manager, err := session.NewManager(store, config.ConsoleConfig{
		JWTSecret:         "secret",
		JWTIssuer:         "men4u-admin",
		MaxSessionMinutes: 60,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	recorder := &captureRecorder{}
	svc, err := NewService(ServiceParams{API: api, Sessions: manager, Recorder: recorder})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store, recorder
}

func loginResult() *men4u.LoginResult {
	return &men4u.LoginResult{
		AccessToken: "abc",
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(time.Hour),
		UserID:      types.ID("7"),
		Name:        "Asha",
		Mobile:      "9876543210",
		Role:        "admin",
	}
}

func TestRequestOTPNormalizesMobile(t *testing.T) {
	api := &stubAPI{}
	svc, _, _ := buildService(t, api)

	ack, err := svc.RequestOTP(context.Background(), OTPRequest{Mobile: "98765-43210", Role: "Admin"})
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}
	if ack.Detail != "OTP sent" {
		t.Fatalf("unexpected ack %+v", ack)
	}
	last := api.otpReqs[len(api.otpReqs)-1]
	if last.Mobile != "9876543210" || last.Role != "admin" {
		t.Fatalf("unexpected upstream request %+v", last)
	}

	if _, err := svc.RequestOTP(context.Background(), OTPRequest{Mobile: "12345"}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for short mobile, got %v", err)
	}
}

func TestLoginOpensSessionAndRecords(t *testing.T) {
	api := &stubAPI{result: loginResult()}
	svc, store, recorder := buildService(t, api)

	resp, issued, err := svc.Login(context.Background(), LoginRequest{Mobile: "9876543210", OTP: " 1234 "})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.AccessToken != issued.Token {
		t.Fatalf("expected console token in response, got %+v", resp)
	}
	if resp.Profile.Name != "Asha" || resp.Profile.UserID != "7" {
		t.Fatalf("unexpected profile %+v", resp.Profile)
	}
	if resp.ExpiresIn <= 0 {
		t.Fatalf("expected positive expires_in, got %d", resp.ExpiresIn)
	}
	if api.verifyReqs[0].OTP != "1234" {
		t.Fatalf("expected trimmed otp, got %q", api.verifyReqs[0].OTP)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one persisted session, got %d", store.Len())
	}
	if len(recorder.events) != 1 || recorder.events[0].Action != enums.ActivityActionLogin {
		t.Fatalf("expected login activity, got %+v", recorder.events)
	}
}

func TestLoginRejectsBadOTP(t *testing.T) {
	api := &stubAPI{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid OTP")}
	svc, store, recorder := buildService(t, api)

	_, _, err := svc.Login(context.Background(), LoginRequest{Mobile: "9876543210", OTP: "0000"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized || typed.Message() != "Invalid OTP" {
		t.Fatalf("expected backend message, got %v", err)
	}
	if store.Len() != 0 || len(recorder.events) != 0 {
		t.Fatal("failed login must not open a session")
	}

	if _, _, err := svc.Login(context.Background(), LoginRequest{Mobile: "9876543210"}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing otp, got %v", err)
	}
}

func TestLoginTransportFailureUsesFallback(t *testing.T) {
	api := &stubAPI{err: errors.New("dial tcp: refused")}
	svc, _, _ := buildService(t, api)

	_, _, err := svc.Login(context.Background(), LoginRequest{Mobile: "9876543210", OTP: "1"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency || typed.Message() != "Login failed" {
		t.Fatalf("expected dependency fallback, got %v", err)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	api := &stubAPI{result: loginResult()}
	svc, store, recorder := buildService(t, api)

	_, issued, err := svc.Login(context.Background(), LoginRequest{Mobile: "9876543210", OTP: "1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), issued.Session); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected session record deleted, got %d", store.Len())
	}
	if issued.Session.IsAuthenticated() {
		t.Fatal("expected session to be signed out")
	}
	if got := recorder.events[len(recorder.events)-1].Action; got != enums.ActivityActionLogout {
		t.Fatalf("expected logout activity, got %s", got)
	}
}

func TestMeAndUpdateMe(t *testing.T) {
	api := &stubAPI{result: loginResult()}
	svc, _, _ := buildService(t, api)

	_, issued, err := svc.Login(context.Background(), LoginRequest{Mobile: "9876543210", OTP: "1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	name := "  Asha K "
	mobile := "91234 56789"
	updated, err := svc.UpdateMe(context.Background(), issued.Session, session.ProfilePatch{Name: &name, Mobile: &mobile})
	if err != nil {
		t.Fatalf("update me: %v", err)
	}
	if updated.Name != "Asha K" || updated.Mobile != "9123456789" || updated.Role != "admin" {
		t.Fatalf("unexpected profile %+v", updated)
	}

	me, err := svc.Me(issued.Session)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Name != "Asha K" {
		t.Fatalf("expected merged profile, got %+v", me)
	}

	short := "123"
	if _, err := svc.UpdateMe(context.Background(), issued.Session, session.ProfilePatch{Mobile: &short}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := svc.Me(session.Detached(session.Record{ID: "anon"}, nil)); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found without profile, got %v", err)
	}
}
