package auth

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/men4u-admin/internal/activity"
	"github.com/angelmondragon/men4u-admin/internal/forms"
	"github.com/angelmondragon/men4u-admin/internal/session"
	"github.com/angelmondragon/men4u-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/men4u"
)

const resource = "session"

// API is the public login pair of the men4u client.
type API interface {
	RequestOTP(ctx context.Context, req men4u.OTPRequest) (*men4u.Ack, error)
	VerifyOTP(ctx context.Context, req men4u.VerifyOTPRequest) (*men4u.LoginResult, error)
}

type sessionIssuer interface {
	Login(ctx context.Context, result *men4u.LoginResult) (*session.Issued, error)
}

// Service signs operators in and out and exposes their profile.
type Service interface {
	RequestOTP(ctx context.Context, req OTPRequest) (*men4u.Ack, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, *session.Issued, error)
	Logout(ctx context.Context, sess *session.Session) error
	Me(sess *session.Session) (*session.Profile, error)
	UpdateMe(ctx context.Context, sess *session.Session, patch session.ProfilePatch) (*session.Profile, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	API      API
	Sessions sessionIssuer
	Recorder activity.Recorder
}

type service struct {
	api      API
	sessions sessionIssuer
	recorder activity.Recorder
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "men4u api is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	recorder := params.Recorder
	if recorder == nil {
		recorder = activity.Nop{}
	}
	return &service{api: params.API, sessions: params.Sessions, recorder: recorder}, nil
}

func (s *service) RequestOTP(ctx context.Context, req OTPRequest) (*men4u.Ack, error) {
	mobile, role, err := normalizeOperator(req.Mobile, req.Role)
	if err != nil {
		return nil, err
	}
	ack, err := s.api.RequestOTP(ctx, men4u.OTPRequest{Mobile: mobile, Role: role})
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to send OTP")
	}
	return ack, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, *session.Issued, error) {
	mobile, role, err := normalizeOperator(req.Mobile, req.Role)
	if err != nil {
		return nil, nil, err
	}
	otp := strings.TrimSpace(req.OTP)
	if otp == "" {
		return nil, nil, fieldError("otp", "is required")
	}

	result, err := s.api.VerifyOTP(ctx, men4u.VerifyOTPRequest{Mobile: mobile, OTP: otp, Role: role})
	if err != nil {
		return nil, nil, pkgerrors.Fallback(err, "Login failed")
	}
	issued, err := s.sessions.Login(ctx, result)
	if err != nil {
		return nil, nil, err
	}

	s.recorder.Record(ctx, issued.Session, activity.Event{
		Action:     enums.ActivityActionLogin,
		Resource:   resource,
		ResourceID: issued.Session.ID(),
	})

	profile, _ := issued.Session.Profile()
	return &LoginResponse{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresAt:   issued.ExpiresAt,
		ExpiresIn:   expiresIn(issued.ExpiresAt, time.Now()),
		Profile:     profile,
	}, issued, nil
}

// Logout records the sign-out while the profile is still present, then clears both stores.
func (s *service) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return nil
	}
	s.recorder.Record(ctx, sess, activity.Event{
		Action:     enums.ActivityActionLogout,
		Resource:   resource,
		ResourceID: sess.ID(),
	})
	if err := sess.Logout(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear session")
	}
	return nil
}

func (s *service) Me(sess *session.Session) (*session.Profile, error) {
	profile, ok := sess.Profile()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no profile data available")
	}
	return &profile, nil
}

func (s *service) UpdateMe(ctx context.Context, sess *session.Session, patch session.ProfilePatch) (*session.Profile, error) {
	if patch.Mobile != nil {
		mobile := forms.Mobile(*patch.Mobile)
		if len(mobile) != forms.MobileLength {
			return nil, fieldError("mobile", "must be 10 digits")
		}
		patch.Mobile = &mobile
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fieldError("name", "cannot be blank")
	}
	updated, err := sess.UpdateProfile(ctx, patch)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func normalizeOperator(rawMobile, rawRole string) (string, string, error) {
	mobile := forms.Mobile(rawMobile)
	if len(mobile) != forms.MobileLength {
		return "", "", fieldError("mobile", "must be 10 digits")
	}
	role := strings.TrimSpace(rawRole)
	if role == "" {
		return mobile, "", nil
	}
	parsed, err := enums.ParseActorRole(role)
	if err != nil {
		return "", "", fieldError("role", "is not a known role")
	}
	return mobile, parsed.String(), nil
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{field: msg})
}

// expiresIn is the remaining lifetime reported to the console.
func expiresIn(at, now time.Time) int64 {
	if !at.After(now) {
		return 0
	}
	return int64(at.Sub(now).Seconds())
}
