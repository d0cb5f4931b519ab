package men4u

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: rt})}, opts...)
	client, err := NewClient("http://men4u.test/v2", opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

type recordingObserver struct {
	endpoints []string
	statuses  []int
}

func (r *recordingObserver) ObserveRequest(endpoint string, status int, _ time.Duration) {
	r.endpoints = append(r.endpoints, endpoint)
	r.statuses = append(r.statuses, status)
}

func TestNewClientRejectsRelativeBaseURL(t *testing.T) {
	if _, err := NewClient("/v2"); err == nil {
		t.Fatal("expected relative base url to fail")
	}
	client, err := NewClient("")
	if err != nil {
		t.Fatalf("default base url: %v", err)
	}
	if client.baseURL != DefaultBaseURL || client.AppSource() != DefaultAppSource {
		t.Fatalf("unexpected defaults %q %q", client.baseURL, client.AppSource())
	}
}

func TestMissingTokenShortCircuits(t *testing.T) {
	called := false
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		called = true
		return jsonResponse(http.StatusOK, `[]`), nil
	})

	_, err := client.ListFunctionalities(context.Background(), "  ")
	if err == nil {
		t.Fatal("expected missing token error")
	}
	if called {
		t.Fatal("request must not be sent without a token")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if typed.Message() != "No authentication token available" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestRequestsCarryAuthorizationAndJSONHeaders(t *testing.T) {
	var captured *http.Request
	var body map[string]any
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		raw, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"detail":"Successfully retrieved outlets","data":[{"outlet_id":3,"outlet_name":"Cafe","outlet_code":"C3","is_open":1,"outlet_status":0}]}`), nil
	})

	outlets, err := client.ListOutlets(context.Background(), "Bearer abc", "9")
	if err != nil {
		t.Fatalf("list outlets: %v", err)
	}
	if captured.URL.String() != "http://men4u.test/v2/common/listview_outlet" {
		t.Fatalf("unexpected url %s", captured.URL)
	}
	if captured.Method != http.MethodPost {
		t.Fatalf("unexpected method %s", captured.Method)
	}
	if captured.Header.Get("Authorization") != "Bearer abc" {
		t.Fatalf("unexpected authorization %q", captured.Header.Get("Authorization"))
	}
	if captured.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type %q", captured.Header.Get("Content-Type"))
	}
	if body["user_id"] != float64(9) || body["app_source"] != "admin_dashboard" {
		t.Fatalf("unexpected body %v", body)
	}
	if len(outlets) != 1 || outlets[0].OutletID != "3" || !outlets[0].IsOpen.Bool() || outlets[0].OutletStatus.Bool() {
		t.Fatalf("unexpected outlets %+v", outlets)
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		code    pkgerrors.Code
		message string
	}{
		{name: "detail", status: http.StatusNotFound, body: `{"detail":"Owner not found"}`, code: pkgerrors.CodeNotFound, message: "Owner not found"},
		{name: "message", status: http.StatusBadRequest, body: `{"message":"Mobile already exists"}`, code: pkgerrors.CodeValidation, message: "Mobile already exists"},
		{name: "msg", status: http.StatusForbidden, body: `{"msg":"Not allowed"}`, code: pkgerrors.CodeForbidden, message: "Not allowed"},
		{name: "validation list", status: http.StatusUnprocessableEntity, body: `{"detail":[{"msg":"field required"},{"msg":"bad mobile"}]}`, code: pkgerrors.CodeValidation, message: "field required; bad mobile"},
		{name: "no message", status: http.StatusInternalServerError, body: `<html>oops</html>`, code: pkgerrors.CodeDependency, message: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(*http.Request) (*http.Response, error) {
				return jsonResponse(tc.status, tc.body), nil
			})
			_, err := client.ListFunctionalities(context.Background(), "Bearer t")
			typed := pkgerrors.As(err)
			if typed == nil {
				t.Fatalf("expected typed error, got %v", err)
			}
			if typed.Code() != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, typed.Code())
			}
			if typed.Message() != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, typed.Message())
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode() != tc.status || apiErr.Endpoint() != pathListFunctionalities {
				t.Fatalf("expected api error with status %d, got %v", tc.status, err)
			}

			fallback := pkgerrors.Fallback(err, "Failed to fetch functionalities")
			want := tc.message
			if want == "" {
				want = "Failed to fetch functionalities"
			}
			if fallback.Message() != want {
				t.Fatalf("expected fallback message %q, got %q", want, fallback.Message())
			}
		})
	}
}

func TestTransportFailureIsDependencyError(t *testing.T) {
	observer := &recordingObserver{}
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}, WithObserver(observer))

	_, err := client.ListQRTemplates(context.Background(), "Bearer t")
	if !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(observer.statuses) != 1 || observer.statuses[0] != 0 || observer.endpoints[0] != pathListQRTemplates {
		t.Fatalf("unexpected observations %+v", observer)
	}
}

func TestListDecodingAcceptsBareArraysAndWrappers(t *testing.T) {
	bodies := []string{
		`[{"functionality_id":1,"functionality_name":"manage_orders"}]`,
		`{"data":[{"functionality_id":1,"functionality_name":"manage_orders"}]}`,
		`{"functionalities":[{"functionality_id":"1","functionality_name":"manage_orders"}]}`,
	}
	for _, body := range bodies {
		client := newTestClient(t, func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, body), nil
		})
		items, err := client.ListFunctionalities(context.Background(), "Bearer t")
		if err != nil {
			t.Fatalf("%s: %v", body, err)
		}
		if len(items) != 1 || items[0].FunctionalityID != "1" || items[0].FunctionalityName != "manage_orders" {
			t.Fatalf("%s: unexpected items %+v", body, items)
		}
	}

	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"detail":"ok"}`), nil
	})
	if _, err := client.ListFunctionalities(context.Background(), "Bearer t"); !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected missing list to be a dependency error, got %v", err)
	}
}

func TestVerifyOTPParsesCredential(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `{"access_token":"abc","token_type":"Bearer","expires_at":"2030-01-02 03:04:05","user_id":7,"name":"Asha","mobile":"9876543210","email":"a@example.com","role":"admin"}`), nil
	})

	result, err := client.VerifyOTP(context.Background(), VerifyOTPRequest{Mobile: "9876543210", OTP: "1234"})
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if captured.Header.Get("Authorization") != "" {
		t.Fatal("login calls must not send an authorization header")
	}
	if captured.URL.Path != "/v2/common/verify_otp" {
		t.Fatalf("unexpected path %s", captured.URL.Path)
	}
	want := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	if !result.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, result.ExpiresAt)
	}
	if result.AccessToken != "abc" || result.TokenType != "Bearer" || result.UserID != "7" || result.Role != "admin" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestParseTimestampFormats(t *testing.T) {
	want := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, raw := range []string{`"2030-01-02T03:04:05Z"`, `"2030-01-02T03:04:05"`, `"2030-01-02 03:04:05"`, `1893553445`} {
		got, err := ParseTimestamp(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		if !got.Equal(want) {
			t.Fatalf("%s: expected %v, got %v", raw, want, got)
		}
	}
	if _, err := ParseTimestamp(json.RawMessage(`null`)); err == nil {
		t.Fatal("expected null expiry to fail")
	}
}

func TestListOwnersUsesActorPath(t *testing.T) {
	observer := &recordingObserver{}
	var captured *http.Request
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `[{"user_id":11,"name":"Ravi","is_active":1,"account_type":"live"}]`), nil
	}, WithObserver(observer))

	owners, err := client.ListOwners(context.Background(), "Bearer t", "5")
	if err != nil {
		t.Fatalf("list owners: %v", err)
	}
	if captured.Method != http.MethodGet || captured.URL.Path != "/v2/admin/listview_owner/5" {
		t.Fatalf("unexpected request %s %s", captured.Method, captured.URL.Path)
	}
	if len(owners) != 1 || owners[0].UserID != "11" || !owners[0].IsActive.Bool() {
		t.Fatalf("unexpected owners %+v", owners)
	}
	if observer.endpoints[0] != pathListOwners || observer.statuses[0] != http.StatusOK {
		t.Fatalf("expected path template label, got %+v", observer)
	}
}

func TestDeletePartnerSendsBody(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodDelete {
			t.Fatalf("unexpected method %s", req.Method)
		}
		raw, _ := io.ReadAll(req.Body)
		if string(raw) != `{"partner_id":4,"user_id":1}` {
			t.Fatalf("unexpected body %s", raw)
		}
		return jsonResponse(http.StatusOK, `{"detail":"Partner deleted successfully"}`), nil
	})

	ack, err := client.DeletePartner(context.Background(), "Bearer t", "1", "4")
	if err != nil {
		t.Fatalf("delete partner: %v", err)
	}
	if ack.Detail != "Partner deleted successfully" {
		t.Fatalf("unexpected ack %+v", ack)
	}
}

func TestCreateQRTemplateSendsMultipart(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if !strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data") {
			t.Fatalf("unexpected content type %q", req.Header.Get("Content-Type"))
		}
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if req.FormValue("name") != "Garden" || req.FormValue("qr_overlay_position") != "top" || req.FormValue("user_id") != "1" {
			t.Fatalf("unexpected form %v", req.MultipartForm.Value)
		}
		file, header, err := req.FormFile("image")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "garden.jpg" || string(data) != "jpeg-bytes" {
			t.Fatalf("unexpected file %s %q", header.Filename, data)
		}
		return jsonResponse(http.StatusOK, `{"detail":"Template created"}`), nil
	})

	_, err := client.CreateQRTemplate(context.Background(), "Bearer t", QRTemplateUpload{
		UserID:            "1",
		Name:              " Garden ",
		QROverlayPosition: "top",
		ImageName:         "garden.jpg",
		Image:             strings.NewReader("jpeg-bytes"),
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	if _, err := client.CreateQRTemplate(context.Background(), "Bearer t", QRTemplateUpload{Name: "x"}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected missing image to fail validation, got %v", err)
	}
}

func TestViewTicketAndCustomers(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/v2/admin/ticket_view":
			return jsonResponse(http.StatusOK, `{"ticket":{"ticket_id":9,"ticket_number":"TK-9","status":"open"}}`), nil
		case "/v2/admin/customer_listview":
			return jsonResponse(http.StatusOK, `{"outlet_name":"Cafe","customers":[{"customer_id":1,"name":"A","mobile":"1","order_count":3}],"total_customers":1}`), nil
		}
		t.Fatalf("unexpected path %s", req.URL.Path)
		return nil, nil
	})

	thread, err := client.ViewTicket(context.Background(), "Bearer t", "9")
	if err != nil {
		t.Fatalf("view ticket: %v", err)
	}
	if thread.Ticket == nil || thread.Ticket.TicketNumber != "TK-9" || thread.Chat == nil {
		t.Fatalf("unexpected thread %+v", thread)
	}

	list, err := client.ListCustomers(context.Background(), "Bearer t", "2")
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if list.OutletName != "Cafe" || len(list.Customers) != 1 || list.TotalCustomers != 1 {
		t.Fatalf("unexpected customers %+v", list)
	}
}

func TestAdminHomeKeepsNumericCounters(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"detail":"ok","total_outlets":12,"total_owners":"4","label":"x"}`), nil
	})

	home, err := client.AdminHome(context.Background(), "Bearer t")
	if err != nil {
		t.Fatalf("admin home: %v", err)
	}
	if home.Counts["total_outlets"] != 12 || home.Counts["total_owners"] != 4 {
		t.Fatalf("unexpected counts %+v", home.Counts)
	}
	if _, ok := home.Counts["label"]; ok {
		t.Fatal("non numeric fields must be dropped")
	}
}
