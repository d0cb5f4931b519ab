package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/men4u-admin/internal/listview"
	"github.com/angelmondragon/men4u-admin/internal/owners"
	"github.com/angelmondragon/men4u-admin/internal/qrtemplates"
	"github.com/angelmondragon/men4u-admin/internal/session"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/men4u"
	"github.com/angelmondragon/men4u-admin/pkg/types"
)

func signedInRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	sess := session.Detached(session.Record{
		ID:         "sess-1",
		Credential: &session.Credential{AccessToken: "abc", TokenType: "Bearer", ExpiresAt: time.Now().Add(time.Hour)},
		Profile:    &session.Profile{UserID: "7", Name: "Asha"},
	}, nil)
	return req.WithContext(session.WithContext(req.Context(), sess))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

type stubOwners struct {
	list       *listview.Result[owners.Row]
	listErr    error
	createErr  error
	lastQuery  listview.Query
	lastDelete struct {
		id      types.ID
		confirm bool
	}
}

func (s *stubOwners) List(_ context.Context, _ *session.Session, q listview.Query) (*listview.Result[owners.Row], error) {
	s.lastQuery = q
	return s.list, s.listErr
}

func (s *stubOwners) Get(_ context.Context, _ *session.Session, ownerID types.ID) (*owners.Row, error) {
	return &owners.Row{Owner: men4u.Owner{UserID: ownerID, Name: "Ravi"}}, nil
}

func (s *stubOwners) Create(_ context.Context, _ *session.Session, _ owners.CreateInput) (*men4u.Ack, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &men4u.Ack{Detail: "Owner created"}, nil
}

func (s *stubOwners) Delete(_ context.Context, _ *session.Session, ownerID types.ID, confirm bool, _ listview.Query) (*owners.DeleteResult, error) {
	s.lastDelete.id = ownerID
	s.lastDelete.confirm = confirm
	if !confirm {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delete requires confirmation")
	}
	return &owners.DeleteResult{Ack: &men4u.Ack{Detail: "deleted"}, List: s.list}, nil
}

func TestOwnerListRequiresSession(t *testing.T) {
	handler := OwnerList(&stubOwners{}, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/owners", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestOwnerListParsesQuery(t *testing.T) {
	svc := &stubOwners{list: &listview.Result[owners.Row]{Items: []owners.Row{}}}
	handler := OwnerList(svc, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, signedInRequest(http.MethodGet, "/api/v1/owners?search=%20ravi%20&page=2&page_size=20", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastQuery.Search != "ravi" || svc.lastQuery.Page != 2 || svc.lastQuery.PageSize != 20 {
		t.Fatalf("unexpected query %+v", svc.lastQuery)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, signedInRequest(http.MethodGet, "/api/v1/owners?page=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for page 0, got %d", rec.Code)
	}
}

func TestOwnerListServesStaleRowsWithBanner(t *testing.T) {
	svc := &stubOwners{list: &listview.Result[owners.Row]{
		Items: []owners.Row{{Owner: men4u.Owner{UserID: "1", Name: "Ravi"}}},
		Stale: true,
		Error: &types.APIError{Code: string(pkgerrors.CodeDependency), Message: "Failed to fetch owners"},
	}}
	rec := httptest.NewRecorder()
	OwnerList(svc, nil).ServeHTTP(rec, signedInRequest(http.MethodGet, "/api/v1/owners", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Message != "Failed to fetch owners" {
		t.Fatalf("expected banner next to data, got %s", rec.Body.String())
	}
	if !strings.Contains(string(env.Data), `"Ravi"`) {
		t.Fatalf("expected last-good rows, got %s", env.Data)
	}
}

func TestOwnerCreateEchoesDraftOnFailure(t *testing.T) {
	svc := &stubOwners{createErr: pkgerrors.New(pkgerrors.CodeValidation, "Mobile already registered")}
	body := `{"name":"Ravi","mobile":"9876543210","functionality_ids":[1,2]}`
	rec := httptest.NewRecorder()
	OwnerCreate(svc, nil).ServeHTTP(rec, signedInRequest(http.MethodPost, "/api/v1/owners", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error.Message != "Mobile already registered" {
		t.Fatalf("expected backend message, got %q", env.Error.Message)
	}
	var details struct {
		Draft struct {
			Name             string  `json:"name"`
			FunctionalityIDs []int64 `json:"functionality_ids"`
		} `json:"draft"`
	}
	if err := json.Unmarshal(env.Error.Details, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if details.Draft.Name != "Ravi" || len(details.Draft.FunctionalityIDs) != 2 {
		t.Fatalf("expected draft echoed back, got %s", env.Error.Details)
	}
}

func TestOwnerCreateRejectsUnknownFields(t *testing.T) {
	rec := httptest.NewRecorder()
	OwnerCreate(&stubOwners{}, nil).ServeHTTP(rec, signedInRequest(http.MethodPost, "/api/v1/owners", strings.NewReader(`{"name":"Ravi","mobile":"1","password":"x"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestOwnerDeleteReadsConfirm(t *testing.T) {
	svc := &stubOwners{list: &listview.Result[owners.Row]{Items: []owners.Row{}, Empty: true, Message: "No data found"}}
	handler := OwnerDelete(svc, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withURLParam(signedInRequest(http.MethodDelete, "/api/v1/owners/9", nil), "ownerId", "9"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without confirm, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withURLParam(signedInRequest(http.MethodDelete, "/api/v1/owners/9?confirm=true", nil), "ownerId", "9"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with confirm, got %d", rec.Code)
	}
	if svc.lastDelete.id != "9" || !svc.lastDelete.confirm {
		t.Fatalf("unexpected delete call %+v", svc.lastDelete)
	}
	env := decodeEnvelope(t, rec)
	if !strings.Contains(string(env.Data), `"No data found"`) {
		t.Fatalf("expected refreshed list in response, got %s", env.Data)
	}
}

type stubTemplates struct {
	created qrtemplates.Input
	image   []byte
}

func (s *stubTemplates) List(context.Context, *session.Session, listview.Query) (*listview.Result[qrtemplates.Row], error) {
	return &listview.Result[qrtemplates.Row]{}, nil
}

func (s *stubTemplates) Get(context.Context, *session.Session, types.ID) (*qrtemplates.Row, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no template data available")
}

func (s *stubTemplates) Create(_ context.Context, _ *session.Session, input qrtemplates.Input) (*men4u.Ack, error) {
	s.created = input
	if input.Image == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"image": "is required"})
	}
	data, err := io.ReadAll(input.Image)
	if err != nil {
		return nil, err
	}
	s.image = data
	return &men4u.Ack{Detail: "Template created"}, nil
}

func (s *stubTemplates) Update(_ context.Context, _ *session.Session, _ types.ID, input qrtemplates.Input) (*men4u.Ack, error) {
	s.created = input
	return &men4u.Ack{Detail: "Template updated"}, nil
}

func (s *stubTemplates) Delete(context.Context, *session.Session, types.ID, listview.Query) (*qrtemplates.DeleteResult, error) {
	return &qrtemplates.DeleteResult{}, nil
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("image", fileName)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestQRTemplateCreateReadsMultipart(t *testing.T) {
	svc := &stubTemplates{}
	body, contentType := multipartBody(t, map[string]string{"name": " Table card ", "position": "center"}, "card.png", []byte("png-bytes"))
	req := signedInRequest(http.MethodPost, "/api/v1/qr-templates", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	QRTemplateCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.created.Name != "Table card" || svc.created.Position != "center" || svc.created.ImageName != "card.png" {
		t.Fatalf("unexpected input %+v", svc.created)
	}
	if string(svc.image) != "png-bytes" {
		t.Fatalf("unexpected image bytes %q", svc.image)
	}
}

func TestQRTemplateCreateWithoutImageEchoesDraft(t *testing.T) {
	svc := &stubTemplates{}
	body, contentType := multipartBody(t, map[string]string{"name": "Card", "position": "top"}, "", nil)
	req := signedInRequest(http.MethodPost, "/api/v1/qr-templates", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	QRTemplateCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !strings.Contains(string(env.Error.Details), `"draft":{"name":"Card","position":"top"}`) {
		t.Fatalf("expected draft in details, got %s", env.Error.Details)
	}
	if !strings.Contains(string(env.Error.Details), `"image":"is required"`) {
		t.Fatalf("expected field errors in details, got %s", env.Error.Details)
	}
}

func TestQRTemplateCreateRejectsJSON(t *testing.T) {
	req := signedInRequest(http.MethodPost, "/api/v1/qr-templates", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	QRTemplateCreate(&stubTemplates{}, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestNavigationResolvesActiveEntry(t *testing.T) {
	rec := httptest.NewRecorder()
	Navigation(nil).ServeHTTP(rec, signedInRequest(http.MethodGet, "/api/v1/navigation?path=/roles/3", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	var state struct {
		Active   string `json:"active"`
		Expanded string `json:"expanded"`
	}
	if err := json.Unmarshal(env.Data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Active != "Roles" || state.Expanded != "Access Control" {
		t.Fatalf("unexpected state %+v", state)
	}

	rec = httptest.NewRecorder()
	Navigation(nil).ServeHTTP(rec, signedInRequest(http.MethodGet, "/api/v1/navigation?path=/roles&expand=Access%20Control", nil))
	env = decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Expanded != "" {
		t.Fatalf("expected second expand to collapse the group, got %q", state.Expanded)
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }
