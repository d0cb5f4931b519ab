package qrtemplates

import (
	"context"
	"io"
	"strings"

	"github.com/angelmondragon/men4u-admin/internal/activity"
	"github.com/angelmondragon/men4u-admin/internal/listview"
	"github.com/angelmondragon/men4u-admin/internal/session"
	"github.com/angelmondragon/men4u-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/men4u"
	"github.com/angelmondragon/men4u-admin/pkg/types"
)

const screen = "qr_templates"

// API is the slice of the men4u client used here.
type API interface {
	ListQRTemplates(ctx context.Context, token string) ([]men4u.QRTemplate, error)
	ViewQRTemplate(ctx context.Context, token string, userID, templateID types.ID) (*men4u.QRTemplate, error)
	CreateQRTemplate(ctx context.Context, token string, upload men4u.QRTemplateUpload) (*men4u.Ack, error)
	UpdateQRTemplate(ctx context.Context, token string, upload men4u.QRTemplateUpload) (*men4u.Ack, error)
	DeleteQRTemplate(ctx context.Context, token string, userID, templateID types.ID) (*men4u.Ack, error)
}

// Row is a template with its overlay position parsed. Unknown positions are left blank.
type Row struct {
	men4u.QRTemplate
	Position enums.QRPosition `json:"position,omitempty"`
}

// Input is the template form. Image is required on create only.
type Input struct {
	Name      string
	Position  string
	ImageName string
	Image     io.Reader
}

// DeleteResult is the refreshed list after a delete. RefreshError is set
// instead of List when the reload failed; the delete itself went through.
type DeleteResult struct {
	Ack          *men4u.Ack            `json:"ack"`
	List         *listview.Result[Row] `json:"list,omitempty"`
	RefreshError *types.APIError       `json:"refresh_error,omitempty"`
}

// Service exposes the QR template screens.
type Service interface {
	List(ctx context.Context, sess *session.Session, q listview.Query) (*listview.Result[Row], error)
	Get(ctx context.Context, sess *session.Session, templateID types.ID) (*Row, error)
	Create(ctx context.Context, sess *session.Session, input Input) (*men4u.Ack, error)
	Update(ctx context.Context, sess *session.Session, templateID types.ID, input Input) (*men4u.Ack, error)
	Delete(ctx context.Context, sess *session.Session, templateID types.ID, q listview.Query) (*DeleteResult, error)
}

// ServiceParams groups dependencies for the QR template service.
type ServiceParams struct {
	API      API
	Loader   *listview.Loader
	Recorder activity.Recorder
}

type service struct {
	api      API
	loader   *listview.Loader
	recorder activity.Recorder
}

// NewService builds the QR template service.
func NewService(params ServiceParams) (Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "men4u api is required")
	}
	if params.Loader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "list loader is required")
	}
	recorder := params.Recorder
	if recorder == nil {
		recorder = activity.Nop{}
	}
	return &service{api: params.API, loader: params.Loader, recorder: recorder}, nil
}

func toRow(t men4u.QRTemplate) Row {
	position, _ := enums.ParseQRPosition(t.QROverlayPosition)
	return Row{QRTemplate: t, Position: position}
}

func (s *service) spec(sess *session.Session, token string) listview.Spec[Row] {
	return listview.Spec[Row]{
		Scope:    listview.ScopeOf(sess, screen, ""),
		Endpoint: "/admin/list_qr_templates",
		Fallback: "Failed to fetch QR templates",
		Fetch: func(ctx context.Context) ([]Row, error) {
			templates, err := s.api.ListQRTemplates(ctx, token)
			if err != nil {
				return nil, err
			}
			rows := make([]Row, 0, len(templates))
			for _, t := range templates {
				rows = append(rows, toRow(t))
			}
			return rows, nil
		},
		Values: func(r Row) []string { return []string{r.Name, r.QROverlayPosition} },
	}
}

func (s *service) List(ctx context.Context, sess *session.Session, q listview.Query) (*listview.Result[Row], error) {
	token, _, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	return listview.Load(ctx, s.loader, s.spec(sess, token), q)
}

func (s *service) Get(ctx context.Context, sess *session.Session, templateID types.ID) (*Row, error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	if templateID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "template id is required")
	}

	scope := listview.ScopeOf(sess, screen, "")
	if row, found, err := listview.Lookup(ctx, s.loader.Tracker(), scope, func(r Row) bool { return r.QRTemplateID == templateID }); err == nil && found {
		return &row, nil
	}

	template, err := s.api.ViewQRTemplate(ctx, token, userID, templateID)
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to fetch QR template")
	}
	row := toRow(*template)
	return &row, nil
}

func (s *service) Create(ctx context.Context, sess *session.Session, input Input) (*men4u.Ack, error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	if input.Image == nil {
		return nil, fieldError("image", "is required")
	}
	upload, err := buildUpload("", userID, input)
	if err != nil {
		return nil, err
	}

	ack, err := s.api.CreateQRTemplate(ctx, token, upload)
	s.recorder.Record(ctx, sess, activity.Event{
		Action:   enums.ActivityActionCreate,
		Resource: "qr_template",
		Message:  upload.Name,
		Err:      err,
	})
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to create QR template")
	}
	return ack, nil
}

func (s *service) Update(ctx context.Context, sess *session.Session, templateID types.ID, input Input) (*men4u.Ack, error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	if templateID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "template id is required")
	}
	upload, err := buildUpload(templateID, userID, input)
	if err != nil {
		return nil, err
	}

	ack, err := s.api.UpdateQRTemplate(ctx, token, upload)
	s.recorder.Record(ctx, sess, activity.Event{
		Action:     enums.ActivityActionUpdate,
		Resource:   "qr_template",
		ResourceID: templateID.String(),
		Err:        err,
	})
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to update QR template")
	}
	s.loader.Invalidate(ctx, listview.ScopeOf(sess, screen, ""))
	return ack, nil
}

func (s *service) Delete(ctx context.Context, sess *session.Session, templateID types.ID, q listview.Query) (*DeleteResult, error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	if templateID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "template id is required")
	}

	ack, err := s.api.DeleteQRTemplate(ctx, token, userID, templateID)
	s.recorder.Record(ctx, sess, activity.Event{
		Action:     enums.ActivityActionDelete,
		Resource:   "qr_template",
		ResourceID: templateID.String(),
		Err:        err,
	})
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to delete QR template")
	}

	list, refreshErr := listview.Refresh(ctx, s.loader, s.spec(sess, token), q)
	return &DeleteResult{Ack: ack, List: list, RefreshError: refreshErr}, nil
}

func buildUpload(templateID, userID types.ID, input Input) (men4u.QRTemplateUpload, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return men4u.QRTemplateUpload{}, fieldError("name", "is required")
	}
	position, err := enums.ParseQRPosition(input.Position)
	if err != nil {
		return men4u.QRTemplateUpload{}, fieldError("qr_overlay_position", "must be center or top")
	}
	return men4u.QRTemplateUpload{
		QRTemplateID:      templateID,
		UserID:            userID,
		Name:              name,
		QROverlayPosition: position.String(),
		ImageName:         strings.TrimSpace(input.ImageName),
		Image:             input.Image,
	}, nil
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{field: msg})
}
