package partners

import (
	"context"

	"github.com/angelmondragon/men4u-admin/internal/activity"
	"github.com/angelmondragon/men4u-admin/internal/forms"
	"github.com/angelmondragon/men4u-admin/internal/listview"
	"github.com/angelmondragon/men4u-admin/internal/session"
	"github.com/angelmondragon/men4u-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/men4u"
	"github.com/angelmondragon/men4u-admin/pkg/types"
)

const screen = "partners"

// API is the slice of the men4u client used here.
type API interface {
	ListPartners(ctx context.Context, token string, userID types.ID) ([]men4u.Partner, error)
	ViewPartner(ctx context.Context, token string, userID, partnerID types.ID) (*men4u.Partner, error)
	CreatePartner(ctx context.Context, token string, req men4u.PartnerPayload) (*men4u.Ack, error)
	UpdatePartner(ctx context.Context, token string, req men4u.PartnerPayload) (*men4u.Ack, error)
	DeletePartner(ctx context.Context, token string, userID, partnerID types.ID) (*men4u.Ack, error)
}

// Row is a partner with its active flag read.
type Row struct {
	men4u.Partner
	Status enums.ActiveStatus `json:"status"`
}

// Input is the create and edit form. Active is only sent on update.
type Input struct {
	forms.Person
	Active           *bool            `json:"is_active,omitempty"`
	FunctionalityIDs *forms.Selection `json:"functionality_ids"`
}

// DeleteResult is the refreshed list after a delete. RefreshError is set
// instead of List when the reload failed; the delete itself went through.
type DeleteResult struct {
	Ack          *men4u.Ack            `json:"ack"`
	List         *listview.Result[Row] `json:"list,omitempty"`
	RefreshError *types.APIError       `json:"refresh_error,omitempty"`
}

// Service exposes the partners screens.
type Service interface {
	List(ctx context.Context, sess *session.Session, q listview.Query) (*listview.Result[Row], error)
	Get(ctx context.Context, sess *session.Session, partnerID types.ID) (*Row, error)
	Create(ctx context.Context, sess *session.Session, input Input) (*men4u.Ack, error)
	Update(ctx context.Context, sess *session.Session, partnerID types.ID, input Input) (*men4u.Ack, error)
	Delete(ctx context.Context, sess *session.Session, partnerID types.ID, q listview.Query) (*DeleteResult, error)
}

// ServiceParams groups dependencies for the partners service.
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

// NewService builds the partners service.
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

func (s *service) spec(sess *session.Session, token string, userID types.ID) listview.Spec[Row] {
	return listview.Spec[Row]{
		Scope:    listview.ScopeOf(sess, screen, userID.String()),
		Endpoint: "/admin/listview_partner",
		Fallback: "Failed to fetch partners",
		Fetch: func(ctx context.Context) ([]Row, error) {
			partners, err := s.api.ListPartners(ctx, token, userID)
			if err != nil {
				return nil, err
			}
			rows := make([]Row, 0, len(partners))
			for _, partner := range partners {
				rows = append(rows, Row{Partner: partner, Status: enums.ActiveStatusFromFlag(partner.IsActive)})
			}
			return rows, nil
		},
		Values: func(r Row) []string { return []string{r.Name, r.Mobile, r.Email} },
		Stats:  listview.StatusStats(func(r Row) enums.ActiveStatus { return r.Status }),
	}
}

func (s *service) List(ctx context.Context, sess *session.Session, q listview.Query) (*listview.Result[Row], error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	return listview.Load(ctx, s.loader, s.spec(sess, token, userID), q)
}

// Get serves the partner from the list snapshot and only fetches by id when
// it was not part of the last list.
func (s *service) Get(ctx context.Context, sess *session.Session, partnerID types.ID) (*Row, error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	if partnerID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner id is required")
	}

	scope := listview.ScopeOf(sess, screen, userID.String())
	if row, found, err := listview.Lookup(ctx, s.loader.Tracker(), scope, func(r Row) bool { return r.UserID == partnerID }); err == nil && found {
		return &row, nil
	}

	partner, err := s.api.ViewPartner(ctx, token, userID, partnerID)
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to fetch partner details")
	}
	return &Row{Partner: *partner, Status: enums.ActiveStatusFromFlag(partner.IsActive)}, nil
}

func (s *service) Create(ctx context.Context, sess *session.Session, input Input) (*men4u.Ack, error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	payload, err := buildPayload(userID, "", input)
	if err != nil {
		return nil, err
	}
	payload.IsActive = nil

	ack, err := s.api.CreatePartner(ctx, token, payload)
	s.recorder.Record(ctx, sess, activity.Event{
		Action:   enums.ActivityActionCreate,
		Resource: "partner",
		Message:  payload.Name,
		Err:      err,
	})
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to create partner")
	}
	return ack, nil
}

func (s *service) Update(ctx context.Context, sess *session.Session, partnerID types.ID, input Input) (*men4u.Ack, error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	if partnerID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner id is required")
	}
	payload, err := buildPayload(userID, partnerID, input)
	if err != nil {
		return nil, err
	}

	ack, err := s.api.UpdatePartner(ctx, token, payload)
	s.recorder.Record(ctx, sess, activity.Event{
		Action:     enums.ActivityActionUpdate,
		Resource:   "partner",
		ResourceID: partnerID.String(),
		Err:        err,
	})
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to update partner")
	}
	s.loader.Invalidate(ctx, listview.ScopeOf(sess, screen, userID.String()))
	return ack, nil
}

// Delete removes the partner and reloads the list.
func (s *service) Delete(ctx context.Context, sess *session.Session, partnerID types.ID, q listview.Query) (*DeleteResult, error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	if partnerID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner id is required")
	}

	ack, err := s.api.DeletePartner(ctx, token, userID, partnerID)
	s.recorder.Record(ctx, sess, activity.Event{
		Action:     enums.ActivityActionDelete,
		Resource:   "partner",
		ResourceID: partnerID.String(),
		Err:        err,
	})
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to delete partner")
	}

	list, refreshErr := listview.Refresh(ctx, s.loader, s.spec(sess, token, userID), q)
	return &DeleteResult{Ack: ack, List: list, RefreshError: refreshErr}, nil
}

func buildPayload(userID, partnerID types.ID, input Input) (men4u.PartnerPayload, error) {
	person, err := input.Person.Normalize()
	if err != nil {
		return men4u.PartnerPayload{}, err
	}
	selection := input.FunctionalityIDs
	if selection == nil {
		selection = forms.NewSelection()
	}
	payload := men4u.PartnerPayload{
		PartnerID:        partnerID,
		UserID:           userID,
		Name:             person.Name,
		Mobile:           person.Mobile,
		Email:            person.Email,
		Address:          person.Address,
		AadharNumber:     person.AadharNumber,
		DOB:              person.DOB,
		FunctionalityIDs: selection.IDs(),
	}
	if input.Active != nil {
		flag := types.FlagFrom(*input.Active)
		payload.IsActive = &flag
	}
	return payload, nil
}
