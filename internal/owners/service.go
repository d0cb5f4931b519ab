package owners

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

const screen = "owners"

// DefaultFunctionalityID is granted when the create form selects none.
const DefaultFunctionalityID int64 = 1

// API is the slice of the men4u client used here.
type API interface {
	ListOwners(ctx context.Context, token string, userID types.ID) ([]men4u.Owner, error)
	ViewOwner(ctx context.Context, token string, userID, ownerID types.ID) (*men4u.Owner, error)
	CreateOwner(ctx context.Context, token string, req men4u.CreateOwnerRequest) (*men4u.Ack, error)
	DeleteOwner(ctx context.Context, token string, userID, ownerID types.ID) (*men4u.Ack, error)
}

// Row is an owner with its active flag read.
type Row struct {
	men4u.Owner
	Status enums.ActiveStatus `json:"status"`
}

// CreateInput is the owner create form.
type CreateInput struct {
	forms.Person
	FunctionalityIDs *forms.Selection `json:"functionality_ids"`
}

// DeleteResult is the refreshed list after a delete. RefreshError is set
// instead of List when the reload failed; the delete itself went through.
type DeleteResult struct {
	Ack          *men4u.Ack            `json:"ack"`
	List         *listview.Result[Row] `json:"list,omitempty"`
	RefreshError *types.APIError       `json:"refresh_error,omitempty"`
}

// Service exposes the owners screens.
type Service interface {
	List(ctx context.Context, sess *session.Session, q listview.Query) (*listview.Result[Row], error)
	Get(ctx context.Context, sess *session.Session, ownerID types.ID) (*Row, error)
	Create(ctx context.Context, sess *session.Session, input CreateInput) (*men4u.Ack, error)
	Delete(ctx context.Context, sess *session.Session, ownerID types.ID, confirm bool, q listview.Query) (*DeleteResult, error)
}

// ServiceParams groups dependencies for the owners service.
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

// NewService builds the owners service.
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
		Endpoint: "/admin/listview_owner",
		Fallback: "Failed to fetch owners",
		Fetch: func(ctx context.Context) ([]Row, error) {
			owners, err := s.api.ListOwners(ctx, token, userID)
			if err != nil {
				return nil, err
			}
			rows := make([]Row, 0, len(owners))
			for _, owner := range owners {
				rows = append(rows, toRow(owner))
			}
			return rows, nil
		},
		Values: func(r Row) []string { return []string{r.Name, r.Mobile, r.Email, r.UserID.String()} },
		Stats:  listview.StatusStats(func(r Row) enums.ActiveStatus { return r.Status }),
	}
}

func toRow(owner men4u.Owner) Row {
	return Row{Owner: owner, Status: enums.ActiveStatusFromFlag(owner.IsActive)}
}

func (s *service) List(ctx context.Context, sess *session.Session, q listview.Query) (*listview.Result[Row], error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	return listview.Load(ctx, s.loader, s.spec(sess, token, userID), q)
}

// Get serves the owner from the list snapshot and only fetches by id when
// the owner was not part of the last list.
func (s *service) Get(ctx context.Context, sess *session.Session, ownerID types.ID) (*Row, error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	if ownerID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	scope := listview.ScopeOf(sess, screen, userID.String())
	if row, found, err := listview.Lookup(ctx, s.loader.Tracker(), scope, func(r Row) bool { return r.UserID == ownerID }); err == nil && found {
		return &row, nil
	}

	owner, err := s.api.ViewOwner(ctx, token, userID, ownerID)
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to fetch owner details")
	}
	row := toRow(*owner)
	return &row, nil
}

func (s *service) Create(ctx context.Context, sess *session.Session, input CreateInput) (*men4u.Ack, error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	person, err := input.Person.Normalize()
	if err != nil {
		return nil, err
	}
	selection := input.FunctionalityIDs
	if selection == nil {
		selection = forms.NewSelection()
	}

	ack, err := s.api.CreateOwner(ctx, token, men4u.CreateOwnerRequest{
		UserID:           userID,
		Name:             person.Name,
		Mobile:           person.Mobile,
		Email:            person.Email,
		Address:          person.Address,
		AadharNumber:     person.AadharNumber,
		DOB:              person.DOB,
		FunctionalityIDs: selection.OrDefault(DefaultFunctionalityID),
	})
	s.recorder.Record(ctx, sess, activity.Event{
		Action:   enums.ActivityActionCreate,
		Resource: "owner",
		Message:  person.Name,
		Err:      err,
	})
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to create owner")
	}
	return ack, nil
}

// Delete removes an owner once the operator confirmed, then reloads the list.
func (s *service) Delete(ctx context.Context, sess *session.Session, ownerID types.ID, confirm bool, q listview.Query) (*DeleteResult, error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	if ownerID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if !confirm {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delete must be confirmed").
			WithDetails(map[string]any{"field": "confirm"})
	}

	ack, err := s.api.DeleteOwner(ctx, token, userID, ownerID)
	s.recorder.Record(ctx, sess, activity.Event{
		Action:     enums.ActivityActionDelete,
		Resource:   "owner",
		ResourceID: ownerID.String(),
		Err:        err,
	})
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to delete owner")
	}

	list, refreshErr := listview.Refresh(ctx, s.loader, s.spec(sess, token, userID), q)
	return &DeleteResult{Ack: ack, List: list, RefreshError: refreshErr}, nil
}
