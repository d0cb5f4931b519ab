package accesscontrol

import (
	"context"
	"strings"

	"github.com/angelmondragon/men4u-admin/internal/activity"
	"github.com/angelmondragon/men4u-admin/internal/listview"
	"github.com/angelmondragon/men4u-admin/internal/session"
	"github.com/angelmondragon/men4u-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/men4u"
	"github.com/angelmondragon/men4u-admin/pkg/types"
)

const (
	screenFunctionalities = "functionalities"
	screenRoles           = "roles"
)

// API is the slice of the men4u client used here.
type API interface {
	ListFunctionalities(ctx context.Context, token string) ([]men4u.Functionality, error)
	CreateFunctionality(ctx context.Context, token string, req men4u.CreateFunctionalityRequest) (*men4u.Ack, error)
	ListRoleFunctionalityMappings(ctx context.Context, token string) ([]men4u.RoleFunctionalityMapping, error)
}

// RoleFunctionality is a functionality granted to a role.
type RoleFunctionality struct {
	FunctionalityID   types.ID `json:"functionality_id"`
	FunctionalityName string   `json:"functionality_name"`
	CreatedOn         string   `json:"created_on,omitempty"`
}

// Role groups the mapping rows of one role.
type Role struct {
	RoleID          types.ID            `json:"role_id"`
	RoleName        string              `json:"role_name"`
	Functionalities []RoleFunctionality `json:"functionalities"`
}

// CreateFunctionalityInput is the create form.
type CreateFunctionalityInput struct {
	FunctionalityName string `json:"functionality_name" validate:"required,max=100"`
}

// Service exposes the roles and functionalities screens.
type Service interface {
	ListFunctionalities(ctx context.Context, sess *session.Session, q listview.Query) (*listview.Result[men4u.Functionality], error)
	CreateFunctionality(ctx context.Context, sess *session.Session, input CreateFunctionalityInput) (*men4u.Ack, error)
	ListRoles(ctx context.Context, sess *session.Session, q listview.Query) (*listview.Result[Role], error)
}

// ServiceParams groups dependencies for the access control service.
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

// NewService builds the access control service.
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

func (s *service) ListFunctionalities(ctx context.Context, sess *session.Session, q listview.Query) (*listview.Result[men4u.Functionality], error) {
	token, _, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	return listview.Load(ctx, s.loader, listview.Spec[men4u.Functionality]{
		Scope:    listview.ScopeOf(sess, screenFunctionalities, ""),
		Endpoint: "/admin/get_ubac_functionalities",
		Fallback: "Failed to fetch functionalities",
		Fetch: func(ctx context.Context) ([]men4u.Functionality, error) {
			return s.api.ListFunctionalities(ctx, token)
		},
		Values: func(f men4u.Functionality) []string { return []string{f.FunctionalityName} },
	}, q)
}

func (s *service) CreateFunctionality(ctx context.Context, sess *session.Session, input CreateFunctionalityInput) (*men4u.Ack, error) {
	token, _, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.FunctionalityName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "functionality name is required").
			WithDetails(map[string]any{"field": "functionality_name"})
	}

	ack, err := s.api.CreateFunctionality(ctx, token, men4u.CreateFunctionalityRequest{FunctionalityName: name})
	s.recorder.Record(ctx, sess, activity.Event{
		Action:   enums.ActivityActionCreate,
		Resource: "functionality",
		Message:  name,
		Err:      err,
	})
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to create functionality")
	}
	return ack, nil
}

func (s *service) ListRoles(ctx context.Context, sess *session.Session, q listview.Query) (*listview.Result[Role], error) {
	token, _, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	return listview.Load(ctx, s.loader, listview.Spec[Role]{
		Scope:    listview.ScopeOf(sess, screenRoles, ""),
		Endpoint: "/admin/get_ubac_role_functionality_mappings",
		Fallback: "Failed to fetch roles",
		Fetch: func(ctx context.Context) ([]Role, error) {
			rows, err := s.api.ListRoleFunctionalityMappings(ctx, token)
			if err != nil {
				return nil, err
			}
			return GroupRoles(rows), nil
		},
		Values: func(r Role) []string { return []string{r.RoleName} },
	}, q)
}

// GroupRoles folds mapping rows into one Role per role id, keeping the
// order in which roles and their functionalities first appear.
func GroupRoles(rows []men4u.RoleFunctionalityMapping) []Role {
	roles := []Role{}
	index := map[types.ID]int{}
	for _, row := range rows {
		i, ok := index[row.RoleID]
		if !ok {
			i = len(roles)
			index[row.RoleID] = i
			roles = append(roles, Role{RoleID: row.RoleID, RoleName: row.RoleName, Functionalities: []RoleFunctionality{}})
		}
		if row.FunctionalityID.IsZero() && row.FunctionalityName == "" {
			continue
		}
		roles[i].Functionalities = append(roles[i].Functionalities, RoleFunctionality{
			FunctionalityID:   row.FunctionalityID,
			FunctionalityName: row.FunctionalityName,
			CreatedOn:         row.CreatedOn,
		})
	}
	return roles
}
