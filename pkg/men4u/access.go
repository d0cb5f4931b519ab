package men4u

import (
	"context"
	"net/http"

	"github.com/angelmondragon/men4u-admin/pkg/types"
)

const (
	pathListFunctionalities   = "/admin/get_ubac_functionalities"
	pathCreateFunctionality   = "/admin/create_ubac_functionality"
	pathRoleFunctionalityMaps = "/admin/get_ubac_role_functionality_mappings"
)

// Functionality is one UBAC permission.
type Functionality struct {
	FunctionalityID   types.ID `json:"functionality_id"`
	FunctionalityName string   `json:"functionality_name"`
	CreatedOn         string   `json:"created_on,omitempty"`
}

// RoleFunctionalityMapping is one role to functionality row.
type RoleFunctionalityMapping struct {
	RoleID            types.ID `json:"role_id"`
	RoleName          string   `json:"role_name"`
	FunctionalityID   types.ID `json:"functionality_id"`
	FunctionalityName string   `json:"functionality_name"`
	CreatedOn         string   `json:"created_on,omitempty"`
}

// CreateFunctionalityRequest names a new functionality.
type CreateFunctionalityRequest struct {
	FunctionalityName string `json:"functionality_name"`
}

func (c *Client) ListFunctionalities(ctx context.Context, token string) ([]Functionality, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: pathListFunctionalities, token: token})
	if err != nil {
		return nil, err
	}
	return decodeList[Functionality](pathListFunctionalities, raw, "data", "functionalities")
}

func (c *Client) CreateFunctionality(ctx context.Context, token string, req CreateFunctionalityRequest) (*Ack, error) {
	var ack Ack
	if err := c.call(ctx, request{method: http.MethodPost, path: pathCreateFunctionality, token: token, body: req}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) ListRoleFunctionalityMappings(ctx context.Context, token string) ([]RoleFunctionalityMapping, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: pathRoleFunctionalityMaps, token: token})
	if err != nil {
		return nil, err
	}
	return decodeList[RoleFunctionalityMapping](pathRoleFunctionalityMaps, raw, "data", "mappings")
}
