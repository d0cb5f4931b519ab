package men4u

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/men4u-admin/pkg/types"
)

const (
	pathListOwners  = "/admin/listview_owner"
	pathViewOwner   = "/admin/view_owner"
	pathCreateOwner = "/admin/create_owner"
	pathDeleteOwner = "/admin/delete_owner"
)

// Owner is a restaurant owner account.
type Owner struct {
	UserID          types.ID        `json:"user_id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Mobile          string          `json:"mobile"`
	Address         string          `json:"address"`
	DOB             string          `json:"dob,omitempty"`
	AadharNumber    string          `json:"aadhar_number,omitempty"`
	IsActive        types.Flag      `json:"is_active"`
	AccountType     string          `json:"account_type,omitempty"`
	Functionalities []Functionality `json:"functionalities,omitempty"`
	Outlets         []OwnerOutlet   `json:"outlets,omitempty"`
}

// OwnerOutlet is an outlet embedded in the owner detail.
type OwnerOutlet struct {
	OutletID   types.ID       `json:"outlet_id"`
	Name       string         `json:"name"`
	OutletCode string         `json:"outlet_code"`
	IsOpen     types.Flag     `json:"is_open"`
	Address    string         `json:"address"`
	Mobile     string         `json:"mobile"`
	OutletType string         `json:"outlet_type"`
	Settings   map[string]any `json:"settings,omitempty"`
}

// CreateOwnerRequest is the create_owner payload. UserID is the acting admin.
type CreateOwnerRequest struct {
	UserID           types.ID `json:"user_id"`
	Name             string   `json:"name"`
	Mobile           string   `json:"mobile"`
	Email            string   `json:"email"`
	Address          string   `json:"address"`
	AadharNumber     string   `json:"aadhar_number"`
	DOB              string   `json:"dob"`
	FunctionalityIDs []int64  `json:"functionality_ids"`
}

type viewOwnerRequest struct {
	UserID  types.ID `json:"user_id"`
	OwnerID types.ID `json:"owner_id"`
}

type deleteOwnerRequest struct {
	OwnerID types.ID `json:"owner_id"`
	UserID  types.ID `json:"user_id"`
}

func (c *Client) ListOwners(ctx context.Context, token string, userID types.ID) ([]Owner, error) {
	raw, err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: pathListOwners,
		path:     pathListOwners + "/" + url.PathEscape(userID.String()),
		token:    token,
	})
	if err != nil {
		return nil, err
	}
	return decodeList[Owner](pathListOwners, raw, "data", "owners")
}

func (c *Client) ViewOwner(ctx context.Context, token string, userID, ownerID types.ID) (*Owner, error) {
	raw, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   pathViewOwner,
		token:  token,
		body:   viewOwnerRequest{UserID: userID, OwnerID: ownerID},
	})
	if err != nil {
		return nil, err
	}
	var owner Owner
	if err := decodeObject(pathViewOwner, raw, &owner); err != nil {
		return nil, err
	}
	return &owner, nil
}

func (c *Client) CreateOwner(ctx context.Context, token string, req CreateOwnerRequest) (*Ack, error) {
	var ack Ack
	if err := c.call(ctx, request{method: http.MethodPost, path: pathCreateOwner, token: token, body: req}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) DeleteOwner(ctx context.Context, token string, userID, ownerID types.ID) (*Ack, error) {
	var ack Ack
	err := c.call(ctx, request{
		method: http.MethodDelete,
		path:   pathDeleteOwner,
		token:  token,
		body:   deleteOwnerRequest{OwnerID: ownerID, UserID: userID},
	}, &ack)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}
