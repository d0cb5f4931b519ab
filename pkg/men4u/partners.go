package men4u

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/men4u-admin/pkg/types"
)

const (
	pathListPartners  = "/admin/listview_partner"
	pathViewPartner   = "/admin/view_partner"
	pathCreatePartner = "/admin/create_partner"
	pathUpdatePartner = "/admin/update_partner"
	pathDeletePartner = "/admin/delete_partner"
)

// Partner is a partner account with its granted functionalities.
type Partner struct {
	UserID          types.ID        `json:"user_id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Mobile          string          `json:"mobile"`
	Address         string          `json:"address"`
	DOB             string          `json:"dob,omitempty"`
	AadharNumber    string          `json:"aadhar_number,omitempty"`
	Role            string          `json:"role,omitempty"`
	AccountStatus   types.Flag      `json:"account_status"`
	IsActive        types.Flag      `json:"is_active"`
	IsStaff         types.Flag      `json:"is_staff"`
	IsSuperuser     types.Flag      `json:"is_superuser"`
	CreatedOn       string          `json:"created_on,omitempty"`
	CreatedBy       types.ID        `json:"created_by,omitempty"`
	UpdatedOn       string          `json:"updated_on,omitempty"`
	UpdatedBy       types.ID        `json:"updated_by,omitempty"`
	Functionalities []Functionality `json:"functionalities,omitempty"`
}

// PartnerPayload is shared by create_partner and update_partner. PartnerID is
// empty on create.
type PartnerPayload struct {
	PartnerID        types.ID    `json:"partner_id,omitempty"`
	UserID           types.ID    `json:"user_id"`
	Name             string      `json:"name"`
	Mobile           string      `json:"mobile"`
	Email            string      `json:"email"`
	Address          string      `json:"address"`
	AadharNumber     string      `json:"aadhar_number"`
	DOB              string      `json:"dob"`
	IsActive         *types.Flag `json:"is_active,omitempty"`
	FunctionalityIDs []int64     `json:"functionality_ids"`
}

type partnerRef struct {
	PartnerID types.ID `json:"partner_id"`
	UserID    types.ID `json:"user_id"`
}

func (c *Client) ListPartners(ctx context.Context, token string, userID types.ID) ([]Partner, error) {
	raw, err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: pathListPartners,
		path:     pathListPartners + "/" + url.PathEscape(userID.String()),
		token:    token,
	})
	if err != nil {
		return nil, err
	}
	return decodeList[Partner](pathListPartners, raw, "data", "partners")
}

func (c *Client) ViewPartner(ctx context.Context, token string, userID, partnerID types.ID) (*Partner, error) {
	raw, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   pathViewPartner,
		token:  token,
		body:   partnerRef{PartnerID: partnerID, UserID: userID},
	})
	if err != nil {
		return nil, err
	}
	var partner Partner
	if err := decodeObject(pathViewPartner, raw, &partner); err != nil {
		return nil, err
	}
	return &partner, nil
}

func (c *Client) CreatePartner(ctx context.Context, token string, req PartnerPayload) (*Ack, error) {
	req.PartnerID = ""
	var ack Ack
	if err := c.call(ctx, request{method: http.MethodPost, path: pathCreatePartner, token: token, body: req}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) UpdatePartner(ctx context.Context, token string, req PartnerPayload) (*Ack, error) {
	var ack Ack
	if err := c.call(ctx, request{method: http.MethodPatch, path: pathUpdatePartner, token: token, body: req}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) DeletePartner(ctx context.Context, token string, userID, partnerID types.ID) (*Ack, error) {
	var ack Ack
	err := c.call(ctx, request{
		method: http.MethodDelete,
		path:   pathDeletePartner,
		token:  token,
		body:   partnerRef{PartnerID: partnerID, UserID: userID},
	}, &ack)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}
