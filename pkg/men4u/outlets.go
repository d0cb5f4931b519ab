package men4u

import (
	"context"
	"net/http"

	"github.com/angelmondragon/men4u-admin/pkg/types"
	"github.com/shopspring/decimal"
)

const (
	pathListOutlets  = "/common/listview_outlet"
	pathViewOutlet   = "/common/view_outlet"
	pathUpdateOutlet = "/common/update_outlet"
)

// OutletSummary is one row of the outlet list.
type OutletSummary struct {
	OutletID     types.ID   `json:"outlet_id"`
	OutletName   string     `json:"outlet_name"`
	OutletCode   string     `json:"outlet_code"`
	Mobile       string     `json:"mobile"`
	AccountType  string     `json:"account_type"`
	IsOpen       types.Flag `json:"is_open"`
	OutletStatus types.Flag `json:"outlet_status"`
}

// Outlet is the full outlet record returned by view_outlet.
type Outlet struct {
	OutletID           types.ID        `json:"outlet_id"`
	OwnerID            types.ID        `json:"owner_id"`
	Name               string          `json:"name"`
	OutletCode         string          `json:"outlet_code,omitempty"`
	OutletType         string          `json:"outlet_type"`
	FSSAINumber        string          `json:"fssainumber"`
	GSTNumber          string          `json:"gstnumber"`
	Mobile             string          `json:"mobile"`
	VegNonveg          string          `json:"veg_nonveg"`
	ServiceCharges     decimal.Decimal `json:"service_charges"`
	GST                decimal.Decimal `json:"gst"`
	Address            string          `json:"address"`
	IsOpen             types.Flag      `json:"is_open"`
	OutletStatus       types.Flag      `json:"outlet_status"`
	UPIID              string          `json:"upi_id"`
	Website            string          `json:"website"`
	Whatsapp           string          `json:"whatsapp"`
	Facebook           string          `json:"facebook"`
	Instagram          string          `json:"instagram"`
	GoogleBusinessLink string          `json:"google_business_link"`
	GoogleReview       string          `json:"google_review"`
	Email              string          `json:"email"`
	OpeningTime        string          `json:"opening_time"`
	ClosingTime        string          `json:"closing_time"`
	Image              string          `json:"image,omitempty"`
}

// OutletScope identifies the actor an outlet call is made for.
type OutletScope struct {
	UserID    types.ID `json:"user_id"`
	AppSource string   `json:"app_source"`
}

type viewOutletRequest struct {
	OutletID  types.ID `json:"outlet_id"`
	UserID    types.ID `json:"user_id"`
	AppSource string   `json:"app_source"`
}

// OutletUpdate is the full payload sent to update_outlet. UserID carries the owner id.
type OutletUpdate struct {
	OutletID           types.ID        `json:"outlet_id"`
	UserID             types.ID        `json:"user_id"`
	Name               string          `json:"name"`
	OutletType         string          `json:"outlet_type"`
	FSSAINumber        string          `json:"fssainumber"`
	GSTNumber          string          `json:"gstnumber"`
	Mobile             string          `json:"mobile"`
	VegNonveg          string          `json:"veg_nonveg"`
	ServiceCharges     decimal.Decimal `json:"service_charges"`
	GST                decimal.Decimal `json:"gst"`
	Address            string          `json:"address"`
	IsOpen             types.Flag      `json:"is_open"`
	OutletStatus       types.Flag      `json:"outlet_status"`
	UPIID              string          `json:"upi_id"`
	Website            string          `json:"website"`
	Whatsapp           string          `json:"whatsapp"`
	Facebook           string          `json:"facebook"`
	Instagram          string          `json:"instagram"`
	GoogleBusinessLink string          `json:"google_business_link"`
	GoogleReview       string          `json:"google_review"`
	Email              string          `json:"email"`
	OpeningTime        string          `json:"opening_time"`
	ClosingTime        string          `json:"closing_time"`
}

// ListOutlets returns the outlets visible to userID.
func (c *Client) ListOutlets(ctx context.Context, token string, userID types.ID) ([]OutletSummary, error) {
	raw, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   pathListOutlets,
		token:  token,
		body:   OutletScope{UserID: userID, AppSource: c.appSource},
	})
	if err != nil {
		return nil, err
	}
	return decodeList[OutletSummary](pathListOutlets, raw, "data", "outlets")
}

func (c *Client) ViewOutlet(ctx context.Context, token string, userID, outletID types.ID) (*Outlet, error) {
	raw, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   pathViewOutlet,
		token:  token,
		body:   viewOutletRequest{OutletID: outletID, UserID: userID, AppSource: c.appSource},
	})
	if err != nil {
		return nil, err
	}
	var outlet Outlet
	if err := decodeObject(pathViewOutlet, raw, &outlet); err != nil {
		return nil, err
	}
	return &outlet, nil
}

func (c *Client) UpdateOutlet(ctx context.Context, token string, update OutletUpdate) (*Ack, error) {
	var ack Ack
	if err := c.call(ctx, request{method: http.MethodPatch, path: pathUpdateOutlet, token: token, body: update}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}
