package men4u

import (
	"context"
	"net/http"

	"github.com/angelmondragon/men4u-admin/pkg/types"
)

const pathListCustomers = "/admin/customer_listview"

// Customer is one customer of an outlet.
type Customer struct {
	CustomerID types.ID `json:"customer_id"`
	UserID     types.ID `json:"user_id,omitempty"`
	Name       string   `json:"name"`
	Mobile     string   `json:"mobile"`
	OrderCount int      `json:"order_count"`
}

// CustomerList is the customer_listview response including the backend aggregates.
type CustomerList struct {
	OutletName     string     `json:"outlet_name"`
	Customers      []Customer `json:"customers"`
	TotalCustomers int        `json:"total_customers"`
	TotalActive    int        `json:"total_active"`
	TotalInactive  int        `json:"total_inactive"`
}

func (c *Client) ListCustomers(ctx context.Context, token string, outletID types.ID) (*CustomerList, error) {
	var list CustomerList
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   pathListCustomers,
		token:  token,
		body:   outletRef{OutletID: outletID},
	}, &list)
	if err != nil {
		return nil, err
	}
	list.Customers = nonNil(list.Customers)
	return &list, nil
}
