package customers

import (
	"context"

	"github.com/angelmondragon/men4u-admin/internal/listview"
	"github.com/angelmondragon/men4u-admin/internal/session"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/men4u"
	"github.com/angelmondragon/men4u-admin/pkg/types"
)

const screen = "customers"

// API is the slice of the men4u client used here.
type API interface {
	ListCustomers(ctx context.Context, token string, outletID types.ID) (*men4u.CustomerList, error)
}

// Result is the customer list of one outlet.
type Result struct {
	*listview.Result[men4u.Customer]
	OutletName string `json:"outlet_name,omitempty"`
}

// Service exposes the customers screens.
type Service interface {
	List(ctx context.Context, sess *session.Session, outletID types.ID, q listview.Query) (*Result, error)
	Get(ctx context.Context, sess *session.Session, outletID, customerID types.ID) (*men4u.Customer, error)
}

// ServiceParams groups dependencies for the customers service.
type ServiceParams struct {
	API    API
	Loader *listview.Loader
}

type service struct {
	api    API
	loader *listview.Loader
}

// NewService builds the customers service.
func NewService(params ServiceParams) (Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "men4u api is required")
	}
	if params.Loader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "list loader is required")
	}
	return &service{api: params.API, loader: params.Loader}, nil
}

func (s *service) List(ctx context.Context, sess *session.Session, outletID types.ID, q listview.Query) (*Result, error) {
	token, _, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	if outletID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outlet id is required").
			WithDetails(map[string]any{"field": "outlet_id"})
	}

	var fetched *men4u.CustomerList
	res, err := listview.Load(ctx, s.loader, listview.Spec[men4u.Customer]{
		Scope:    listview.ScopeOf(sess, screen, outletID.String()),
		Endpoint: "/admin/customer_listview",
		Fallback: "Failed to fetch customers",
		Fetch: func(ctx context.Context) ([]men4u.Customer, error) {
			list, err := s.api.ListCustomers(ctx, token, outletID)
			if err != nil {
				return nil, err
			}
			fetched = list
			return list.Customers, nil
		},
		Values: func(c men4u.Customer) []string { return []string{c.Name, c.Mobile} },
		Stats: func(rows []men4u.Customer) *listview.Stats {
			stats := Aggregate(fetched, len(rows))
			return &stats
		},
	}, q)
	if err != nil {
		return nil, err
	}

	out := &Result{Result: res}
	if fetched != nil && !res.Stale && !res.Superseded {
		out.OutletName = fetched.OutletName
	}
	return out, nil
}

// Aggregate reads the backend counters. Missing counters fall back to the
// number of rows, and active falls back to the total.
func Aggregate(list *men4u.CustomerList, rows int) listview.Stats {
	stats := listview.Stats{Total: rows, Active: rows}
	if list == nil {
		return stats
	}
	if list.TotalCustomers > 0 {
		stats.Total = list.TotalCustomers
	}
	stats.Active = stats.Total
	if list.TotalActive > 0 {
		stats.Active = list.TotalActive
	}
	stats.Inactive = stats.Total - stats.Active
	if list.TotalInactive > 0 {
		stats.Inactive = list.TotalInactive
	}
	if stats.Inactive < 0 {
		stats.Inactive = 0
	}
	return stats
}

// Get reads the customer from the outlet's last list. There is no
// per-customer endpoint, so a customer that was never listed is not found.
func (s *service) Get(ctx context.Context, sess *session.Session, outletID, customerID types.ID) (*men4u.Customer, error) {
	if _, _, err := sess.Actor(); err != nil {
		return nil, err
	}
	scope := listview.ScopeOf(sess, screen, outletID.String())
	customer, found, err := listview.Lookup(ctx, s.loader.Tracker(), scope, func(c men4u.Customer) bool {
		return c.CustomerID == customerID
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read customer snapshot")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no customer data available")
	}
	return &customer, nil
}
