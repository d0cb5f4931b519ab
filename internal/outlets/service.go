package outlets

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/men4u-admin/internal/activity"
	"github.com/angelmondragon/men4u-admin/internal/forms"
	"github.com/angelmondragon/men4u-admin/internal/listview"
	"github.com/angelmondragon/men4u-admin/internal/session"
	"github.com/angelmondragon/men4u-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/men4u"
	"github.com/angelmondragon/men4u-admin/pkg/types"
	"github.com/shopspring/decimal"
)

// Screen is the list scope name; the tickets outlet picker shares its snapshot.
const Screen = "outlets"

var hundred = decimal.NewFromInt(100)

// API is the slice of the men4u client used here.
type API interface {
	ListOutlets(ctx context.Context, token string, userID types.ID) ([]men4u.OutletSummary, error)
	ViewOutlet(ctx context.Context, token string, userID, outletID types.ID) (*men4u.Outlet, error)
	UpdateOutlet(ctx context.Context, token string, update men4u.OutletUpdate) (*men4u.Ack, error)
}

// Row is one outlet in the list with its flags already read.
type Row struct {
	men4u.OutletSummary
	Status        enums.ActiveStatus        `json:"status"`
	Open          enums.OpenState           `json:"open_state"`
	DisplayStatus enums.OutletDisplayStatus `json:"display_status"`
}

// Detail is the outlet edit form model.
type Detail struct {
	men4u.Outlet
	Status        enums.ActiveStatus        `json:"status"`
	Open          enums.OpenState           `json:"open_state"`
	DisplayStatus enums.OutletDisplayStatus `json:"display_status"`
}

// UpdateInput is the outlet edit form. Booleans are converted to the
// backend's 0/1 flags and charges to decimals on submit.
type UpdateInput struct {
	OwnerID            types.ID `json:"owner_id"`
	Name               string   `json:"name" validate:"required,max=150"`
	OutletType         string   `json:"outlet_type"`
	FSSAINumber        string   `json:"fssainumber"`
	GSTNumber          string   `json:"gstnumber"`
	Mobile             string   `json:"mobile"`
	VegNonveg          string   `json:"veg_nonveg"`
	ServiceCharges     string   `json:"service_charges"`
	GST                string   `json:"gst"`
	Address            string   `json:"address"`
	IsOpen             bool     `json:"is_open"`
	Active             bool     `json:"outlet_status"`
	UPIID              string   `json:"upi_id"`
	Website            string   `json:"website"`
	Whatsapp           string   `json:"whatsapp"`
	Facebook           string   `json:"facebook"`
	Instagram          string   `json:"instagram"`
	GoogleBusinessLink string   `json:"google_business_link"`
	GoogleReview       string   `json:"google_review"`
	Email              string   `json:"email" validate:"omitempty,email"`
	OpeningTime        string   `json:"opening_time"`
	ClosingTime        string   `json:"closing_time"`
}

// Service exposes the outlets screens.
type Service interface {
	List(ctx context.Context, sess *session.Session, q listview.Query) (*listview.Result[Row], error)
	Get(ctx context.Context, sess *session.Session, outletID types.ID) (*Detail, error)
	Update(ctx context.Context, sess *session.Session, outletID types.ID, input UpdateInput) (*men4u.Ack, error)
}

// ServiceParams groups dependencies for the outlets service.
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

// NewService builds the outlets service.
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

// List returns the outlets of the signed-in actor.
func (s *service) List(ctx context.Context, sess *session.Session, q listview.Query) (*listview.Result[Row], error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	return listview.Load(ctx, s.loader, Spec(s.api, sess, token, userID), q)
}

// Spec is the outlet list definition, shared with the tickets outlet picker.
func Spec(api API, sess *session.Session, token string, userID types.ID) listview.Spec[Row] {
	return listview.Spec[Row]{
		Scope:    listview.ScopeOf(sess, Screen, userID.String()),
		Endpoint: "/common/listview_outlet",
		Fallback: "Failed to fetch outlets",
		Fetch: func(ctx context.Context) ([]Row, error) {
			summaries, err := api.ListOutlets(ctx, token, userID)
			if err != nil {
				return nil, err
			}
			rows := make([]Row, 0, len(summaries))
			for _, summary := range summaries {
				rows = append(rows, ToRow(summary))
			}
			return rows, nil
		},
		Values: func(r Row) []string {
			return []string{r.OutletName, r.OutletCode, r.Mobile, r.AccountType, string(r.DisplayStatus)}
		},
		Stats: listview.StatusStats(func(r Row) enums.ActiveStatus { return r.Status }),
	}
}

// ToRow reads the wire flags of summary.
func ToRow(summary men4u.OutletSummary) Row {
	status := enums.ActiveStatusFromFlag(summary.OutletStatus)
	open := enums.OpenStateFromFlag(summary.IsOpen)
	return Row{
		OutletSummary: summary,
		Status:        status,
		Open:          open,
		DisplayStatus: enums.DeriveOutletDisplayStatus(status, open),
	}
}

// Get loads the full outlet record. The list only carries summaries, so the
// record is always fetched by id.
func (s *service) Get(ctx context.Context, sess *session.Session, outletID types.ID) (*Detail, error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	if outletID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outlet id is required")
	}
	outlet, err := s.api.ViewOutlet(ctx, token, userID, outletID)
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to fetch outlet details")
	}
	status := enums.ActiveStatusFromFlag(outlet.OutletStatus)
	open := enums.OpenStateFromFlag(outlet.IsOpen)
	return &Detail{
		Outlet:        *outlet,
		Status:        status,
		Open:          open,
		DisplayStatus: enums.DeriveOutletDisplayStatus(status, open),
	}, nil
}

// Update submits the edit form.
func (s *service) Update(ctx context.Context, sess *session.Session, outletID types.ID, input UpdateInput) (*men4u.Ack, error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	update, err := BuildUpdate(outletID, userID, input)
	if err != nil {
		return nil, err
	}

	ack, err := s.api.UpdateOutlet(ctx, token, update)
	s.recorder.Record(ctx, sess, activity.Event{
		Action:     enums.ActivityActionUpdate,
		Resource:   "outlet",
		ResourceID: outletID.String(),
		Err:        err,
	})
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to update outlet")
	}
	return ack, nil
}

// BuildUpdate validates the form and converts it into the wire payload. The
// payload's user_id is the outlet owner; without one the actor is used.
func BuildUpdate(outletID, actorID types.ID, input UpdateInput) (men4u.OutletUpdate, error) {
	if outletID.IsZero() {
		return men4u.OutletUpdate{}, pkgerrors.New(pkgerrors.CodeValidation, "outlet id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return men4u.OutletUpdate{}, fieldError("name", "is required")
	}
	serviceCharges, err := percentage("service_charges", input.ServiceCharges)
	if err != nil {
		return men4u.OutletUpdate{}, err
	}
	gst, err := percentage("gst", input.GST)
	if err != nil {
		return men4u.OutletUpdate{}, err
	}
	opening, err := clockTime("opening_time", input.OpeningTime)
	if err != nil {
		return men4u.OutletUpdate{}, err
	}
	closing, err := clockTime("closing_time", input.ClosingTime)
	if err != nil {
		return men4u.OutletUpdate{}, err
	}

	owner := input.OwnerID
	if owner.IsZero() {
		owner = actorID
	}
	return men4u.OutletUpdate{
		OutletID:           outletID,
		UserID:             owner,
		Name:               name,
		OutletType:         strings.TrimSpace(input.OutletType),
		FSSAINumber:        strings.TrimSpace(input.FSSAINumber),
		GSTNumber:          strings.TrimSpace(input.GSTNumber),
		Mobile:             forms.Mobile(input.Mobile),
		VegNonveg:          strings.TrimSpace(input.VegNonveg),
		ServiceCharges:     serviceCharges,
		GST:                gst,
		Address:            strings.TrimSpace(input.Address),
		IsOpen:             types.FlagFrom(input.IsOpen),
		OutletStatus:       types.FlagFrom(input.Active),
		UPIID:              strings.TrimSpace(input.UPIID),
		Website:            strings.TrimSpace(input.Website),
		Whatsapp:           forms.Mobile(input.Whatsapp),
		Facebook:           strings.TrimSpace(input.Facebook),
		Instagram:          strings.TrimSpace(input.Instagram),
		GoogleBusinessLink: strings.TrimSpace(input.GoogleBusinessLink),
		GoogleReview:       strings.TrimSpace(input.GoogleReview),
		Email:              strings.TrimSpace(input.Email),
		OpeningTime:        opening,
		ClosingTime:        closing,
	}, nil
}

// percentage parses a charge between 0 and 100; blank is zero.
func percentage(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fieldError(field, "must be a number")
	}
	if value.IsNegative() || value.GreaterThan(hundred) {
		return decimal.Zero, fieldError(field, "must be between 0 and 100")
	}
	return value.Round(2), nil
}

// clockTime accepts "HH:MM" or "HH:MM:SS" and returns "HH:MM".
func clockTime(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	for _, layout := range []string{"15:04", "15:04:05", "3:04 PM", "03:04 PM"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fieldError(field, "must be a time of day")
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{field: msg})
}
