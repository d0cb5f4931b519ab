package search

import (
	"context"
	"strings"

	"github.com/angelmondragon/men4u-admin/internal/forms"
	"github.com/angelmondragon/men4u-admin/internal/session"
	"github.com/angelmondragon/men4u-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/men4u"
)

// API is the slice of the men4u client used here.
type API interface {
	Search(ctx context.Context, token string, req men4u.SearchRequest) ([]men4u.SearchHit, error)
}

// Input is the search form.
type Input struct {
	Field string `json:"search" validate:"required"`
	Value string `json:"value" validate:"required"`
	Role  string `json:"role"`
}

// Hit is one result with its active flag read.
type Hit struct {
	men4u.SearchHit
	Status enums.ActiveStatus `json:"status"`
}

// Result is the search screen.
type Result struct {
	Items   []Hit  `json:"items"`
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
}

// Service runs cross-entity user searches.
type Service interface {
	Search(ctx context.Context, sess *session.Session, input Input) (*Result, error)
}

type service struct {
	api API
}

// NewService builds the search service.
func NewService(api API) (Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "men4u api is required")
	}
	return &service{api: api}, nil
}

func (s *service) Search(ctx context.Context, sess *session.Session, input Input) (*Result, error) {
	token, _, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	req, err := BuildRequest(input)
	if err != nil {
		return nil, err
	}

	hits, err := s.api.Search(ctx, token, req)
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to search")
	}
	out := &Result{Items: make([]Hit, 0, len(hits))}
	for _, hit := range hits {
		out.Items = append(out.Items, Hit{SearchHit: hit, Status: enums.ActiveStatusFromFlag(hit.IsActive)})
	}
	if len(out.Items) == 0 {
		out.Empty = true
		out.Message = "No data found"
	}
	return out, nil
}

// BuildRequest validates the form. Mobile searches keep only digits.
func BuildRequest(input Input) (men4u.SearchRequest, error) {
	field, err := enums.ParseSearchField(strings.ToLower(strings.TrimSpace(input.Field)))
	if err != nil {
		return men4u.SearchRequest{}, fieldError("search", "must be name or mobile")
	}
	value := strings.TrimSpace(input.Value)
	if field == enums.SearchFieldMobile {
		value = forms.DigitsOnly(value, forms.MobileLength)
	}
	if value == "" {
		return men4u.SearchRequest{}, fieldError("value", "is required")
	}

	req := men4u.SearchRequest{Search: field.String(), Value: value}
	if role := strings.TrimSpace(input.Role); role != "" {
		parsed, err := enums.ParseActorRole(role)
		if err != nil {
			return men4u.SearchRequest{}, fieldError("role", "is not a known role")
		}
		req.Role = parsed.String()
	}
	return req, nil
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{field: msg})
}
