package dashboard

import (
	"context"
	"sort"
	"strings"

	"github.com/angelmondragon/men4u-admin/internal/session"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/men4u"
)

// API is the slice of the men4u client used here.
type API interface {
	AdminHome(ctx context.Context, token string) (*men4u.AdminHome, error)
}

// Card is one dashboard counter.
type Card struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// Summary is the dashboard screen.
type Summary struct {
	Cards  []Card           `json:"cards"`
	Counts map[string]int64 `json:"counts"`
}

// Service loads the admin home counters.
type Service interface {
	Summary(ctx context.Context, sess *session.Session) (*Summary, error)
}

type service struct {
	api API
}

func NewService(api API) (Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "men4u api is required")
	}
	return &service{api: api}, nil
}

func (s *service) Summary(ctx context.Context, sess *session.Session) (*Summary, error) {
	token, _, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	home, err := s.api.AdminHome(ctx, token)
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to fetch dashboard data")
	}
	return Build(home.Counts), nil
}

// Build orders the counters by key and labels them for display.
func Build(counts map[string]int64) *Summary {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := &Summary{Cards: make([]Card, 0, len(keys)), Counts: make(map[string]int64, len(counts))}
	for _, key := range keys {
		out.Cards = append(out.Cards, Card{Key: key, Label: Label(key), Value: counts[key]})
		out.Counts[key] = counts[key]
	}
	return out
}

// Label turns total_outlets into "Total Outlets".
func Label(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
