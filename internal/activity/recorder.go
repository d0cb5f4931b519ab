package activity

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/men4u-admin/internal/session"
	"github.com/angelmondragon/men4u-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
	"github.com/google/uuid"
)

// Event describes a console mutation. Err is the outcome of the upstream call.
type Event struct {
	Action     enums.ActivityAction
	Resource   string
	ResourceID string
	Message    string
	Err        error
}

// Recorder writes mutation events. Implementations never fail the caller.
type Recorder interface {
	Record(ctx context.Context, sess *session.Session, ev Event)
}

type entryWriter interface {
	Create(ctx context.Context, entry *Entry) error
}

// Log records events into the activity table.
type Log struct {
	repo entryWriter
	logg *logger.Logger
	now  func() time.Time
}

// NewLog builds a recorder over repo.
func NewLog(repo *Repository, logg *logger.Logger) *Log {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Log{repo: repo, logg: logg, now: time.Now}
}

func (l *Log) Record(ctx context.Context, sess *session.Session, ev Event) {
	entry := &Entry{
		ID:         uuid.NewString(),
		Action:     ev.Action,
		Resource:   ev.Resource,
		ResourceID: ev.ResourceID,
		Outcome:    OutcomeSuccess,
		Message:    strings.TrimSpace(ev.Message),
		CreatedAt:  l.now().UTC(),
	}
	if sess != nil {
		entry.SessionID = sess.ID()
		entry.ActorUserID = sess.UserID().String()
	}
	if ev.Err != nil {
		entry.Outcome = OutcomeFailure
		if typed := pkgerrors.As(ev.Err); typed != nil && typed.Message() != "" {
			entry.Message = typed.Message()
		} else {
			entry.Message = ev.Err.Error()
		}
	}

	if err := l.repo.Create(ctx, entry); err != nil {
		ctx = l.logg.WithFields(ctx, map[string]any{
			"action":   entry.Action,
			"resource": entry.Resource,
		})
		l.logg.Error(ctx, "activity.record_failed", err)
	}
}

// Nop discards events; used when no activity database is configured.
type Nop struct{}

func (Nop) Record(context.Context, *session.Session, Event) {}
