package activity

import (
	"time"

	"github.com/angelmondragon/men4u-admin/pkg/enums"
)

// Outcome of a recorded mutation.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Entry is one row of activity_entries.
type Entry struct {
	ID          string               `gorm:"column:id;primaryKey" json:"id"`
	SessionID   string               `gorm:"column:session_id" json:"session_id"`
	ActorUserID string               `gorm:"column:actor_user_id" json:"actor_user_id"`
	Action      enums.ActivityAction `gorm:"column:action" json:"action"`
	Resource    string               `gorm:"column:resource" json:"resource"`
	ResourceID  string               `gorm:"column:resource_id" json:"resource_id,omitempty"`
	Outcome     Outcome              `gorm:"column:outcome" json:"outcome"`
	Message     string               `gorm:"column:message" json:"message,omitempty"`
	CreatedAt   time.Time            `gorm:"column:created_at" json:"created_at"`
}

func (Entry) TableName() string {
	return "activity_entries"
}

// Page is one cursor page of entries, newest first.
type Page struct {
	Entries    []Entry `json:"entries"`
	NextCursor string  `json:"next_cursor,omitempty"`
}
