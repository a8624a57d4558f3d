// Package record holds the immutable response rows collected by the study
// and the sinks they are appended to. Rows are never updated or deleted.
package record

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one row of collected data: a single participant's validated
// hashtag for one round. No messaging-platform identity appears here, only
// the participant code the user entered.
type Record struct {
	ID            string
	ParticipantID string
	RoundIndex    int
	Hashtag       string
	SubmittedAt   time.Time
	Prompt        string
}

// Header is the column order shared by every sink and by exports.
var Header = []string{"record_id", "participant_id", "round_index", "hashtag_text", "timestamp", "prompt_text"}

// NewID returns a short unique record id.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Logger appends one record to the study's data sink. Appends must be safe
// under concurrent sessions.
type Logger interface {
	Append(r *Record) error
}

// Reader lists everything a sink holds, oldest first.
type Reader interface {
	List() ([]*Record, error)
}
