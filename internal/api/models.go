package api

import (
	"math"
	"time"
)

// Status is the backend-declared lifecycle state of an inbox item.
// The backend is authoritative; the client never infers a transition.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// ParseStatus maps a raw status string onto the closed set of states.
// Anything unrecognized is treated as an error state rather than guessed at.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusProcessing, StatusReview, StatusDone, StatusError:
		return Status(s)
	default:
		return StatusError
	}
}

// ShouldPoll reports whether the poller keeps re-fetching an item in this state.
func (s Status) ShouldPoll() bool {
	return s == StatusProcessing
}

// CanTriage reports whether the triage form may act on an item in this state.
func (s Status) CanTriage() bool {
	return s == StatusReview
}

// Terminal reports whether no further processing is expected for this state.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// InboxItem represents an uploaded document tracked through triage
type InboxItem struct {
	ID               string         `json:"id"`
	Status           Status         `json:"status"`
	OriginalFilename string         `json:"original_filename"`
	FilePath         string         `json:"file_path"`
	AIPayload        map[string]any `json:"ai_payload,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// PayloadString returns a string field of the extraction payload, or ""
// when the field is missing or not a string. Extraction output is
// untrusted and may carry any shape.
func (it *InboxItem) PayloadString(key string) string {
	if it.AIPayload == nil {
		return ""
	}
	s, ok := it.AIPayload[key].(string)
	if !ok {
		return ""
	}
	return s
}

// PayloadNumber returns a numeric field of the extraction payload. The
// second result is false when the field is missing, not a number, or not
// finite.
func (it *InboxItem) PayloadNumber(key string) (float64, bool) {
	if it.AIPayload == nil {
		return 0, false
	}
	v, ok := it.AIPayload[key].(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Matter represents a case record in the matter backend
type Matter struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Category   string         `json:"category"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// CreateMatterRequest is the body of a matter creation request
type CreateMatterRequest struct {
	Title      string         `json:"title"`
	Category   string         `json:"category"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// AttachDocumentRequest links an inbox item to an existing matter
type AttachDocumentRequest struct {
	InboxItemID string `json:"inbox_item_id"`
}
