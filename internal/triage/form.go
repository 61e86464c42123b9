// Package triage derives the editable commit form from an inbox item's
// extraction payload and builds the matter requests from it.
package triage

import (
	"math"
	"strconv"

	"github.com/byro/cli/internal/api"
)

// Mode selects which commit action the form drives.
type Mode string

const (
	ModeNew      Mode = "new"
	ModeExisting Mode = "existing"
)

// Form holds the user-editable triage fields. All values are strings
// for input binding; amount is only parsed at commit time.
type Form struct {
	Title  string
	Date   string
	Amount string
	Mode   Mode

	// hydratedID remembers which item the form was last filled from, so
	// poll ticks that re-deliver the same record never clobber edits.
	hydratedID string
}

// NewForm returns an empty form in create-new mode.
func NewForm() *Form {
	return &Form{Mode: ModeNew}
}

// Observe feeds the latest known record of the active item into the form.
// The fields are (re)hydrated from the extraction payload exactly once per
// entry into review: a second Observe with the same item and status is a
// no-op, while seeing the item back in processing re-arms hydration for a
// later re-entry. Returns true when the fields were rewritten.
func (f *Form) Observe(item *api.InboxItem) bool {
	if item == nil {
		return false
	}
	if item.Status.ShouldPoll() && f.hydratedID == item.ID {
		f.hydratedID = ""
		return false
	}
	if !item.Status.CanTriage() || item.AIPayload == nil || f.hydratedID == item.ID {
		return false
	}

	f.Title = item.PayloadString("title")
	f.Date = item.PayloadString("document_date")
	if v, ok := item.PayloadNumber("total_value"); ok {
		f.Amount = strconv.FormatFloat(v, 'f', -1, 64)
	} else {
		f.Amount = ""
	}
	f.hydratedID = item.ID
	return true
}

// Reset clears the form, including hydration tracking. Called when the
// active item is deselected or a commit succeeds.
func (f *Form) Reset() {
	*f = Form{Mode: ModeNew}
}

// CreateRequest builds the matter creation body from the current fields.
// Category falls back to the extraction payload, then to defaultCategory.
// Empty date and amount are left out entirely; when both are empty no
// attributes map is sent at all. A non-numeric amount is passed through
// raw, the backend is the final validator.
func (f *Form) CreateRequest(item *api.InboxItem, defaultCategory string) *api.CreateMatterRequest {
	category := item.PayloadString("category")
	if category == "" {
		category = defaultCategory
	}

	attributes := map[string]any{}
	if f.Date != "" {
		attributes["date"] = f.Date
	}
	if f.Amount != "" {
		// ParseFloat accepts "NaN" and "Inf", which are not encodable as JSON
		if v, err := strconv.ParseFloat(f.Amount, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			attributes["amount"] = v
		} else {
			attributes["amount"] = f.Amount
		}
	}
	if len(attributes) == 0 {
		attributes = nil
	}

	return &api.CreateMatterRequest{
		Title:      f.Title,
		Category:   category,
		Attributes: attributes,
	}
}
