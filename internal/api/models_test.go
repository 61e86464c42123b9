package api

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusProcessing, ParseStatus("processing"))
	assert.Equal(t, StatusReview, ParseStatus("review"))
	assert.Equal(t, StatusDone, ParseStatus("done"))
	assert.Equal(t, StatusError, ParseStatus("error"))
	assert.Equal(t, StatusError, ParseStatus("something-new"))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusProcessing.ShouldPoll())
	assert.False(t, StatusReview.ShouldPoll())
	assert.False(t, StatusDone.ShouldPoll())
	assert.False(t, StatusError.ShouldPoll())

	assert.True(t, StatusReview.CanTriage())
	assert.False(t, StatusProcessing.CanTriage())
	assert.False(t, StatusDone.CanTriage())

	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusError.Terminal())
	assert.False(t, StatusReview.Terminal())
}

func TestPayloadString(t *testing.T) {
	it := &InboxItem{AIPayload: map[string]any{
		"title":   "ABC Corp Invoice",
		"weird":   42.0,
		"nothing": nil,
	}}
	assert.Equal(t, "ABC Corp Invoice", it.PayloadString("title"))
	assert.Equal(t, "", it.PayloadString("weird"))
	assert.Equal(t, "", it.PayloadString("nothing"))
	assert.Equal(t, "", it.PayloadString("missing"))

	empty := &InboxItem{}
	assert.Equal(t, "", empty.PayloadString("title"))
}

func TestPayloadNumber(t *testing.T) {
	it := &InboxItem{AIPayload: map[string]any{
		"total_value": 450.5,
		"as_string":   "N/A",
		"nan":         math.NaN(),
		"inf":         math.Inf(1),
	}}

	v, ok := it.PayloadNumber("total_value")
	assert.True(t, ok)
	assert.Equal(t, 450.5, v)

	_, ok = it.PayloadNumber("as_string")
	assert.False(t, ok)
	_, ok = it.PayloadNumber("nan")
	assert.False(t, ok)
	_, ok = it.PayloadNumber("inf")
	assert.False(t, ok)
	_, ok = it.PayloadNumber("missing")
	assert.False(t, ok)
}
