package models

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortMessagesUnstampedLast(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	messages := []Message{
		{ID: "pending", Seq: 3},
		{ID: "second", Seq: 2, CreatedAt: lo.ToPtr(base.Add(time.Minute))},
		{ID: "first", Seq: 1, CreatedAt: lo.ToPtr(base)},
	}

	SortMessages(messages)

	assert.Equal(t, "first", messages[0].ID)
	assert.Equal(t, "second", messages[1].ID)
	assert.Equal(t, "pending", messages[2].ID, "unstamped entries sort after everything else")
}

func TestSortMessagesStableAmongEquals(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	messages := []Message{
		{ID: "b", Seq: 2, CreatedAt: lo.ToPtr(base)},
		{ID: "a", Seq: 1, CreatedAt: lo.ToPtr(base)},
		{ID: "y", Seq: 5},
		{ID: "x", Seq: 4},
	}

	SortMessages(messages)

	assert.Equal(t, []string{"a", "b", "x", "y"},
		lo.Map(messages, func(m Message, _ int) string { return m.ID }),
		"ties fall back to append order")
}

func TestDecodeStreamEnvelope(t *testing.T) {
	envelope, err := DecodeStreamEnvelope([]byte(`{"action":"messages.new","room_id":"u1_u2","origin":"node-a"}`))
	require.NoError(t, err)
	assert.Equal(t, StreamMessageNew, envelope.Action)
	assert.Equal(t, "u1_u2", envelope.RoomID)
	assert.Equal(t, "node-a", envelope.Origin)
}

func TestDecodeStreamEnvelopeMalformed(t *testing.T) {
	for _, raw := range []string{
		`not json at all`,
		`{"action":"messages.new"}`,
		`{"room_id":"u1_u2"}`,
		`{}`,
	} {
		_, err := DecodeStreamEnvelope([]byte(raw))
		assert.ErrorIsf(t, err, ErrDecode, "payload %q must be rejected", raw)
	}
}

func TestCallRecordOngoing(t *testing.T) {
	assert.False(t, CallRecord{Status: CallStatusIdle}.Ongoing())
	assert.True(t, CallRecord{Status: CallStatusCalling}.Ongoing())
	assert.True(t, CallRecord{Status: CallStatusAccepted}.Ongoing())
	assert.False(t, CallRecord{Status: CallStatusEnded}.Ongoing())
}
