package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cell string
		want []StatusEvent
	}{
		{
			name: "empty cell",
			cell: "",
			want: nil,
		},
		{
			name: "single token",
			cell: "from_apollo_contact",
			want: []StatusEvent{{Token: "from_apollo_contact"}},
		},
		{
			name: "token with detail",
			cell: "push_failed(rate limited)",
			want: []StatusEvent{{Token: "push_failed", Detail: "rate limited"}},
		},
		{
			name: "multiple events with spacing",
			cell: "from_apollo_person; apollo_pushed ;apollo_sequenced",
			want: []StatusEvent{
				{Token: "from_apollo_person"},
				{Token: "apollo_pushed"},
				{Token: "apollo_sequenced"},
			},
		},
		{
			name: "trailing semicolon",
			cell: "apollo_pushed;",
			want: []StatusEvent{{Token: "apollo_pushed"}},
		},
		{
			name: "unrecognized fragment kept verbatim",
			cell: "operator note",
			want: []StatusEvent{{Token: "operator note"}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			log := ParseStatusLog(tt.cell)
			assert.Equal(t, tt.want, log.Events())
		})
	}
}

func TestStatusLogHas(t *testing.T) {
	t.Parallel()

	log := ParseStatusLog("from_apollo_contact; push_failed(timeout); APOLLO_PUSHED")

	assert.True(t, log.Has(StatusFromApolloContact))
	assert.True(t, log.Has(StatusPushFailed), "detail must not affect matching")
	assert.True(t, log.Has(StatusApolloPushed), "matching is case-insensitive")
	assert.False(t, log.Has(StatusApolloSequenced))
}

func TestStatusLogAppendKeepsContradictions(t *testing.T) {
	t.Parallel()

	var log StatusLog
	log.AppendDetail(StatusSequenceFailed, "mailbox missing")
	log.Append(StatusApolloSequenced)

	require.Len(t, log.Events(), 2)
	assert.True(t, log.Has(StatusSequenceFailed))
	assert.True(t, log.Has(StatusApolloSequenced))
	assert.Equal(t, "sequence_failed(mailbox missing); apollo_sequenced", log.String())
}

func TestStatusLogAppendDetailFlattensDelimiters(t *testing.T) {
	t.Parallel()

	var log StatusLog
	log.AppendDetail(StatusPushFailed, "api error (429); retry later")

	assert.Equal(t, "push_failed(api error [429], retry later)", log.String())

	// The flattened cell must survive a round trip.
	parsed := ParseStatusLog(log.String())
	require.Len(t, parsed.Events(), 1)
	assert.Equal(t, "push_failed", parsed.Events()[0].Token)
	assert.Equal(t, "api error [429], retry later", parsed.Events()[0].Detail)
}

func TestStatusLogRoundTrip(t *testing.T) {
	t.Parallel()

	cell := "from_apollo_person; push_failed(timeout); apollo_pushed"
	assert.Equal(t, cell, ParseStatusLog(cell).String())
}
