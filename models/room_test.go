package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStampsServerWriteTime(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	candidate := &RoomState{ID: "ignored", LastUpdated: 42, MaxParticipants: 4}

	state := Normalize("r1", candidate, nil, now)

	assert.Equal(t, "r1", state.ID)
	assert.Equal(t, TimeMillis(now), state.LastUpdated)
}

func TestNormalizeDefaults(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	state := Normalize("r1", &RoomState{}, nil, now)

	assert.Equal(t, "", state.CurrentStory)
	assert.False(t, state.VotesRevealed)
	require.NotNil(t, state.Participants)
	assert.Empty(t, state.Participants)
	assert.Equal(t, DefaultMaxParticipants, state.MaxParticipants)
	assert.Equal(t, TimeMillis(now), state.CreatedAt)
}

func TestNormalizeTruncatesOverCapacity(t *testing.T) {
	now := time.Now()
	candidate := &RoomState{
		MaxParticipants: 2,
		Participants: []Participant{
			{ID: "a", Name: "A"},
			{ID: "b", Name: "B"},
			{ID: "c", Name: "C"},
		},
	}

	state := Normalize("r1", candidate, nil, now)

	require.Len(t, state.Participants, 2)
	assert.Equal(t, "a", state.Participants[0].ID)
	assert.Equal(t, "b", state.Participants[1].ID)
}

func TestNormalizePreservesStoredCreatedAt(t *testing.T) {
	created := time.UnixMilli(1_600_000_000_000)
	now := time.UnixMilli(1_700_000_000_000)
	existing := &RoomState{CreatedAt: TimeMillis(created)}
	candidate := &RoomState{CreatedAt: 123456}

	state := Normalize("r1", candidate, existing, now)

	assert.Equal(t, TimeMillis(created), state.CreatedAt)
}

func TestNormalizeBoundsParticipantsByMax(t *testing.T) {
	now := time.Now()
	candidate := &RoomState{
		Participants: make([]Participant, DefaultMaxParticipants+3),
	}

	state := Normalize("r1", candidate, nil, now)

	assert.LessOrEqual(t, len(state.Participants), state.MaxParticipants)
}

func TestAllVoted(t *testing.T) {
	state := &RoomState{}
	assert.False(t, state.AllVoted(), "empty room has not all voted")

	state.Participants = []Participant{
		{ID: "a", HasVoted: true},
		{ID: "b", HasVoted: false},
	}
	assert.False(t, state.AllVoted())

	state.Participants[1].HasVoted = true
	assert.True(t, state.AllVoted())
}

func TestIsFull(t *testing.T) {
	state := &RoomState{MaxParticipants: 1}
	assert.False(t, state.IsFull())

	state.Participants = []Participant{{ID: "x"}}
	assert.True(t, state.IsFull())
}

func TestCloneIsIndependent(t *testing.T) {
	original := &RoomState{
		ID: "r1",
		Participants: []Participant{
			{ID: "a", ReceivedEmojis: []EmojiEvent{{Emoji: "👍", Timestamp: 1}}},
		},
	}

	clone := original.Clone()
	clone.Participants[0].Name = "changed"
	clone.Participants[0].ReceivedEmojis[0].Emoji = "🔥"

	assert.Equal(t, "", original.Participants[0].Name)
	assert.Equal(t, "👍", original.Participants[0].ReceivedEmojis[0].Emoji)
}
