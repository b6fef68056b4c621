package models

import "time"

// TimeMillis converts a time to the milliseconds-since-epoch stamps
// used on the wire.
func TimeMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// NewRoomState creates an empty room snapshot with default bounds.
func NewRoomState(id string, now time.Time) *RoomState {
	return &RoomState{
		ID:              id,
		CurrentStory:    "",
		VotesRevealed:   false,
		Participants:    []Participant{},
		MaxParticipants: DefaultMaxParticipants,
		LastUpdated:     TimeMillis(now),
		CreatedAt:       TimeMillis(now),
	}
}

// Normalize produces the server-authoritative form of a candidate
// write. The room id always comes from the URL, LastUpdated is always
// the server's write time (this is what makes it usable as the conflict
// signal), and CreatedAt is preserved from the previously stored state
// when the room already exists. Participants beyond MaxParticipants are
// truncated, not rejected.
func Normalize(id string, candidate *RoomState, existing *RoomState, now time.Time) *RoomState {
	state := candidate.Clone()
	state.ID = id

	if state.Participants == nil {
		state.Participants = []Participant{}
	}
	if state.MaxParticipants <= 0 {
		state.MaxParticipants = DefaultMaxParticipants
	}
	if len(state.Participants) > state.MaxParticipants {
		state.Participants = state.Participants[:state.MaxParticipants]
	}

	state.LastUpdated = TimeMillis(now)
	if existing != nil && existing.CreatedAt != 0 {
		state.CreatedAt = existing.CreatedAt
	} else if state.CreatedAt == 0 {
		state.CreatedAt = TimeMillis(now)
	}

	return state
}

// Clone returns a deep copy. Snapshots cross goroutine and cache
// boundaries, so shared backing arrays are never handed out.
func (s *RoomState) Clone() *RoomState {
	copied := *s
	if s.Participants != nil {
		copied.Participants = make([]Participant, len(s.Participants))
		for i, p := range s.Participants {
			copied.Participants[i] = p
			if p.ReceivedEmojis != nil {
				copied.Participants[i].ReceivedEmojis = append([]EmojiEvent(nil), p.ReceivedEmojis...)
			}
		}
	}
	return &copied
}

// FindParticipant returns the index of the participant with the given
// id, or -1 if absent.
func (s *RoomState) FindParticipant(id string) int {
	for i := range s.Participants {
		if s.Participants[i].ID == id {
			return i
		}
	}
	return -1
}

// IsFull reports whether the room is at capacity.
func (s *RoomState) IsFull() bool {
	return len(s.Participants) >= s.MaxParticipants
}

// AllVoted reports whether every participant has voted. An empty room
// has not "all voted".
func (s *RoomState) AllVoted() bool {
	if len(s.Participants) == 0 {
		return false
	}
	for i := range s.Participants {
		if !s.Participants[i].HasVoted {
			return false
		}
	}
	return true
}
