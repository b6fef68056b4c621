package models

// EmojiEvent is a single reaction thrown at a participant. Events are
// append-only and expire EmojiTTL after Timestamp; expired entries are
// pruned by the next update that touches the participant.
type EmojiEvent struct {
	Emoji     string `json:"emoji"`
	Timestamp int64  `json:"timestamp"`
}

// Participant represents one user in a planning poker room
type Participant struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	HasVoted       bool         `json:"hasVoted"`
	Vote           string       `json:"vote,omitempty"`
	ReceivedEmojis []EmojiEvent `json:"receivedEmojis,omitempty"`
}

// RoomState is the full shared snapshot of one room. It is the unit of
// persistence and of conflict resolution: writers replace the whole
// snapshot and the highest LastUpdated wins.
type RoomState struct {
	ID              string        `json:"id"`
	CurrentStory    string        `json:"currentStory"`
	VotesRevealed   bool          `json:"votesRevealed"`
	Participants    []Participant `json:"participants"`
	MaxParticipants int           `json:"maxParticipants"`
	LastUpdated     int64         `json:"lastUpdated"`
	CreatedAt       int64         `json:"createdAt"`
}
