package models

import "time"

// Card represents a planning poker card value
type Card string

// Available planning poker cards
const (
	Zero      Card = "0"
	One       Card = "1"
	Two       Card = "2"
	Three     Card = "3"
	Five      Card = "5"
	Eight     Card = "8"
	Thirteen  Card = "13"
	TwentyOne Card = "21"
	Question  Card = "?"
)

// Deck is the estimation vocabulary offered to voters, in display order.
// The server does not enforce it; votes travel as opaque strings.
var Deck = []Card{Zero, One, Two, Three, Five, Eight, Thirteen, TwentyOne, Question}

// FallbackVotes is the pool drawn from when votes are revealed and a
// participant is marked as voted but carries no vote. That state should
// be unreachable, see RevealVotes.
var FallbackVotes = []Card{One, Two, Three, Five, Eight}

const (
	// DefaultMaxParticipants caps room membership unless the creator set
	// a different bound. The write path truncates beyond it.
	DefaultMaxParticipants = 4

	// RoomTTL is how long a room survives without a write.
	RoomTTL = time.Hour

	// EmojiTTL bounds how long a received emoji stays attached to a
	// participant before the deferred prune removes it.
	EmojiTTL = 2 * time.Second
)
