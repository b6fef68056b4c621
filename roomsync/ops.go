package roomsync

import (
	"context"
	"math/rand"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"

	"github.com/ferminhg/poker-planning/models"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewClientID generates a participant id in the same shape browser
// clients produce.
func NewClientID() string {
	return gonanoid.MustGenerate(idAlphabet, 13)
}

// NewRoomID generates a shareable room id.
func NewRoomID() string {
	return gonanoid.MustGenerate(idAlphabet, 9)
}

// Join adds the current user to the room, reusing a persisted id when
// one exists. It returns false without writing when the room is full
// and the user is not already a member; joining while already a member
// succeeds even at capacity and just updates the display name. The
// name is persisted locally for reuse across sessions.
func (e *Engine) Join(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, models.ErrInvalidUserName
	}

	e.mutex.Lock()
	if e.local == nil {
		e.mutex.Unlock()
		return false, models.ErrRoomNotLoaded
	}
	userID := e.userID
	member := userID != "" && e.local.FindParticipant(userID) >= 0
	full := e.local.IsFull()
	e.mutex.Unlock()

	if full && !member {
		return false, nil
	}

	if userID == "" {
		userID = NewClientID()
		e.mutex.Lock()
		e.userID = userID
		e.mutex.Unlock()
		e.identity.SetUserID(e.roomID, userID)
	}
	e.identity.SetUserName(name)

	err := e.UpdateRoom(ctx, func(s *models.RoomState) {
		if i := s.FindParticipant(userID); i >= 0 {
			s.Participants[i].Name = name
			return
		}
		s.Participants = append(s.Participants, models.Participant{
			ID:       userID,
			Name:     name,
			HasVoted: false,
		})
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Leave removes the current user from the roster and clears the local
// identity for this room.
func (e *Engine) Leave(ctx context.Context) error {
	e.mutex.Lock()
	userID := e.userID
	loaded := e.local != nil
	e.mutex.Unlock()

	if userID == "" || !loaded {
		return nil
	}

	err := e.UpdateRoom(ctx, func(s *models.RoomState) {
		if i := s.FindParticipant(userID); i >= 0 {
			s.Participants = append(s.Participants[:i], s.Participants[i+1:]...)
		}
	})

	e.mutex.Lock()
	e.userID = ""
	e.mutex.Unlock()
	e.identity.ClearUserID(e.roomID)
	return err
}

// Vote casts the current user's estimate. A silent no-op when the user
// is not a participant of the room.
func (e *Engine) Vote(ctx context.Context, value string) error {
	e.mutex.Lock()
	userID := e.userID
	member := e.local != nil && userID != "" && e.local.FindParticipant(userID) >= 0
	e.mutex.Unlock()

	if !member {
		return nil
	}

	return e.UpdateRoom(ctx, func(s *models.RoomState) {
		if i := s.FindParticipant(userID); i >= 0 {
			s.Participants[i].HasVoted = true
			s.Participants[i].Vote = value
		}
	})
}

// RevealVotes makes every vote visible. A participant marked as voted
// without a stored vote gets one synthesized from FallbackVotes; that
// state should be unreachable since Vote sets both fields together, but
// existing clients depend on reveal never showing a voted participant
// with an empty card. Participants who have not voted get any stray
// vote value cleared.
func (e *Engine) RevealVotes(ctx context.Context) error {
	return e.UpdateRoom(ctx, func(s *models.RoomState) {
		s.VotesRevealed = true
		for i := range s.Participants {
			p := &s.Participants[i]
			if !p.HasVoted {
				p.Vote = ""
				continue
			}
			if p.Vote == "" {
				p.Vote = string(models.FallbackVotes[rand.Intn(len(models.FallbackVotes))])
			}
		}
	})
}

// NewRound starts a fresh estimation round: votes hidden, all ballots
// cleared.
func (e *Engine) NewRound(ctx context.Context) error {
	return e.clearRound(ctx)
}

// ResetVotes clears all votes without starting a new story. Same
// transition as NewRound, kept as a separate name for both call sites.
func (e *Engine) ResetVotes(ctx context.Context) error {
	return e.clearRound(ctx)
}

func (e *Engine) clearRound(ctx context.Context) error {
	return e.UpdateRoom(ctx, func(s *models.RoomState) {
		s.VotesRevealed = false
		for i := range s.Participants {
			s.Participants[i].HasVoted = false
			s.Participants[i].Vote = ""
		}
	})
}

// UpdateStory replaces the shared story text.
func (e *Engine) UpdateStory(ctx context.Context, story string) error {
	return e.UpdateRoom(ctx, func(s *models.RoomState) {
		s.CurrentStory = story
	})
}

// SendEmoji appends a reaction to the target participant and schedules
// the deferred prune that removes expired entries after EmojiTTL. The
// prune reads the engine's state at fire time. It is still an ordinary
// last-write-wins write: a concurrent edit from another client that the
// poll loop has not observed yet can be clobbered by it.
func (e *Engine) SendEmoji(ctx context.Context, targetID, emoji string) error {
	sentAt := models.TimeMillis(e.clock.Now())
	err := e.UpdateRoom(ctx, func(s *models.RoomState) {
		if i := s.FindParticipant(targetID); i >= 0 {
			s.Participants[i].ReceivedEmojis = append(s.Participants[i].ReceivedEmojis, models.EmojiEvent{
				Emoji:     emoji,
				Timestamp: sentAt,
			})
		}
	})
	if err != nil {
		return err
	}

	// Best-effort: after teardown the prune fires against whatever state
	// remains and may simply do nothing.
	e.clock.AfterFunc(models.EmojiTTL, func() {
		e.expireEmojis(context.Background(), targetID)
	})
	return nil
}

func (e *Engine) expireEmojis(ctx context.Context, targetID string) {
	cutoff := models.TimeMillis(e.clock.Now()) - models.EmojiTTL.Milliseconds()
	err := e.UpdateRoom(ctx, func(s *models.RoomState) {
		i := s.FindParticipant(targetID)
		if i < 0 {
			return
		}
		var kept []models.EmojiEvent
		for _, ev := range s.Participants[i].ReceivedEmojis {
			if ev.Timestamp > cutoff {
				kept = append(kept, ev)
			}
		}
		s.Participants[i].ReceivedEmojis = kept
	})
	if err != nil {
		log.Debug().Err(err).Str("room_id", e.roomID).Msg("emoji expiry update skipped")
	}
}

// Snapshot returns a copy of the current local view, or nil before the
// first sync completes.
func (e *Engine) Snapshot() *models.RoomState {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.local == nil {
		return nil
	}
	return e.local.Clone()
}

// CurrentUser returns the participant record matching the local user
// id. Derived from the local state, never stored: if the server dropped
// the user from the roster this reports false.
func (e *Engine) CurrentUser() (models.Participant, bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.local == nil || e.userID == "" {
		return models.Participant{}, false
	}
	i := e.local.FindParticipant(e.userID)
	if i < 0 {
		return models.Participant{}, false
	}
	p := e.local.Participants[i]
	if p.ReceivedEmojis != nil {
		p.ReceivedEmojis = append([]models.EmojiEvent(nil), p.ReceivedEmojis...)
	}
	return p, true
}

// UserID returns the local client id, empty when not joined.
func (e *Engine) UserID() string {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.userID
}

// IsRoomFull reports whether the room is at capacity.
func (e *Engine) IsRoomFull() bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.local != nil && e.local.IsFull()
}

// AllVoted reports whether the room is non-empty and everyone voted.
func (e *Engine) AllVoted() bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.local != nil && e.local.AllVoted()
}

// Phase returns the engine's lifecycle state.
func (e *Engine) Phase() Phase {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.phase
}

// LastError returns the most recent sync error message, empty after a
// successful sync.
func (e *Engine) LastError() string {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.lastError
}
