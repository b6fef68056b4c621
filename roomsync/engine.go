package roomsync

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/ferminhg/poker-planning/models"
)

// PollInterval is how often the engine reads the server copy of the
// room while idle.
const PollInterval = 2 * time.Second

// RoomAPI is the read/write/delete boundary the engine syncs through.
// Fetch returns (nil, nil) for a room that does not exist yet. Push
// returns the persisted, server-authoritative state; the engine adopts
// that, never its own candidate.
type RoomAPI interface {
	Fetch(ctx context.Context, roomID string) (*models.RoomState, error)
	Push(ctx context.Context, roomID string, state *models.RoomState) (*models.RoomState, error)
	Remove(ctx context.Context, roomID string) error
}

// Phase is the engine's lifecycle state. An error is not a phase: it is
// carried alongside Loading or Ready and cleared by the next successful
// sync.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
	PhaseWriting
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseWriting:
		return "writing"
	default:
		return "uninitialized"
	}
}

// Engine owns one client's view of a room. It polls the server copy,
// applies mutations optimistically, and reconciles by whole-snapshot
// last-write-wins: a server state with a strictly newer LastUpdated
// replaces the local one, anything older is ignored.
//
// Exported methods are safe for concurrent use, but the intended model
// is a single user driving mutations while Run polls.
type Engine struct {
	roomID   string
	api      RoomAPI
	identity Identity
	clock    clockwork.Clock

	mutex      sync.Mutex
	phase      Phase
	local      *models.RoomState
	lastServer int64
	userID     string
	lastError  string

	// onChange, when set, receives a fresh snapshot after every visible
	// state change. Must not call back into the engine.
	onChange func(*models.RoomState)
}

// NewEngine builds an engine for one room. A previously persisted user
// id for that room is picked up so the client can rejoin silently.
func NewEngine(roomID string, api RoomAPI, identity Identity, clock clockwork.Clock) *Engine {
	return &Engine{
		roomID:   roomID,
		api:      api,
		identity: identity,
		clock:    clock,
		phase:    PhaseUninitialized,
		userID:   identity.UserID(roomID),
	}
}

// SetOnChange registers the snapshot listener. Call before Run.
func (e *Engine) SetOnChange(fn func(*models.RoomState)) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.onChange = fn
}

// Run performs an immediate sync and then polls until ctx is canceled.
func (e *Engine) Run(ctx context.Context) {
	e.Refresh(ctx)

	ticker := e.clock.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("room_id", e.roomID).Msg("sync loop stopped")
			return
		case <-ticker.Chan():
			e.Refresh(ctx)
		}
	}
}

// Refresh reads the server copy and reconciles. Called by the poll loop
// and out-of-band after a failed write. Skipped entirely while a write
// is in flight, and a result that arrives mid-write is discarded: the
// write's own response supersedes it.
func (e *Engine) Refresh(ctx context.Context) {
	e.mutex.Lock()
	if e.phase == PhaseWriting {
		e.mutex.Unlock()
		return
	}
	if e.phase == PhaseUninitialized {
		e.phase = PhaseLoading
	}
	e.mutex.Unlock()

	server, err := e.api.Fetch(ctx, e.roomID)

	e.mutex.Lock()
	if e.phase == PhaseWriting {
		e.mutex.Unlock()
		return
	}

	if err != nil {
		e.lastError = "Failed to sync with server"
		e.mutex.Unlock()
		log.Error().Err(err).Str("room_id", e.roomID).Msg("room fetch failed")
		return
	}

	changed := false
	switch {
	case server == nil:
		// Room does not exist server-side. Synthesize a default state
		// locally but do not write it; creation is deferred to the
		// first actual mutation. A room that was seen before and is now
		// absent expired, so the local view resets with it.
		if e.local == nil || e.lastServer > 0 {
			e.local = models.NewRoomState(e.roomID, e.clock.Now())
			e.lastServer = 0
			changed = true
		}
	case server.LastUpdated > e.lastServer:
		e.local = server
		e.lastServer = server.LastUpdated
		changed = true
		if e.userID != "" && server.FindParticipant(e.userID) < 0 {
			// Removed server-side (room reset or evicted). The derived
			// current user disappears with the roster; the persisted id
			// stays so a rejoin reuses it.
			log.Debug().Str("room_id", e.roomID).Str("user_id", e.userID).Msg("current user no longer in room")
		}
	}
	e.phase = PhaseReady
	e.lastError = ""
	e.unlockAndNotify(changed)
}

// UpdateRoom is the mutation path: clone the local state, apply mutate,
// stamp it, show it optimistically, push it, and adopt the server's
// returned state as the new baseline. Only one write may be in flight;
// concurrent calls fail with ErrUpdateInFlight. On push failure the
// optimistic state stays visible, an error is surfaced, and an
// out-of-band read attempts reconciliation.
func (e *Engine) UpdateRoom(ctx context.Context, mutate func(*models.RoomState)) error {
	e.mutex.Lock()
	if e.local == nil {
		e.mutex.Unlock()
		return models.ErrRoomNotLoaded
	}
	if e.phase == PhaseWriting {
		e.mutex.Unlock()
		return models.ErrUpdateInFlight
	}
	e.phase = PhaseWriting

	candidate := e.local.Clone()
	mutate(candidate)
	candidate.LastUpdated = models.TimeMillis(e.clock.Now())

	// Optimistic: visible immediately, authoritative only once the
	// server echoes it back.
	e.local = candidate
	e.unlockAndNotify(true)

	persisted, err := e.api.Push(ctx, e.roomID, candidate.Clone())

	e.mutex.Lock()
	if err != nil {
		e.lastError = "Failed to update room"
		e.phase = PhaseReady
		e.mutex.Unlock()
		log.Error().Err(err).Str("room_id", e.roomID).Msg("room push failed")
		e.Refresh(ctx)
		return err
	}

	e.local = persisted
	e.lastServer = persisted.LastUpdated
	e.lastError = ""
	e.phase = PhaseReady
	e.unlockAndNotify(true)
	return nil
}

// unlockAndNotify releases the mutex and, if the state changed, emits a
// snapshot taken before unlocking.
func (e *Engine) unlockAndNotify(changed bool) {
	fn := e.onChange
	var snapshot *models.RoomState
	if changed && fn != nil && e.local != nil {
		snapshot = e.local.Clone()
	}
	e.mutex.Unlock()
	if snapshot != nil {
		fn(snapshot)
	}
}
