package db

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/ferminhg/poker-planning/models"
)

// Store is keyed, TTL-bounded storage for room snapshots. Get returns
// (nil, nil) for a room that does not exist; absence is a normal state,
// not an error. Set refreshes the TTL window from the time of write.
// Delete is idempotent.
type Store interface {
	Get(ctx context.Context, id string) (*models.RoomState, error)
	Set(ctx context.Context, id string, state *models.RoomState) error
	Delete(ctx context.Context, id string) error
}

// FallbackStore degrades from a primary backend to an in-process
// secondary. Primary errors are logged and swallowed, never surfaced to
// the caller. The secondary is not shared across server instances, so
// running without a reachable primary trades consistency for
// availability.
type FallbackStore struct {
	primary   Store
	secondary Store
}

// NewFallbackStore wires a primary (may be nil when unconfigured) in
// front of a secondary store.
func NewFallbackStore(primary, secondary Store) *FallbackStore {
	return &FallbackStore{primary: primary, secondary: secondary}
}

func (f *FallbackStore) Get(ctx context.Context, id string) (*models.RoomState, error) {
	if f.primary != nil {
		state, err := f.primary.Get(ctx, id)
		if err == nil {
			return state, nil
		}
		log.Error().Err(err).Str("room_id", id).Msg("primary store get failed, using fallback")
	}
	return f.secondary.Get(ctx, id)
}

func (f *FallbackStore) Set(ctx context.Context, id string, state *models.RoomState) error {
	if f.primary != nil {
		err := f.primary.Set(ctx, id, state)
		if err == nil {
			return nil
		}
		log.Error().Err(err).Str("room_id", id).Msg("primary store set failed, using fallback")
	}
	return f.secondary.Set(ctx, id, state)
}

// Delete removes the room from both backends so a recovered primary
// cannot resurrect a room the secondary already dropped.
func (f *FallbackStore) Delete(ctx context.Context, id string) error {
	if f.primary != nil {
		if err := f.primary.Delete(ctx, id); err != nil {
			log.Error().Err(err).Str("room_id", id).Msg("primary store delete failed")
		}
	}
	return f.secondary.Delete(ctx, id)
}
