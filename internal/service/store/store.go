// Package store persists the last successfully fetched profile in a single slot.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/randomuser-swipe-go/internal/constants"
	"github.com/kapu/randomuser-swipe-go/internal/domain"
)

// Slot is a key-value backend. Get reports found=false for a missing key.
type Slot interface {
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// ProfileStore keeps exactly one CachedProfile. Every Save overwrites it.
type ProfileStore struct {
	slot   Slot
	key    string
	logger *zap.Logger
}

// NewProfileStore creates a store for the last shown profile on slot.
func NewProfileStore(slot Slot, logger *zap.Logger) *ProfileStore {
	return &ProfileStore{
		slot:   slot,
		key:    constants.CacheKeys.LastProfile,
		logger: logger,
	}
}

// Save never reports failure to the caller. The projection has a fixed shape, so a
// marshal error is a programming error and panics; backend errors are logged.
func (s *ProfileStore) Save(ctx context.Context, p domain.Profile) {
	data, err := json.Marshal(NewCachedProfile(p))
	if err != nil {
		panic(fmt.Sprintf("store: encode cached profile %s: %v", p.ID, err))
	}

	ctx, cancel := context.WithTimeout(ctx, constants.StoreConfig.OperationTimeout)
	defer cancel()

	if err := s.slot.Set(ctx, s.key, data); err != nil {
		s.logger.Warn("Failed to persist last profile",
			zap.String("profile_id", p.ID),
			zap.Error(err),
		)
		return
	}

	s.logger.Debug("Last profile persisted", zap.String("profile_id", p.ID))
}

// Load returns nil on a miss, a backend error, or an undecodable payload.
func (s *ProfileStore) Load(ctx context.Context) *domain.Profile {
	ctx, cancel := context.WithTimeout(ctx, constants.StoreConfig.OperationTimeout)
	defer cancel()

	data, found, err := s.slot.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("Failed to read last profile, treating as miss", zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	var cached CachedProfile
	if err := json.Unmarshal(data, &cached); err != nil {
		s.logger.Warn("Discarding undecodable cached profile", zap.Error(err))
		return nil
	}
	if cached.ID == "" {
		s.logger.Warn("Discarding cached profile without id")
		return nil
	}

	p := cached.Profile()
	return &p
}

// Clear removes the cached profile.
func (s *ProfileStore) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.StoreConfig.OperationTimeout)
	defer cancel()

	return s.slot.Delete(ctx, s.key)
}
