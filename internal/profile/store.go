package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/applyninja/ninja/internal/storage"
)

// Slot keys shared with every command.
const (
	ProfileKey        = "applyNinjaUser"
	PendingPremiumKey = "pendingPremium"
)

// ErrCorrupt marks a persisted profile slot whose content cannot be parsed.
var ErrCorrupt = errors.New("profile: corrupt record")

// Store is the only code that touches the profile and pending-premium
// slots. Read-modify-write sequences are serialized by mu; each write goes
// through a single atomic Apply.
type Store struct {
	mu     sync.Mutex
	slots  storage.Slots
	logger *zerolog.Logger
}

// NewStore wraps slots. A nil logger discards diagnostics.
func NewStore(slots storage.Slots, logger *zerolog.Logger) *Store {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Store{slots: slots, logger: logger}
}

// Read returns the persisted record, or nil, nil when none exists.
// Malformed content returns nil and an error matching ErrCorrupt; callers
// that only need a profile-or-nothing answer can treat it as absent.
func (s *Store) Read(ctx context.Context) (*Record, error) {
	data, ok, err := s.slots.Get(ctx, ProfileKey)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	if !ok {
		return nil, nil
	}
	rec, err := ParseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return rec, nil
}

// Load is Read with corruption folded into "absent".
func (s *Store) Load(ctx context.Context) (*Record, error) {
	rec, err := s.Read(ctx)
	if errors.Is(err, ErrCorrupt) {
		s.logger.Warn().Err(err).Msg("profile slot unreadable, treating as empty")
		return nil, nil
	}
	return rec, err
}

// Write replaces the persisted record entirely.
func (s *Store) Write(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := rec.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := s.slots.Apply(ctx, storage.Put(ProfileKey, data)); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	return nil
}

// Merge overlays patch onto the current record (or an empty one) and writes
// the result back. Fields not named by patch survive untouched.
func (s *Store) Merge(ctx context.Context, patch Patch) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if err := rec.Apply(patch); err != nil {
		return nil, err
	}

	data, err := rec.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}
	if err := s.slots.Apply(ctx, storage.Put(ProfileKey, data)); err != nil {
		return nil, fmt.Errorf("writing profile: %w", err)
	}
	return rec, nil
}

// Promote sets is_premium and clears the pending-premium flag in one batch.
func (s *Store) Promote(ctx context.Context) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if err := rec.Apply(Patch{IsPremium: Bool(true)}); err != nil {
		return nil, err
	}

	data, err := rec.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}
	err = s.slots.Apply(ctx,
		storage.Put(ProfileKey, data),
		storage.Delete(PendingPremiumKey),
	)
	if err != nil {
		return nil, fmt.Errorf("promoting profile: %w", err)
	}
	return rec, nil
}

// PendingPremium reports whether payment proof was submitted and is waiting
// for the next upload to activate it.
func (s *Store) PendingPremium(ctx context.Context) (bool, error) {
	data, ok, err := s.slots.Get(ctx, PendingPremiumKey)
	if err != nil {
		return false, fmt.Errorf("reading pending flag: %w", err)
	}
	return ok && string(data) == "true", nil
}

// SetPendingPremium sets or clears the pending-premium flag.
func (s *Store) SetPendingPremium(ctx context.Context, pending bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := storage.Delete(PendingPremiumKey)
	if pending {
		w = storage.Put(PendingPremiumKey, []byte("true"))
	}
	if err := s.slots.Apply(ctx, w); err != nil {
		return fmt.Errorf("writing pending flag: %w", err)
	}
	return nil
}

// Reset clears every stored slot, including the profile and the pending
// flag, and returns the keys that were removed.
func (s *Store) Reset(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.slots.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing slots: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	writes := make([]storage.Write, 0, len(keys))
	for _, k := range keys {
		writes = append(writes, storage.Delete(k))
	}
	if err := s.slots.Apply(ctx, writes...); err != nil {
		return nil, fmt.Errorf("resetting profile: %w", err)
	}
	return keys, nil
}

// current must be called with mu held.
func (s *Store) current(ctx context.Context) (*Record, error) {
	rec, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = NewRecord()
	}
	return rec, nil
}
