package guildconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"vxlinks/internal/metrics"
)

// Backend is durable storage for the guild mapping.
type Backend interface {
	// ReadAll returns every persisted entry keyed by guild ID.
	ReadAll(ctx context.Context) (map[string]json.RawMessage, error)
	// WriteEntry persists the entry of guildID. all is the complete mapping
	// after the change, for backends that store the whole document at once.
	WriteEntry(ctx context.Context, guildID string, e json.RawMessage, all map[string]json.RawMessage) error
	Close() error
}

// Store is the process-wide guild config mapping.
type Store struct {
	mu      sync.Mutex
	backend Backend
	entries map[string]json.RawMessage
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewStore creates a Store over backend. Nothing is read until first use.
func NewStore(backend Backend, m *metrics.Metrics, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{backend: backend, metrics: m, log: log}
}

// Load returns the config of guildID. A missing or malformed entry is replaced
// by a disabled one and written back before returning. If that write fails the
// repaired value is still returned together with the error.
func (s *Store) Load(ctx context.Context, guildID string) (GuildConfig, error) {
	if guildID == "" {
		return GuildConfig{}, ErrEmptyGuildID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, guildID)
}

// Save overwrites the config of cfg.GuildID.
func (s *Store) Save(ctx context.Context, cfg GuildConfig) error {
	if cfg.GuildID == "" {
		return ErrEmptyGuildID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	return s.put(ctx, cfg)
}

// SetEnabled sets the flag of guildID and reports whether it changed.
// The read and the write happen under one lock.
func (s *Store) SetEnabled(ctx context.Context, guildID string, enabled bool) (bool, error) {
	if guildID == "" {
		return false, ErrEmptyGuildID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load(ctx, guildID)
	if err != nil {
		return false, err
	}
	if cfg.Enabled == enabled {
		return false, nil
	}
	cfg.Enabled = enabled
	if err := s.put(ctx, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) load(ctx context.Context, guildID string) (GuildConfig, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return GuildConfig{GuildID: guildID}, err
	}

	raw, present := s.entries[guildID]
	cfg, ok := decodeEntry(guildID, raw)
	if ok {
		return cfg, nil
	}

	if present {
		s.log.Warn("repairing malformed guild config", zap.String("guild_id", guildID), zap.ByteString("entry", raw))
	} else {
		s.log.Debug("creating default guild config", zap.String("guild_id", guildID))
	}
	s.metrics.Repaired()

	cfg = GuildConfig{GuildID: guildID, Enabled: false}
	if err := s.put(ctx, cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// put writes cfg through to the backend. The in-memory entry is rolled back if
// the write fails so memory never runs ahead of storage.
func (s *Store) put(ctx context.Context, cfg GuildConfig) error {
	prev, had := s.entries[cfg.GuildID]
	e := encodeEntry(cfg)
	s.entries[cfg.GuildID] = e

	if err := s.backend.WriteEntry(ctx, cfg.GuildID, e, s.entries); err != nil {
		if had {
			s.entries[cfg.GuildID] = prev
		} else {
			delete(s.entries, cfg.GuildID)
		}
		return fmt.Errorf("write guild %s: %w", cfg.GuildID, err)
	}
	return nil
}

func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.entries != nil {
		return nil
	}
	entries, err := s.backend.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("read guild configs: %w", err)
	}
	if entries == nil {
		entries = make(map[string]json.RawMessage)
	}
	s.entries = entries
	s.log.Debug("guild configs loaded", zap.Int("guilds", len(entries)))
	return nil
}
