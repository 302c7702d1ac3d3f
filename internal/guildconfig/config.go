// Package guildconfig persists the per-guild enabled flag.
//
// All reads and writes go through a single in-memory mapping owned by Store.
// Every mutation is flushed to the backend before the lock is released, so
// concurrent toggles cannot drop each other's updates. Entries that do not
// match the {"enabled": <bool>} schema are repaired to disabled on first read.
package guildconfig

import (
	"encoding/json"
	"errors"
)

// ErrEmptyGuildID is returned for operations without a guild.
var ErrEmptyGuildID = errors.New("guild id is empty")

// GuildConfig is the conversion setting of one guild.
type GuildConfig struct {
	GuildID string
	Enabled bool
}

type entry struct {
	Enabled bool `json:"enabled"`
}

// decodeEntry validates a persisted entry. ok is false when the entry is
// missing or malformed and must be repaired.
func decodeEntry(guildID string, raw json.RawMessage) (cfg GuildConfig, ok bool) {
	if raw == nil {
		return GuildConfig{GuildID: guildID}, false
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return GuildConfig{GuildID: guildID}, false
	}
	enabled, isBool := fields["enabled"].(bool)
	if !isBool {
		return GuildConfig{GuildID: guildID}, false
	}
	return GuildConfig{GuildID: guildID, Enabled: enabled}, true
}

func encodeEntry(cfg GuildConfig) json.RawMessage {
	// Marshalling a struct with a single bool field cannot fail.
	b, _ := json.Marshal(entry{Enabled: cfg.Enabled})
	return b
}
