package guildconfig

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestSQLite(t *testing.T) *SQLiteBackend {
	t.Helper()
	b, err := NewSQLiteBackend(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// plant writes settings verbatim, bypassing validation.
func plant(t *testing.T, b *SQLiteBackend, guildID, settings string) {
	t.Helper()
	_, err := b.db.Exec(
		`INSERT OR REPLACE INTO guild_configs (guild_id, settings, updated_at) VALUES (?, ?, ?)`,
		guildID, settings, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		t.Fatalf("plant %s: %v", guildID, err)
	}
}

func settingsOf(t *testing.T, b *SQLiteBackend) map[string]string {
	t.Helper()
	entries, err := b.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	out := make(map[string]string, len(entries))
	for k, v := range entries {
		out[k] = string(v)
	}
	return out
}

func TestSQLiteWriteEntry(t *testing.T) {
	ctx := context.Background()
	b := newTestSQLite(t)

	if err := b.WriteEntry(ctx, "1", encodeEntry(GuildConfig{GuildID: "1", Enabled: true}), nil); err != nil {
		t.Fatalf("WriteEntry: %v", err)
	}
	if err := b.WriteEntry(ctx, "2", encodeEntry(GuildConfig{GuildID: "2"}), nil); err != nil {
		t.Fatalf("WriteEntry: %v", err)
	}
	if err := b.WriteEntry(ctx, "1", encodeEntry(GuildConfig{GuildID: "1"}), nil); err != nil {
		t.Fatalf("WriteEntry overwrite: %v", err)
	}

	want := map[string]string{"1": `{"enabled":false}`, "2": `{"enabled":false}`}
	if diff := cmp.Diff(want, settingsOf(t, b)); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStoreRepairsMalformedRows(t *testing.T) {
	ctx := context.Background()
	b := newTestSQLite(t)
	plant(t, b, "1", `not json at all`)
	plant(t, b, "2", `{"enabled": "true"}`)
	plant(t, b, "3", `{"enabled": true}`)

	s := NewStore(b, nil, nil)
	for _, id := range []string{"1", "2", "3"} {
		if _, err := s.Load(ctx, id); err != nil {
			t.Fatalf("Load(%s): %v", id, err)
		}
	}

	want := map[string]string{
		"1": `{"enabled":false}`,
		"2": `{"enabled":false}`,
		"3": `{"enabled": true}`,
	}
	if diff := cmp.Diff(want, settingsOf(t, b)); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vxlinks.db")

	b, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s := NewStore(b, nil, nil)
	if changed, err := s.SetEnabled(ctx, "42", true); err != nil || !changed {
		t.Fatalf("SetEnabled = %v, %v", changed, err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b2, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	s2 := NewStore(b2, nil, nil)
	t.Cleanup(func() { _ = s2.Close() })

	got, err := s2.Load(ctx, "42")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(GuildConfig{GuildID: "42", Enabled: true}, got); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}
