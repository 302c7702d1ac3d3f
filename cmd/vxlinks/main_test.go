package main

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRewriteCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "mixed links",
			args: []string{"look https://vm.tiktok.com/abc123 and https://x.com/user/status/42"},
			want: "Beep boop, embeds incoming\nhttps://vm.vxtiktok.com/abc123\nhttps://vxtwitter.com/user/status/42\n",
		},
		{
			name: "arguments joined",
			args: []string{"see", "https://www.instagram.com/p/xyz"},
			want: "Beep boop, embed incoming\nhttps://www.ddinstagram.com/p/xyz\n",
		},
		{
			name: "nothing to rewrite",
			args: []string{"hello there"},
			want: "no supported links found\n",
		},
		{
			name: "two batches",
			args: []string{
				"https://x.com/a/1 https://x.com/a/2 https://x.com/a/3 https://x.com/a/4 https://x.com/a/5 https://x.com/a/6",
			},
			want: "Beep boop, embeds incoming\n" +
				"https://vxtwitter.com/a/1\nhttps://vxtwitter.com/a/2\nhttps://vxtwitter.com/a/3\n" +
				"https://vxtwitter.com/a/4\nhttps://vxtwitter.com/a/5\n" +
				"\n" +
				"https://vxtwitter.com/a/6\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, append([]string{"rewrite"}, tt.args...)...)
			if err != nil {
				t.Fatalf("rewrite: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRewriteRequiresText(t *testing.T) {
	if _, err := execute(t, "rewrite"); err == nil {
		t.Fatal("expected error without arguments")
	}
}

func TestMigrateUpCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vxlinks.db")

	if _, err := execute(t, "migrate", "--db", path, "up"); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'guild_configs'`).Scan(&name)
	if err != nil {
		t.Fatalf("guild_configs table missing: %v", err)
	}

	if _, err := execute(t, "migrate", "--db", path, "reset"); err != nil {
		t.Fatalf("migrate reset: %v", err)
	}
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'guild_configs'`).Scan(&name)
	if err != sql.ErrNoRows {
		t.Errorf("after reset err = %v, want sql.ErrNoRows", err)
	}
}

func TestMigrateUnknownCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vxlinks.db")
	if _, err := execute(t, "migrate", "--db", path, "sideways"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}
