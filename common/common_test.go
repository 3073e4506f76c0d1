package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		id   uint64
		want int64
	}{
		{0, 1420070400},
		{7, 1420070400},
		// 1000ms after the epoch
		{1000 << 22, 1420070401},
		// A real user id, created 2015-12-03
		{121919449996460033, 1449138262},
	}

	for _, tc := range tests {
		if got := Decode(tc.id, DiscordEpoch); got != tc.want {
			t.Errorf("Decode(%d) = %d, want %d", tc.id, got, tc.want)
		}
	}
}

func TestDecodeMonotonic(t *testing.T) {
	var prev int64
	for id := uint64(0); id < 1<<40; id += 1<<33 + 12345 {
		got := Decode(id, DiscordEpoch)
		if got < prev {
			t.Fatalf("Decode went backwards at %d: %d < %d", id, got, prev)
		}
		prev = got
	}
}

func TestSnowflakeCreated(t *testing.T) {
	got, err := SnowflakeCreated("7", 0)
	if err != nil || got != 0 {
		t.Fatalf("expected 0 got %d (%v)", got, err)
	}
	if _, err := SnowflakeCreated("abc", DiscordEpoch); err == nil {
		t.Fatalf("expected an error for a non numeric id")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sentinel.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
		"token": "file-token",
		"database": "file.sqlite3",
		"http_addr": ":8087",
		"reject_action": "KICK",
		"cache_ttl_seconds": 30,
		"epoch_ms": 1288834974657
	}`)
	t.Setenv("SENTINEL_TOKEN", "env-token")

	cfg, err := Load([]string{"--cmd", "server", "--config", path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.CliCmd != "server" {
		t.Errorf("cmd = %q", cfg.CliCmd)
	}
	if cfg.Token != "env-token" {
		t.Errorf("environment should win over the file, token = %q", cfg.Token)
	}
	if cfg.Database != "file.sqlite3" || cfg.HTTPAddr != ":8087" {
		t.Errorf("unexpected database %q addr %q", cfg.Database, cfg.HTTPAddr)
	}
	if cfg.RejectAction != RejectKick {
		t.Errorf("reject action = %q", cfg.RejectAction)
	}
	if cfg.CacheTTL != 30*time.Second || cfg.EpochMs != 1288834974657 {
		t.Errorf("unexpected ttl %s epoch %d", cfg.CacheTTL, cfg.EpochMs)
	}
	if cfg.DataDir != "data" {
		t.Errorf("data dir should keep its default, got %q", cfg.DataDir)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load([]string{"--cmd", "server", "--config", filepath.Join(t.TempDir(), "nope.json")})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RejectAction != RejectBan || cfg.EpochMs != DiscordEpoch || cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadRejectsBadAction(t *testing.T) {
	path := writeConfig(t, `{"reject_action": "timeout"}`)
	if _, err := Load([]string{"--cmd", "server", "--config", path}); err == nil {
		t.Fatalf("expected an error for an unknown reject action")
	}
}

func TestLoadWithoutCommand(t *testing.T) {
	if _, err := Load(nil); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected ErrUsage got %v", err)
	}
}
