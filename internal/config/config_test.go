package config

import (
	"os"
	"path/filepath"
	"testing"

	coreconfig "github.com/m3rciful/teambot/core/config"
	coredatabase "github.com/m3rciful/teambot/core/database"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
telegram:
  token: "123:abc"
  admins: [42, 43]
database:
  driver: sqlite3
  path: ` + filepath.Join(dir, "bot.db") + `
team:
  name: Raven
  timezone: UTC
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.CoreConfig().Telegram.Admins; len(got) != 2 || got[0] != 42 {
		t.Fatalf("admins = %v", got)
	}
	if cfg.Telegram.RunMode != coreconfig.RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	if cfg.Team.MinAge != 21 || cfg.Team.UsersPerPage != 9 || cfg.Team.DefaultCarSeats != 3 {
		t.Fatalf("team defaults not applied: %+v", cfg.Team)
	}
	if cfg.Team.Location().String() != "UTC" {
		t.Fatalf("location = %v", cfg.Team.Location())
	}
	if cfg.Database.MaxConnections != 1 {
		t.Fatalf("sqlite pool = %d, want 1", cfg.Database.MaxConnections)
	}
}

func TestNormalizeRejects(t *testing.T) {
	base := func() Config {
		return Config{
			Config: coreconfig.Config{
				Telegram: coreconfig.TelegramConfig{Token: "t"},
			},
			Database: coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: "x.db"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad timezone", func(c *Config) { c.Team.Timezone = "Mars/Olympus" }},
		{"negative age", func(c *Config) { c.Team.MinAge = -1 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"missing token", func(c *Config) { c.Telegram.Token = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			if err := Normalize(&cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
