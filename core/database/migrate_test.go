package database

import "testing"

func TestSelectApplied(t *testing.T) {
	files := []string{"000001_init.up.sql", "000002_events.up.sql", "000003_rides.up.sql"}
	tests := []struct {
		name     string
		from, to uint64
		want     int
	}{
		{"fresh", 0, 3, 3},
		{"partial", 1, 3, 2},
		{"nochange", 3, 3, 0},
	}
	for _, tt := range tests {
		if got := selectApplied(files, tt.from, tt.to); len(got) != tt.want {
			t.Errorf("%s: got %v, want %d files", tt.name, got, tt.want)
		}
	}
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{Driver: "sqlite", Path: "team.db"}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Driver != DriverSQLite || cfg.MaxConnections != 1 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.MigrationsDir != "migrations/sqlite3" {
		t.Fatalf("migrations dir = %q", cfg.MigrationsDir)
	}
	if got := cfg.DSN(); got != "team.db?_foreign_keys=on" {
		t.Fatalf("DSN = %q", got)
	}

	pg := Config{Host: "db", User: "bot", Password: "p@ss", Name: "team"}
	if err := pg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := pg.DSN(); got != "postgres://bot:p%40ss@db:5432/team?sslmode=disable" {
		t.Fatalf("DSN = %q", got)
	}

	bad := Config{Driver: "mysql"}
	if err := bad.Normalize(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
