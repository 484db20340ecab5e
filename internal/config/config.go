package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/teambot/core/config"
	coredatabase "github.com/m3rciful/teambot/core/database"
)

// Config aggregates core settings with the team bot specific sections.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Team     TeamConfig          `yaml:"team"`
}

// TeamConfig describes the team and the limits of its membership flows.
type TeamConfig struct {
	Name string `yaml:"name" envconfig:"TEAM_NAME"`
	// MinAge is the youngest age accepted by the join survey and by admin edits.
	MinAge   int    `yaml:"min_age" envconfig:"TEAM_MIN_AGE"`
	Timezone string `yaml:"timezone" envconfig:"TEAM_TIMEZONE"`
	About    string `yaml:"about"`
	// UsersPerPage is the page size of the admin member list.
	UsersPerPage int `yaml:"users_per_page"`
	// DefaultCarSeats is offered when a member volunteers as a driver.
	DefaultCarSeats int `yaml:"default_car_seats"`

	location *time.Location
}

const (
	defaultMinAge       = 21
	defaultUsersPerPage = 9
	defaultCarSeats     = 3
	defaultTimezone     = "Europe/Moscow"
)

// Location returns the loaded team timezone, UTC before Normalize.
func (t TeamConfig) Location() *time.Location {
	if t.location == nil {
		return time.UTC
	}
	return t.location
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Load reads the YAML file, applies environment overrides and normalizes.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.ReadFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the whole configuration and fills defaults.
func Normalize(cfg *Config) error {
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}
	if err := cfg.Database.Normalize(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	t := &cfg.Team
	t.Name = strings.TrimSpace(t.Name)
	if t.MinAge == 0 {
		t.MinAge = defaultMinAge
	}
	if t.MinAge < 0 {
		return fmt.Errorf("team.min_age must be >= 0")
	}
	if t.UsersPerPage == 0 {
		t.UsersPerPage = defaultUsersPerPage
	}
	if t.UsersPerPage < 0 {
		return fmt.Errorf("team.users_per_page must be > 0")
	}
	if t.DefaultCarSeats == 0 {
		t.DefaultCarSeats = defaultCarSeats
	}
	if t.DefaultCarSeats < 0 {
		return fmt.Errorf("team.default_car_seats must be > 0")
	}
	if strings.TrimSpace(t.Timezone) == "" {
		t.Timezone = defaultTimezone
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return fmt.Errorf("team.timezone %q: %w", t.Timezone, err)
	}
	t.location = loc
	return nil
}
