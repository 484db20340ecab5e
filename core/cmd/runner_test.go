package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/teambot/core/config"
	coretelegram "github.com/m3rciful/teambot/core/telegram"
)

type stubConfig struct{ core *coreconfig.Config }

func (s stubConfig) CoreConfig() *coreconfig.Config { return s.core }

type stubApp struct {
	closed bool
}

func (a *stubApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func (a *stubApp) Close() error {
	a.closed = true
	return nil
}

func TestConfigPath(t *testing.T) {
	t.Setenv("TEAMBOT_TEST_CONFIG", "")
	opts := Options{ConfigEnvVar: "TEAMBOT_TEST_CONFIG", DefaultConfigPath: "config.yaml"}
	if p, err := opts.ConfigPath(); err != nil || p != "config.yaml" {
		t.Fatalf("ConfigPath() = %q, %v", p, err)
	}
	t.Setenv("TEAMBOT_TEST_CONFIG", "/etc/teambot.yaml")
	if p, _ := opts.ConfigPath(); p != "/etc/teambot.yaml" {
		t.Fatalf("env override ignored: %q", p)
	}
	t.Setenv("TEAMBOT_TEST_CONFIG", "")
	if _, err := (Options{ConfigEnvVar: "TEAMBOT_TEST_CONFIG"}).ConfigPath(); err == nil {
		t.Fatal("expected error without any path")
	}
}

func TestRunWiresHooksAndCloses(t *testing.T) {
	app := &stubApp{}
	var started, stopped bool
	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		ConfigEnvVar:      "TEAMBOT_TEST_CONFIG_UNSET",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return stubConfig{core: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(context.Context, ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			started = opts.OnStart(ctx, coretelegram.Runtime{}) == nil
			stopped = opts.OnStop(ctx, coretelegram.Runtime{}) == nil
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !started || !stopped || !app.closed {
		t.Fatalf("started=%v stopped=%v closed=%v", started, stopped, app.closed)
	}
}

func TestRunBootstrapError(t *testing.T) {
	boom := errors.New("boom")
	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		ConfigEnvVar:      "TEAMBOT_TEST_CONFIG_UNSET",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return stubConfig{core: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) { return nil, boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want wrapped boom", err)
	}
}
