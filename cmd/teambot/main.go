// Command teambot runs the airsoft team membership bot.
package main

import (
	"context"
	"log"

	"github.com/m3rciful/teambot/core/bootstrap"
	corecmd "github.com/m3rciful/teambot/core/cmd"
	"github.com/m3rciful/teambot/internal/bot"
	"github.com/m3rciful/teambot/internal/config"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg := carrier.(*config.Config)
			res, err := bootstrap.Run(ctx, bootstrap.Options{
				Config:   cfg.CoreConfig(),
				Database: cfg.Database,
			})
			if err != nil {
				return nil, err
			}
			return bot.New(cfg, res.DB), nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
