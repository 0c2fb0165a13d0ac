package main

import (
	"errors"
	"log"

	corecmd "github.com/m3rciful/p2pbot/core/cmd"
	"github.com/m3rciful/p2pbot/internal/bot"
)

var errUnexpectedConfig = errors.New("unexpected config carrier type")

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return bot.LoadConfig(path)
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg, ok := carrier.(*bot.Config)
			if !ok {
				return nil, errUnexpectedConfig
			}
			return bot.NewApp(cfg)
		},
	})
	if err != nil {
		log.Fatalf("bot exited: %v", err)
	}
}
