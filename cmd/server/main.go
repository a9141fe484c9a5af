package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quotient-labs/swap-engine/internal/config"
	"github.com/quotient-labs/swap-engine/internal/engine"
	"github.com/quotient-labs/swap-engine/internal/http"
)

func main() {
	// Missing .env is fine in deployed environments; config falls back to
	// the process environment.
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	generalCfg := &config.GeneralConfig{}
	if err := generalCfg.Load(); err != nil {
		log.Error().Err(err).Msg("failed to load server config")
		return
	}
	setLogLevel(generalCfg.LogLevel)

	chainCfg := &config.ChainConfig{}
	if err := chainCfg.Load(); err != nil {
		log.Error().Err(err).Msg("failed to load chain config")
		return
	}
	swapCfg := &config.SwapConfig{}
	if err := swapCfg.Load(); err != nil {
		log.Error().Err(err).Msg("failed to load swap config")
		return
	}

	eng := engine.New(chainCfg, swapCfg)
	svc := http.NewHTTPService(generalCfg, swapCfg, eng)

	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
		}
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		if err := svc.Stop(); err != nil {
			log.Error().Err(err).Msg("error during shutdown")
		}
	}
	log.Info().Msg("shutdown complete")
}

func setLogLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "WARN":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "ERROR":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
