// Command btcchina queries the BTC China API from the command line.
//
// Credentials and endpoints are read from the environment, or from a .env file
// in the working directory.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("failed to load .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{logger: logger, out: os.Stdout, load: loadConfig}
	defer a.close()

	if err := newRootCmd(ctx, a).ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("command failed")
		a.close()
		stop()
		os.Exit(1)
	}
}
