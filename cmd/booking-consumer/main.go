// Command booking-consumer drains the booking.confirmed queue and appends
// one line per confirmed booking to booking.log.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/golf-tee-booking/internal/config"
	"github.com/iliyamo/golf-tee-booking/internal/logging"
	"github.com/iliyamo/golf-tee-booking/internal/queue"
)

func main() {
	logging.Init("booking-consumer", os.Getenv("APP_ENV"))

	cfg, err := config.LoadRabbitConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{URL: cfg.URL, Queue: cfg.Queue, LogDir: cfg.LogDir}
	log.Info().Str("queue", cfg.Queue).Str("log_dir", cfg.LogDir).Msg("booking-consumer started")
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("booking-consumer stopped")
	}
	log.Info().Msg("booking-consumer stopped")
}
