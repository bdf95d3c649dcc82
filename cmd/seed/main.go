// Command seed fills the tee_times table with the demo schedule: thirty
// days of hourly starts on four courses for both round lengths.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/golf-tee-booking/internal/config"
	"github.com/iliyamo/golf-tee-booking/internal/database"
	"github.com/iliyamo/golf-tee-booking/internal/logging"
	"github.com/iliyamo/golf-tee-booking/internal/repository"
	"github.com/iliyamo/golf-tee-booking/internal/service"
)

func main() {
	days := flag.Int("days", 30, "number of days to generate, starting today")
	force := flag.Bool("force", false, "insert even when tee times already exist (duplicates are skipped)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Init("golf-seed", "production")
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Init("golf-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db.DB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	sc := service.DefaultSchedule()
	sc.Days = *days
	n, err := service.Seed(ctx, repository.NewTeeTimeRepo(db), sc, time.Now(), cfg.Location(), !*force)
	if err != nil {
		log.Fatal().Err(err).Msg("seed tee times")
	}
	if n == 0 {
		log.Info().Msg("tee times already present, nothing to do (use -force to top up)")
		return
	}
	log.Info().Int("slots", n).Int("days", sc.Days).Msg("tee times seeded")
}
