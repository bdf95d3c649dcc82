package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/golf-tee-booking/internal/config"
	"github.com/iliyamo/golf-tee-booking/internal/database"
	"github.com/iliyamo/golf-tee-booking/internal/handler"
	"github.com/iliyamo/golf-tee-booking/internal/logging"
	"github.com/iliyamo/golf-tee-booking/internal/middleware"
	"github.com/iliyamo/golf-tee-booking/internal/queue"
	"github.com/iliyamo/golf-tee-booking/internal/repository"
	"github.com/iliyamo/golf-tee-booking/internal/repository/memory"
	"github.com/iliyamo/golf-tee-booking/internal/router"
	"github.com/iliyamo/golf-tee-booking/internal/service"
	"github.com/iliyamo/golf-tee-booking/internal/storage"
)

// stores groups the persistence backends selected by STORE_DRIVER.
type stores struct {
	users    service.UserStore
	teeTimes service.TeeTimeStore
	bookings service.BookingStore
	db       *sqlx.DB
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.StoreDriver == "memory" {
		m := memory.NewStore()
		return stores{users: m.Users(), teeTimes: m.TeeTimes(), bookings: m.Bookings()}, nil
	}
	db, err := database.Open(cfg.DB)
	if err != nil {
		return stores{}, err
	}
	if err := database.Migrate(ctx, db.DB); err != nil {
		_ = db.Close()
		return stores{}, err
	}
	return stores{
		users:    repository.NewUserRepo(db),
		teeTimes: repository.NewTeeTimeRepo(db),
		bookings: repository.NewBookingRepo(db),
		db:       db,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Init("golf-tee-booking", "production")
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Init("golf-tee-booking", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store")
	}
	if st.db != nil {
		defer st.db.Close()
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	var tokens service.TokenRevoker
	if rdb != nil {
		tokens = repository.NewTokenRepo(rdb)
	} else {
		log.Warn().Msg("redis unavailable: token revocation is process-local")
		tokens = memory.NewTokenStore()
	}

	var events service.EventPublisher
	if cfg.Rabbit.Enabled {
		pub := queue.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Queue)
		defer pub.Close()
		events = pub
	}

	pictures, err := storage.New(ctx, cfg.Upload)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Upload.Driver).Msg("picture storage")
	}

	if cfg.SeedDemoData {
		n, err := service.Seed(ctx, st.teeTimes, service.DefaultSchedule(), time.Now(), cfg.Location(), true)
		if err != nil {
			log.Fatal().Err(err).Msg("seed tee times")
		}
		log.Info().Int("slots", n).Msg("demo schedule seeded")
	}

	cache := middleware.NewResponseCache(cfg.Cache, rdb)
	auth := service.NewAuthService(st.users, tokens, cfg.Auth)
	bookings := service.NewBookingManager(st.users, st.teeTimes, st.bookings, events, cache)

	e := router.New(cfg)
	gate := middleware.JWTAuth(auth)
	limit := middleware.NewTokenBucket(cfg.RateLimit, rdb)

	checks := map[string]handler.Pinger{}
	if st.db != nil {
		checks["mysql"] = st.db
	}
	if rdb != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	router.RegisterRoutes(e, handler.Ready(checks))
	if cfg.Upload.Driver == "disk" {
		router.RegisterUploads(e, cfg.Upload.Dir)
	}
	router.RegisterAuth(e,
		handler.NewAuthHandler(auth),
		handler.NewProfileHandler(service.NewProfileService(st.users, pictures, cfg.Upload.MaxBytes)),
		gate, limit)
	router.RegisterBooking(e,
		handler.NewTeeTimeHandler(service.NewTeeTimeService(st.teeTimes, cfg.Location())),
		handler.NewBookingHandler(bookings),
		gate, limit, cache)
	router.RegisterChat(e, handler.NewChatHandler(service.NewChatAssistant(service.DefaultSchedule().Courses)), limit)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}
