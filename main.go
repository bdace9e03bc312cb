package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/internal/auth"
	"github.com/robalobadob/battleship/internal/config"
	"github.com/robalobadob/battleship/internal/database"
	"github.com/robalobadob/battleship/internal/httpserver"
	"github.com/robalobadob/battleship/internal/service"
	"github.com/robalobadob/battleship/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	st, closeStore := openStore(cfg)
	defer closeStore()

	srv := httpserver.New(httpserver.Services{
		Accounts: service.NewAccounts(st),
		Games:    service.NewGames(st),
		Stats:    service.NewStats(st, cfg.LeaderboardLimit),
	}, httpserver.Options{
		Signer:         auth.NewSigner(cfg.JWTSecret, cfg.JWTTTL),
		CookieName:     cfg.CookieName,
		SecureCookies:  cfg.Production(),
		ClientOrigin:   cfg.ClientOrigin,
		RequestTimeout: cfg.RequestTimeout,
	})

	log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("starting battleship server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

// openStore returns the configured store and a func releasing it.
func openStore(cfg config.Config) (store.Store, func()) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return store.NewMemoryStore(), func() {}
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	return store.NewSQLiteStore(db), func() { _ = db.Close() }
}
