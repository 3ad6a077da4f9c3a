package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"waymark/internal/store"
	"waymark/shared/go/config"
	"waymark/shared/go/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logging.SetGlobalLogger(logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}))

	db, err := openDatabase(context.Background(), cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()

	dataStore := store.New(db)

	if cfg.BootstrapDemo {
		if err := bootstrapDemoData(context.Background(), db, dataStore); err != nil {
			log.Fatal().Err(err).Msg("bootstrap demo data")
		}
	}

	handler := newHTTPHandler(cfg, dataStore)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("addr", cfg.Addr()).Msg("API listening")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
