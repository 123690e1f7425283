package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"lifedeck/internal/catalog"
	"lifedeck/internal/storage"
	"lifedeck/internal/web"
)

type config struct {
	Addr      string `env:"LIFEDECK_WEB_ADDR"   envDefault:":8080"`
	DBPath    string `env:"LIFEDECK_DB_PATH"    envDefault:"lifedeck.db"`
	CardsPath string `env:"LIFEDECK_CARDS_PATH"`
	GameAddr  string `env:"LIFEDECK_GAME_ADDR"  envDefault:"localhost:9000"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cat, err := catalog.Open(cfg.CardsPath)
	if err != nil {
		logger.Fatal("load card catalog", zap.Error(err))
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("open storage", zap.Error(err))
	}
	defer store.Close()

	srv := web.NewServer(store, cat, cfg.GameAddr, logger)
	logger.Info("web API listening", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(cfg.Addr); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}
