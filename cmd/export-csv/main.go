package main

import (
	"context"
	"flag"
	"os"
	"time"

	"readlog/internal/server"
	"readlog/internal/storage"
	"readlog/internal/transfer"
	"readlog/pkg/database"
	"readlog/pkg/utils"
)

func main() {
	var (
		out    = flag.String("out", "data", "output directory")
		format = flag.String("format", "csv", "csv or yaml")
	)
	flag.Parse()

	cfg, err := utils.LoadConfig()
	if err != nil {
		server.NewLogger(os.Stderr, "info", "text").Error("load config", "error", err)
		os.Exit(1)
	}
	logger := server.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(cfg.Database())
	if err != nil {
		logger.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Error("db migrate failed", "error", err)
		os.Exit(1)
	}

	paths, err := transfer.Export(ctx, storage.NewStore(db), *out, *format)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	logger.Info("export complete", "files", paths)
}
