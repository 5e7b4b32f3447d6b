package main

import (
	"context"
	"flag"
	"os"
	"time"

	"readlog/internal/reconcile"
	"readlog/internal/server"
	"readlog/internal/storage"
	"readlog/internal/transfer"
	"readlog/pkg/database"
	"readlog/pkg/utils"
)

func main() {
	in := flag.String("in", "data/read_instances.csv", "input CSV of read instances")
	books := flag.String("books", "", "optional books.csv export whose aggregates are restored after the replay")
	flag.Parse()

	cfg, err := utils.LoadConfig()
	if err != nil {
		server.NewLogger(os.Stderr, "info", "text").Error("load config", "error", err)
		os.Exit(1)
	}
	logger := server.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
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

	f, err := os.Open(*in)
	if err != nil {
		logger.Error("open input", "path", *in, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	// per-row reconciler logs are noise during a bulk replay
	rec := reconcile.New(storage.NewStore(db), reconcile.WithLogger(server.NewLogger(os.Stderr, "warn", cfg.LogFormat)))
	res, err := transfer.ImportCSV(ctx, f, rec)
	if err != nil {
		logger.Error("import failed", "path", *in, "imported", res.Imported, "error", err)
		os.Exit(1)
	}

	logger.Info("import complete", "path", *in, "imported", res.Imported, "skipped", res.Skipped)

	if *books == "" {
		return
	}
	bf, err := os.Open(*books)
	if err != nil {
		logger.Error("open books", "path", *books, "error", err)
		os.Exit(1)
	}
	defer bf.Close()

	n, err := transfer.RestoreBooksCSV(ctx, bf, storage.NewStore(db))
	if err != nil {
		logger.Error("restore books failed", "path", *books, "error", err)
		os.Exit(1)
	}
	logger.Info("books restored", "path", *books, "restored", n)
}
