package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"readlog/internal/auth"
	"readlog/internal/metrics"
	"readlog/internal/reconcile"
	"readlog/internal/server"
	"readlog/internal/storage"
	synchub "readlog/internal/sync"
	"readlog/pkg/database"
	"readlog/pkg/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		server.NewLogger(os.Stderr, "info", "text").Error("load config", "error", err)
		os.Exit(1)
	}

	logger := server.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(gin.ReleaseMode)

	db, err := database.Open(cfg.Database())
	if err != nil {
		logger.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		logger.Error("db migrate failed", "error", err)
		os.Exit(1)
	}
	if cfg.OwnerPasswordHash == "" {
		logger.Warn("READLOG_OWNER_PASSWORD_HASH is not set; logins will be refused")
	}

	store := storage.NewStore(db)
	rec := reconcile.New(store,
		reconcile.WithLogger(logger),
		reconcile.WithRecorder(metrics.NewRecorder(prometheus.DefaultRegisterer)),
	)

	hub := synchub.NewHub(logger)
	tcpSrv := synchub.NewServer(cfg.SyncAddr, hub)

	router := server.NewRouter(server.Deps{
		DB:         db,
		Store:      store,
		Reconciler: rec,
		Hub:        hub,
		Tokens: auth.TokenService{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Duration: cfg.JWTDuration,
		},
		PasswordHash: cfg.OwnerPasswordHash,
		Logger:       logger,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("http api listening", "addr", cfg.HTTPAddr, "db", cfg.DBPath)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := tcpSrv.Close(); err != nil {
		logger.Error("tcp shutdown", "error", err)
	}

	wg.Wait()
	logger.Info("servers stopped")
}
