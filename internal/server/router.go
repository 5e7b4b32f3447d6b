// Package server assembles the HTTP API.
package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"readlog/internal/auth"
	"readlog/internal/books"
	"readlog/internal/readings"
	"readlog/internal/reconcile"
	"readlog/internal/storage"
	"readlog/internal/sync"
)

type Deps struct {
	DB           *sql.DB
	Store        *storage.Store
	Reconciler   *reconcile.Reconciler
	Hub          *sync.Hub
	Tokens       auth.TokenService
	PasswordHash string
	Logger       *slog.Logger
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(d.Logger))
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := d.Hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := d.DB.PingContext(ctx); err != nil {
			d.Logger.Error("readiness ping failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db":          "unavailable",
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	router.GET("/ws", sync.WSHandler(d.Hub))

	auth.NewHandler(d.PasswordHash, d.Tokens).RegisterRoutes(router.Group("/auth"))
	books.NewHandler(d.Store).RegisterRoutes(router.Group("/books"))
	readings.NewHandler(d.Reconciler, d.Store, d.Hub).
		RegisterRoutes(router.Group("/readings"), auth.AuthMiddleware(d.Tokens))

	return router
}
