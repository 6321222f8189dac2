package main

import (
	"context"
	"net/http"
	netrpc "net/rpc"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/playvault/server/cache"
	"github.com/playvault/server/config"
	"github.com/playvault/server/events"
	"github.com/playvault/server/logger"
	"github.com/playvault/server/monitor"
	"github.com/playvault/server/persistence"
	"github.com/playvault/server/rpc"
	"github.com/playvault/server/server"
	"github.com/playvault/server/services"
	"github.com/playvault/server/session"
	"github.com/playvault/server/timer"
	"github.com/playvault/server/upload"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	db, err := persistence.NewGormPostgreSQL(
		cfg.Database.Postgres.Host,
		cfg.Database.Postgres.Port,
		cfg.Database.Postgres.User,
		cfg.Database.Postgres.Password,
		cfg.Database.Postgres.DBName,
	)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Info("Database connection successful.")

	// Session store in Redis so logins survive restarts
	store, err := cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Session.TTL())
	if err != nil {
		logger.Log.Fatalf("Failed to connect to redis: %v", err)
	}
	sessions := session.NewManager(store, cfg.Session.TTL())

	// Event feed and metrics
	hub := events.NewHub()
	mon := monitor.NewMonitor("playvault")
	mon.StartServer(cfg.Server.MetricsAddress)

	// Services
	catalog := services.NewCatalogService(db)
	users := services.NewUserService(db)
	comments := services.NewCommentService(db, hub)
	wishlist := services.NewWishlistService(db, hub)
	cart := services.NewCartService(db, hub)
	checkout := services.NewCheckoutService(db, hub, mon)
	stats := services.NewStatsService(db)

	// Daily statistics snapshot job
	timers := timer.NewManager()
	timers.Schedule(time.Minute, cfg.Stats.RefreshInterval(), stats.Run)

	// Admin RPC surface
	rpcServer, err := rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	if err := netrpc.Register(rpc.NewStatsService(stats)); err != nil {
		logger.Log.Fatalf("Failed to register RPC service: %v", err)
	}
	go rpcServer.Start()

	// HTTP API
	srv := server.New(cfg.Server.HTTPAddress, server.Deps{
		Sessions: sessions,
		Hub:      hub,
		Monitor:  mon,
		Uploader: upload.NewClient(cfg.Upload.Endpoint, cfg.Upload.Preset),
		Catalog:  catalog,
		Users:    users,
		Comments: comments,
		Wishlist: wishlist,
		Cart:     cart,
		Checkout: checkout,
		Stats:    stats,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Errorf("HTTP server shutdown failed: %v", err)
	}

	rpcServer.Stop()
	timers.Stop()
	if err := store.Close(); err != nil {
		logger.Log.Errorf("Redis close failed: %v", err)
	}
	if err := db.Close(); err != nil {
		logger.Log.Errorf("Database close failed: %v", err)
	}
	logger.Log.Info("Server stopped gracefully")
}
