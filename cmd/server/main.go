// Command server runs the Power Plays game service: HTTP API, game
// WebSockets, and optional Postgres/Redis persistence.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/votecraft/powerplays/internal/cache"
	"github.com/votecraft/powerplays/internal/config"
	"github.com/votecraft/powerplays/internal/database"
	"github.com/votecraft/powerplays/internal/server"
)

func main() {
	config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if dsn := config.DatabaseDSN(); dsn != "" {
		if err := database.Connect(ctx, dsn); err != nil {
			logrus.Fatalf("Database connection failed: %v", err)
		}
		defer database.DB.Close()
		if err := database.Migrate(ctx); err != nil {
			logrus.Fatalf("Database migration failed: %v", err)
		}
	} else {
		logrus.Warn("DATABASE_URL not set; running without persistence")
	}

	if addr := config.RedisAddr(); addr != "" {
		if err := cache.InitRedis(addr, config.RedisPassword(), 0); err != nil {
			logrus.Fatalf("Redis connection failed: %v", err)
		}
	} else {
		logrus.Warn("REDIS_ADDR not set; running without action history")
	}

	srv := &http.Server{
		Addr:              config.ListenAddr(),
		Handler:           server.NewServer().Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Shutdown: %v", err)
	}
	os.Exit(0)
}
