package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/enspm-hub/hub-backend/config"
	"github.com/enspm-hub/hub-backend/internal/auth"
	"github.com/enspm-hub/hub-backend/internal/bootstrap"
	"github.com/enspm-hub/hub-backend/internal/obs"
	cronjob "github.com/enspm-hub/hub-backend/internal/opportunities/cron"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)
	obs.Init()

	ctx := context.Background()

	pool, err := bootstrap.OpenDB(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	tokens := auth.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    "hub-backend",
		Version:        cfg.App.Version,
		MediaRoot:      cfg.Media.Root,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DB:             pool,
		Cache:          rdb,
		Tokens:         tokens,
	})

	sched := cronjob.NewScheduler(pool)
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
