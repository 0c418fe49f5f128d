package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/abbakary/portals/internal/config"
	"github.com/abbakary/portals/internal/db"
	"github.com/abbakary/portals/internal/db/migrations"
	internalhttp "github.com/abbakary/portals/internal/http"
	"github.com/abbakary/portals/internal/operations"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	defer pool.Close()

	migrationDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	if err := migrations.MigrateUp(migrationDB); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}
	_ = migrationDB.Close()

	store := db.NewStore(pool)

	if cfg.SeedChecklist {
		if err := operations.SeedChecklist(ctx, store, nil); err != nil {
			log.Fatalf("checklist seed failed: %v", err)
		}
		log.Printf("checklist structure seeded")
	}

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := cache.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable, reference cache disabled: %v", err)
			cache = nil
		}
	}

	server := internalhttp.NewServer(cfg, store, cache)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("portal listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
