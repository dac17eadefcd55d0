package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hydrangea-games/fishpond/internal/catalog"
	"github.com/hydrangea-games/fishpond/internal/concurrency"
	"github.com/hydrangea-games/fishpond/internal/config"
	"github.com/hydrangea-games/fishpond/internal/database"
	"github.com/hydrangea-games/fishpond/internal/game"
	"github.com/hydrangea-games/fishpond/internal/logger"
	"github.com/hydrangea-games/fishpond/internal/repository"
	"github.com/hydrangea-games/fishpond/internal/scheduler"
	"github.com/hydrangea-games/fishpond/internal/server"
	"github.com/hydrangea-games/fishpond/internal/store"
	"github.com/hydrangea-games/fishpond/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	logger.Setup(cfg.LogLevel, cfg.LogFormat, nil)
	log := slog.Default()

	connString := cfg.GetDBConnString()
	if err := database.Migrate(connString); err != nil {
		log.Error("Migrations failed", "error", err)
		os.Exit(1)
	}

	pool, err := database.NewPool(connString, cfg.DBMaxConns, 5*time.Minute, 30*time.Minute)
	if err != nil {
		log.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	cached, err := store.NewCachedStore(store.NewPostgresStore(pool), cfg.CacheSize)
	if err != nil {
		log.Error("Cache setup failed", "error", err)
		os.Exit(1)
	}

	cat, err := catalog.Load(cfg.CatalogDir)
	if err != nil {
		log.Error("Catalog load failed", "error", err, "dir", cfg.CatalogDir)
		os.Exit(1)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	repo := repository.New(cached)
	locks := concurrency.NewLockManager()
	gameService := game.NewService(repo, cat, locks, seed)

	// Background cadence: spawns every tick, raid monsters hourly (the
	// service dedups by hour key), raid rounds on the battle period.
	workerPool := worker.NewPool(2, 16)
	workerPool.Start()
	defer workerPool.Stop()

	sched := scheduler.New(workerPool)
	sched.Schedule(time.Duration(cfg.SpawnPeriod)*time.Second, worker.JobFunc(gameService.SpawnTick))
	sched.Schedule(time.Minute, worker.JobFunc(gameService.BattleSpawnCheck))
	sched.Schedule(time.Duration(cfg.BattlePeriod)*time.Second, worker.JobFunc(gameService.BattleTick))
	defer sched.Stop()

	feverWorker := worker.NewFeverWorker(gameService)
	feverWorker.Start()

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies, pool, gameService)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	select {
	case err := <-errCh:
		log.Error("Server failed", "error", err)
	case sig := <-sc:
		log.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := feverWorker.Shutdown(ctx); err != nil {
		log.Warn("Fever worker shutdown incomplete", "error", err)
	}
	if err := srv.Stop(ctx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
}
