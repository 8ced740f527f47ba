package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/internal/jobs"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name})
	zl := log.Component("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB, zl)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	m := metrics.New()
	engine := inventory.NewStockEngine(zl, m)
	reconcileUC := inventory.NewReconcileUseCase(postgres.NewTxRunner(pool, zl), engine, m, zl)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		Redis:         jobs.RedisOpt(cfg.Redis),
		Logger:        zl,
		Reconciler:    reconcileUC,
		ReconcileCron: cfg.Inventory.ReconcileCron,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar worker")
	}

	if err := worker.Run(ctx); err != nil {
		log.Error().Err(err).Msg("worker finalizado con error")
	}
}
