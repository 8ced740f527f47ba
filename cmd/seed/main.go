// seed carga un catálogo inicial (bodega principal, variantes y existencias de apertura) para una empresa.
//
// Uso: go run ./cmd/seed -company <uuid> [-latin1] catalogo.csv
// Las existencias se registran como ajustes ENTRADA para que el Kardex cuadre desde el primer día.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	companyID := flag.String("company", "", "empresa destino (uuid)")
	warehouseName := flag.String("warehouse", "Principal", "nombre de la bodega principal si no existe")
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	flag.Parse()

	if _, err := uuid.Parse(*companyID); err != nil || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed -company <uuid> [-latin1] catalogo.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name})
	zl := log.Component("seed")

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir catálogo")
	}
	rows, err := readCatalog(f, *latin1)
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("catálogo inválido")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, zl)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	tx := postgres.NewTxRunner(pool, zl)
	engine := inventory.NewStockEngine(zl, inventory.NopMetrics{})
	s := seeder{
		tx:         tx,
		warehouses: usecase.NewWarehouseUseCase(tx, engine, zl),
		movements:  inventory.NewRegisterMovementUseCase(tx, engine, zl),
		logger:     zl,
	}
	if err := s.run(ctx, *companyID, *warehouseName, rows); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
}

type seeder struct {
	tx         inventory.TxRunner
	warehouses *usecase.WarehouseUseCase
	movements  *inventory.RegisterMovementUseCase
	logger     zerolog.Logger
}

// run es idempotente por SKU: variantes existentes no se duplican ni reciben otra apertura.
func (s seeder) run(ctx context.Context, companyID, warehouseName string, rows []catalogRow) error {
	wh, err := s.primaryWarehouse(ctx, companyID, warehouseName)
	if err != nil {
		return err
	}

	var created, skipped int
	for _, row := range rows {
		variant := &entity.ProductVariant{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			SKU:       row.SKU,
			Name:      row.Name,
			Price:     row.Price,
			Cost:      row.Cost,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		err := s.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
			return repos.Variants.Create(ctx, variant)
		})
		if errors.Is(err, domain.ErrDuplicate) {
			skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("variante %s: %w", row.SKU, err)
		}
		created++

		if row.Quantity == 0 {
			continue
		}
		cost := row.Cost
		if _, err := s.movements.Adjust(ctx, inventory.AdjustmentInput{
			CompanyID:   companyID,
			VariantID:   variant.ID,
			WarehouseID: wh,
			Type:        entity.AdjustmentEntrada,
			Quantity:    row.Quantity,
			UnitCost:    &cost,
			Note:        "saldo inicial",
		}); err != nil {
			return fmt.Errorf("apertura %s: %w", row.SKU, err)
		}
	}

	s.logger.Info().Int("creadas", created).Int("omitidas", skipped).Str("warehouse_id", wh).Msg("catálogo cargado")
	return nil
}

func (s seeder) primaryWarehouse(ctx context.Context, companyID, name string) (string, error) {
	var id string
	err := s.tx.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		w, err := repos.Warehouses.GetPrimary(ctx, companyID)
		if err != nil {
			return err
		}
		if w != nil {
			id = w.ID
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	out, err := s.warehouses.Create(ctx, companyID, dto.CreateWarehouseRequest{Name: name, IsPrimary: true})
	if err != nil {
		return "", err
	}
	return out.ID, nil
}
