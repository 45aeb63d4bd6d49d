package infra

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"kiosco/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migraciones embed.FS

// NewDatabase opens a GORM connection backed by pgx, migrates the kiosk tables
// and, when instalarRPC is set, installs the PL/pgSQL functions of the atomic
// sale path. Without them the services run on the sequential fallback.
func NewDatabase(dsn string, instalarRPC bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.New(zerologWriter{}, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db, instalarRPC); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates the schema and applies the idempotent SQL patches that
// AutoMigrate cannot express. Integration tests call it directly.
func RunMigrations(db *gorm.DB, instalarRPC bool) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Producto{},
		&model.MovimientoStock{},
		&model.Combo{},
		&model.ComboItem{},
		&model.Venta{},
		&model.VentaItem{},
		&model.VentaCombo{},
		&model.CierreCaja{},
		&model.FuenteReposicion{},
		&model.CompraReposicion{},
		&model.TasaCambio{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	if instalarRPC {
		if err := InstalarFunciones(db); err != nil {
			return fmt.Errorf("funciones atómicas: %w", err)
		}
	}
	return nil
}

// applySchemaPatches runs DDL that GORM cannot derive from struct tags. Each
// statement is guarded so re-running on a patched database is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// voided sales keep their items; deleting an orphan header removes them
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_sale_items_sale') THEN
		    ALTER TABLE sale_items
		      ADD CONSTRAINT fk_sale_items_sale FOREIGN KEY (sale_id) REFERENCES sales(id) ON DELETE CASCADE;
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_sale_combos_sale') THEN
		    ALTER TABLE sale_combos
		      ADD CONSTRAINT fk_sale_combos_sale FOREIGN KEY (sale_id) REFERENCES sales(id) ON DELETE CASCADE;
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_sales_estado') THEN
		    ALTER TABLE sales ADD CONSTRAINT chk_sales_estado CHECK (estado IN ('activa', 'anulada'));
		  END IF;
		END $$`,
		`CREATE INDEX IF NOT EXISTS idx_products_reponer
		    ON products (stock) WHERE activo AND stock <= stock_minimo`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

// InstalarFunciones executes every embedded migrations/*.sql file in name order.
func InstalarFunciones(db *gorm.DB) error {
	nombres, err := fs.Glob(migraciones, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(nombres)
	for _, n := range nombres {
		sql, err := migraciones.ReadFile(n)
		if err != nil {
			return err
		}
		if err := db.Exec(string(sql)).Error; err != nil {
			return fmt.Errorf("%s: %w", n, err)
		}
		log.Debug().Str("archivo", n).Msg("funciones SQL instaladas")
	}
	return nil
}

// EliminarFunciones drops the atomic-path functions; the integration suite uses
// it to exercise the fallback against a real database.
func EliminarFunciones(db *gorm.DB) error {
	return db.Exec(`
DROP FUNCTION IF EXISTS create_sale_atomic(text, numeric, text, text, text, jsonb, jsonb);
DROP FUNCTION IF EXISTS cancel_sale_atomic(uuid);
DROP FUNCTION IF EXISTS increment_stock(uuid, integer);`).Error
}

// zerologWriter routes GORM's logger through the global zerolog logger.
type zerologWriter struct{}

func (zerologWriter) Printf(format string, args ...interface{}) {
	log.Warn().Str("origen", "gorm").Msgf(format, args...)
}
