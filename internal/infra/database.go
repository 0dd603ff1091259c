package infra

import (
	"fmt"

	"taller/internal/config"
	"taller/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// and then applies the Postgres-only patches GORM cannot express.
//
// TranslateError makes unique violations surface as gorm.ErrDuplicatedKey so
// services can map them to conflict errors without inspecting driver codes.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates every table. It is shared by the server,
// the integration tests (Postgres) and the service tests (SQLite).
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// express on its own. Each statement is guarded so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Last line of defence for the stock ledger's conditional UPDATE.
		{"check productos.stock_actual >= 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_stock_no_negativo') THEN
    ALTER TABLE productos ADD CONSTRAINT chk_productos_stock_no_negativo CHECK (stock_actual >= 0);
  END IF;
END $$`},
		{"check detalles_compra.cantidad > 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_detalles_compra_cantidad') THEN
    ALTER TABLE detalles_compra ADD CONSTRAINT chk_detalles_compra_cantidad CHECK (cantidad > 0);
  END IF;
END $$`},
		{"check detalles_venta_meson.cantidad > 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_detalles_venta_meson_cantidad') THEN
    ALTER TABLE detalles_venta_meson ADD CONSTRAINT chk_detalles_venta_meson_cantidad CHECK (cantidad > 0);
  END IF;
END $$`},
		// Case-insensitive search over client names and plates.
		{"idx clientes lower(nombre)",
			`CREATE INDEX IF NOT EXISTS idx_clientes_nombre_lower ON clientes (LOWER(nombre))`},
		{"idx ordenes_trabajo fecha_ingreso desc",
			`CREATE INDEX IF NOT EXISTS idx_ordenes_trabajo_fecha_desc ON ordenes_trabajo (fecha_ingreso DESC)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
