package infra

import (
	"fmt"

	"arelyz/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the
// schema up to date (AutoMigrate + idempotent SQL patches).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates every table. Also used by tests against
// SQLite and by the integration suite; the SQL patches only run on PostgreSQL.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Venta{},
		&model.VentaCredito{},
		&model.Abono{},
		&model.Gasto{},
		&model.Arqueo{},
		&model.Facturado{},
	); err != nil {
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

// applySchemaPatches runs idempotent DDL that GORM AutoMigrate cannot express
// (partial indexes, CHECK constraints). Each statement is guarded so re-running
// on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// the aggregator only reads credits/abonos not yet reconciled
		{"partial index ventas_credito pendientes", `
CREATE INDEX IF NOT EXISTS idx_ventas_credito_pendientes
    ON ventas_credito (fecha) WHERE arqueo_id IS NULL`},
		{"partial index abonos pendientes", `
CREATE INDEX IF NOT EXISTS idx_abonos_pendientes
    ON abonos (fecha) WHERE arqueo_id IS NULL`},
		{"check ventas montos", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ventas_montos') THEN
    ALTER TABLE ventas ADD CONSTRAINT chk_ventas_montos
      CHECK (total >= 0 AND monto_efectivo >= 0 AND monto_tarjeta >= 0 AND monto_transferencia >= 0);
  END IF;
END $$`},
		{"check abonos montos", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_abonos_montos') THEN
    ALTER TABLE abonos ADD CONSTRAINT chk_abonos_montos
      CHECK (monto >= 0 AND monto_efectivo >= 0 AND monto_tarjeta >= 0 AND monto_transferencia >= 0);
  END IF;
END $$`},
		{"check gastos monto", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_gastos_monto') THEN
    ALTER TABLE gastos ADD CONSTRAINT chk_gastos_monto CHECK (monto >= 0);
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
