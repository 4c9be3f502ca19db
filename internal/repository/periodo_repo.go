package repository

import (
	"context"

	"arelyz/internal/calculo"
	"arelyz/internal/model"

	"gorm.io/gorm"
)

// PeriodoRepository reads the four record collections of a half-open period.
// Credits and abonos already stamped by a previous arqueo are excluded.
type PeriodoRepository interface {
	ListVentas(ctx context.Context, p calculo.Periodo) ([]model.Venta, error)
	ListCreditos(ctx context.Context, p calculo.Periodo) ([]model.VentaCredito, error)
	ListAbonos(ctx context.Context, p calculo.Periodo) ([]model.Abono, error)
	ListGastos(ctx context.Context, p calculo.Periodo) ([]model.Gasto, error)
}

type periodoRepo struct{ db *gorm.DB }

func NewPeriodoRepository(db *gorm.DB) PeriodoRepository { return &periodoRepo{db: db} }

func (r *periodoRepo) ListVentas(ctx context.Context, p calculo.Periodo) ([]model.Venta, error) {
	return ventasEn(r.db.WithContext(ctx), p)
}

func (r *periodoRepo) ListCreditos(ctx context.Context, p calculo.Periodo) ([]model.VentaCredito, error) {
	return creditosEn(r.db.WithContext(ctx), p)
}

func (r *periodoRepo) ListAbonos(ctx context.Context, p calculo.Periodo) ([]model.Abono, error) {
	return abonosEn(r.db.WithContext(ctx), p)
}

func (r *periodoRepo) ListGastos(ctx context.Context, p calculo.Periodo) ([]model.Gasto, error) {
	return gastosEn(r.db.WithContext(ctx), p)
}

// enPeriodo scopes a query to fecha in [desde, hasta).
func enPeriodo(p calculo.Periodo) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("fecha >= ? AND fecha < ?", p.Desde.UTC(), p.Hasta.UTC())
	}
}

func sinArqueo(db *gorm.DB) *gorm.DB {
	return db.Where("arqueo_id IS NULL")
}

func ventasEn(db *gorm.DB, p calculo.Periodo) ([]model.Venta, error) {
	var ventas []model.Venta
	err := db.Scopes(enPeriodo(p)).Order("fecha ASC").Find(&ventas).Error
	return ventas, err
}

func creditosEn(db *gorm.DB, p calculo.Periodo) ([]model.VentaCredito, error) {
	var creditos []model.VentaCredito
	err := db.Scopes(enPeriodo(p), sinArqueo).Order("fecha ASC").Find(&creditos).Error
	return creditos, err
}

func abonosEn(db *gorm.DB, p calculo.Periodo) ([]model.Abono, error) {
	var abonos []model.Abono
	err := db.Scopes(enPeriodo(p), sinArqueo).Order("fecha ASC").Find(&abonos).Error
	return abonos, err
}

func gastosEn(db *gorm.DB, p calculo.Periodo) ([]model.Gasto, error) {
	var gastos []model.Gasto
	err := db.Scopes(enPeriodo(p)).Order("fecha ASC").Find(&gastos).Error
	return gastos, err
}
