package repository

import (
	"context"

	"arelyz/internal/calculo"
	"arelyz/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ArqueoRepository is read-only: arqueos are only ever written by
// CierreRepository.Cerrar and never updated or deleted.
type ArqueoRepository interface {
	ListRecientes(ctx context.Context, limit int) ([]model.Arqueo, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Arqueo, error)
	ListPorPeriodo(ctx context.Context, p calculo.Periodo) ([]model.Arqueo, error)
	ListFacturados(ctx context.Context, arqueoID uuid.UUID) ([]model.Facturado, error)
}

type arqueoRepo struct{ db *gorm.DB }

func NewArqueoRepository(db *gorm.DB) ArqueoRepository { return &arqueoRepo{db: db} }

func (r *arqueoRepo) ListRecientes(ctx context.Context, limit int) ([]model.Arqueo, error) {
	var arqueos []model.Arqueo
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&arqueos).Error
	return arqueos, err
}

func (r *arqueoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Arqueo, error) {
	var a model.Arqueo
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *arqueoRepo) ListPorPeriodo(ctx context.Context, p calculo.Periodo) ([]model.Arqueo, error) {
	var arqueos []model.Arqueo
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", p.Desde.UTC(), p.Hasta.UTC()).
		Order("created_at ASC").
		Find(&arqueos).Error
	return arqueos, err
}

func (r *arqueoRepo) ListFacturados(ctx context.Context, arqueoID uuid.UUID) ([]model.Facturado, error) {
	var rows []model.Facturado
	err := r.db.WithContext(ctx).
		Where("arqueo_id = ?", arqueoID).
		Order("origen ASC, fecha_origen ASC").
		Find(&rows).Error
	return rows, err
}
