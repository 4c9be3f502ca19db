package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Gasto is an expense paid out of the drawer.
type Gasto struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Descripcion string          `gorm:"not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Fecha       time.Time       `gorm:"not null;index"`
}

func (Gasto) TableName() string { return "gastos" }

func (g *Gasto) BeforeCreate(_ *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
