package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Arqueo is the immutable snapshot written by a confirmed till reconciliation.
// EfectivoNeto = TotalVentasEfectivo + TotalAbonosEfectivo - TotalGastos.
// Diferencia = EfectivoContado - EfectivoNeto (positive: sobrante).
type Arqueo struct {
	ID                          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TotalVentas                 decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalVentasEfectivo         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalCreditos               decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAbonosEfectivo         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAbonosTarjeta          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAbonosTransferencia    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalEntradaEfectivo        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalGastos                 decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	EfectivoNeto                decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	EfectivoContado             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Diferencia                  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CantidadVentas              int             `gorm:"not null"`
	CantidadCreditos            int             `gorm:"not null"`
	CantidadAbonosEfectivo      int             `gorm:"not null"`
	CantidadAbonosTarjeta       int             `gorm:"not null"`
	CantidadAbonosTransferencia int             `gorm:"not null"`
	CantidadGastos              int             `gorm:"not null"`
	PeriodoInicio               time.Time       `gorm:"not null"`
	PeriodoFin                  time.Time       `gorm:"not null"`
	Operador                    string          `gorm:"not null"`
	CreatedAt                   time.Time       `gorm:"index"`
}

func (Arqueo) TableName() string { return "arqueos" }

func (a *Arqueo) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Origenes of an archived row.
const (
	OrigenVenta   = "venta"
	OrigenCredito = "credito"
	OrigenAbono   = "abono"
	OrigenGasto   = "gasto"
)

// Facturado is the permanent denormalized copy of a settled record.
// (Origen, OrigenID) is unique so a row is never archived twice.
type Facturado struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ArqueoID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Origen      string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_facturado_origen,priority:1"`
	OrigenID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_facturado_origen,priority:2"`
	Descripcion string          `gorm:"not null"`
	Cliente     *string
	Cantidad    int
	MetodoPago  *string         `gorm:"type:varchar(20)"`
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Banco       *string         `gorm:"type:varchar(60)"`
	FechaOrigen time.Time       `gorm:"not null"`
	CreatedAt   time.Time
}

func (Facturado) TableName() string { return "facturados" }

func (f *Facturado) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
