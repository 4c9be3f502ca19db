package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VentaCredito is a store-credit sale. SaldoPendiente is only ever reduced
// by abonos; reconciliation archives the row and stamps ArqueoID but never
// deletes it or touches the balance.
type VentaCredito struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Cliente        string          `gorm:"not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Producto       string          `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaldoPendiente decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FechaInicio    time.Time       `gorm:"not null"`
	FechaFin       *time.Time
	Fecha          time.Time  `gorm:"not null;index"`
	ArqueoID       *uuid.UUID `gorm:"type:uuid;index"`

	Abonos []Abono `gorm:"foreignKey:CreditoID"`
}

func (VentaCredito) TableName() string { return "ventas_credito" }

func (c *VentaCredito) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Abono is an installment payment against a VentaCredito.
// Banco is only set for tarjeta / transferencia payments.
type Abono struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CreditoID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	Monto              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago         string          `gorm:"type:varchar(20);not null"`
	MontoEfectivo      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoTarjeta       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoTransferencia decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Banco              *string         `gorm:"type:varchar(60)"`
	Fecha              time.Time       `gorm:"not null;index"`
	ArqueoID           *uuid.UUID      `gorm:"type:uuid;index"`
}

func (Abono) TableName() string { return "abonos" }

func (a *Abono) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Desglose returns the cash, card and transfer portions of the payment.
func (a Abono) Desglose() (efectivo, tarjeta, transferencia decimal.Decimal) {
	return desglose(a.MetodoPago, a.Monto, a.MontoEfectivo, a.MontoTarjeta, a.MontoTransferencia)
}
