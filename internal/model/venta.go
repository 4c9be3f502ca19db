package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Metodos de pago. "mixto" means the Monto* breakdown carries the split.
const (
	MetodoEfectivo      = "efectivo"
	MetodoTarjeta       = "tarjeta"
	MetodoTransferencia = "transferencia"
	MetodoMixto         = "mixto"
)

// Venta is a cash-register sale. Deleted by the arqueo once archived.
type Venta struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductoID         uuid.UUID       `gorm:"type:uuid;index;not null"`
	Producto           string          `gorm:"not null"`
	Cantidad           int             `gorm:"not null"`
	PrecioUnitario     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago         string          `gorm:"type:varchar(20);not null"`
	MontoEfectivo      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoTarjeta       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoTransferencia decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Fecha              time.Time       `gorm:"not null;index"`
}

func (Venta) TableName() string { return "ventas" }

func (v *Venta) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// Desglose returns the cash, card and transfer portions of the sale.
func (v Venta) Desglose() (efectivo, tarjeta, transferencia decimal.Decimal) {
	return desglose(v.MetodoPago, v.Total, v.MontoEfectivo, v.MontoTarjeta, v.MontoTransferencia)
}

// desglose applies the per-method breakdown when present. Without a
// breakdown the whole amount belongs to the declared method.
func desglose(metodo string, total, efectivo, tarjeta, transferencia decimal.Decimal) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	if !efectivo.IsZero() || !tarjeta.IsZero() || !transferencia.IsZero() {
		return efectivo, tarjeta, transferencia
	}
	switch metodo {
	case MetodoEfectivo:
		return total, decimal.Zero, decimal.Zero
	case MetodoTarjeta:
		return decimal.Zero, total, decimal.Zero
	case MetodoTransferencia:
		return decimal.Zero, decimal.Zero, total
	default:
		return decimal.Zero, decimal.Zero, decimal.Zero
	}
}
