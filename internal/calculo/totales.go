// Package calculo holds the pure arithmetic of the arqueo: reducing the
// period's records into totals, the variance and its label, and the
// period bounds. Nothing here touches the database.
package calculo

import (
	"arelyz/internal/model"

	"github.com/shopspring/decimal"
)

// Totales is the reduction of one period. Values are never pre-rounded.
type Totales struct {
	TotalVentas              decimal.Decimal `json:"total_ventas"`
	TotalVentasEfectivo      decimal.Decimal `json:"total_ventas_efectivo"`
	TotalVentasTarjeta       decimal.Decimal `json:"total_ventas_tarjeta"`
	TotalVentasTransferencia decimal.Decimal `json:"total_ventas_transferencia"`
	TotalCreditos            decimal.Decimal `json:"total_creditos"`
	TotalAbonosEfectivo      decimal.Decimal `json:"total_abonos_efectivo"`
	TotalAbonosTarjeta       decimal.Decimal `json:"total_abonos_tarjeta"`
	TotalAbonosTransferencia decimal.Decimal `json:"total_abonos_transferencia"`
	TotalGastos              decimal.Decimal `json:"total_gastos"`
	// TotalEntradaEfectivo is the raw cash in: cash sales plus cash abonos.
	TotalEntradaEfectivo decimal.Decimal `json:"total_entrada_efectivo"`
	EfectivoNeto         decimal.Decimal `json:"efectivo_neto"`

	CantidadVentas              int `json:"cantidad_ventas"`
	CantidadCreditos            int `json:"cantidad_creditos"`
	CantidadAbonosEfectivo      int `json:"cantidad_abonos_efectivo"`
	CantidadAbonosTarjeta       int `json:"cantidad_abonos_tarjeta"`
	CantidadAbonosTransferencia int `json:"cantidad_abonos_transferencia"`
	CantidadGastos              int `json:"cantidad_gastos"`
}

// Totalizar reduces the four collections of a period. The result does not
// depend on the order of the input slices.
func Totalizar(ventas []model.Venta, creditos []model.VentaCredito, abonos []model.Abono, gastos []model.Gasto) Totales {
	t := Totales{
		TotalVentas:              decimal.Zero,
		TotalVentasEfectivo:      decimal.Zero,
		TotalVentasTarjeta:       decimal.Zero,
		TotalVentasTransferencia: decimal.Zero,
		TotalCreditos:            decimal.Zero,
		TotalAbonosEfectivo:      decimal.Zero,
		TotalAbonosTarjeta:       decimal.Zero,
		TotalAbonosTransferencia: decimal.Zero,
		TotalGastos:              decimal.Zero,
	}

	for _, v := range ventas {
		ef, tj, tr := v.Desglose()
		t.TotalVentas = t.TotalVentas.Add(v.Total)
		t.TotalVentasEfectivo = t.TotalVentasEfectivo.Add(ef)
		t.TotalVentasTarjeta = t.TotalVentasTarjeta.Add(tj)
		t.TotalVentasTransferencia = t.TotalVentasTransferencia.Add(tr)
	}
	t.CantidadVentas = len(ventas)

	for _, c := range creditos {
		t.TotalCreditos = t.TotalCreditos.Add(c.Total)
	}
	t.CantidadCreditos = len(creditos)

	// An abono is counted under every method it carries a portion of.
	for _, a := range abonos {
		ef, tj, tr := a.Desglose()
		if !ef.IsZero() {
			t.TotalAbonosEfectivo = t.TotalAbonosEfectivo.Add(ef)
			t.CantidadAbonosEfectivo++
		}
		if !tj.IsZero() {
			t.TotalAbonosTarjeta = t.TotalAbonosTarjeta.Add(tj)
			t.CantidadAbonosTarjeta++
		}
		if !tr.IsZero() {
			t.TotalAbonosTransferencia = t.TotalAbonosTransferencia.Add(tr)
			t.CantidadAbonosTransferencia++
		}
	}

	for _, g := range gastos {
		t.TotalGastos = t.TotalGastos.Add(g.Monto)
	}
	t.CantidadGastos = len(gastos)

	t.TotalEntradaEfectivo = t.TotalVentasEfectivo.Add(t.TotalAbonosEfectivo)
	t.EfectivoNeto = t.TotalEntradaEfectivo.Sub(t.TotalGastos)
	return t
}
