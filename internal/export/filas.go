// Package export renders one arqueo snapshot as a spreadsheet or a PDF
// receipt. It only formats stored fields; nothing is recomputed.
package export

import (
	"fmt"
	"strings"
	"time"

	"arelyz/internal/calculo"
	"arelyz/internal/model"

	"github.com/shopspring/decimal"
)

// Fila is one label/value line of the receipt. Exactly one of Monto,
// Cantidad or Texto is meaningful.
type Fila struct {
	Etiqueta string
	Monto    *decimal.Decimal
	Cantidad *int
	Texto    string
	Destacar bool
}

func (f Fila) Valor() string {
	switch {
	case f.Monto != nil:
		return calculo.Moneda(*f.Monto)
	case f.Cantidad != nil:
		return fmt.Sprintf("%d", *f.Cantidad)
	default:
		return f.Texto
	}
}

func monto(etiqueta string, d decimal.Decimal) Fila { return Fila{Etiqueta: etiqueta, Monto: &d} }
func cantidad(etiqueta string, n int) Fila         { return Fila{Etiqueta: etiqueta, Cantidad: &n} }
func texto(etiqueta, v string) Fila                 { return Fila{Etiqueta: etiqueta, Texto: v} }

// Filas lists the snapshot fields in receipt order. Timestamps are shown in loc.
func Filas(a *model.Arqueo, loc *time.Location) []Fila {
	if loc == nil {
		loc = time.Local
	}
	const layout = "02/01/2006 15:04"
	etiqueta := calculo.Etiqueta(a.Diferencia)

	neto := monto("Efectivo neto en caja", a.EfectivoNeto)
	neto.Destacar = true
	diff := monto("Diferencia ("+etiqueta+")", a.Diferencia)
	diff.Destacar = true

	return []Fila{
		texto("Arqueo", a.ID.String()),
		texto("Operador", a.Operador),
		texto("Fecha", a.CreatedAt.In(loc).Format(layout)),
		texto("Periodo", a.PeriodoInicio.In(loc).Format(layout)+" - "+a.PeriodoFin.In(loc).Format(layout)),
		monto("Total ventas", a.TotalVentas),
		monto("Ventas en efectivo", a.TotalVentasEfectivo),
		cantidad("Cantidad de ventas", a.CantidadVentas),
		monto("Total ventas a crédito", a.TotalCreditos),
		cantidad("Cantidad de créditos", a.CantidadCreditos),
		monto("Abonos en efectivo", a.TotalAbonosEfectivo),
		cantidad("Cantidad abonos en efectivo", a.CantidadAbonosEfectivo),
		monto("Abonos con tarjeta", a.TotalAbonosTarjeta),
		cantidad("Cantidad abonos con tarjeta", a.CantidadAbonosTarjeta),
		monto("Abonos por transferencia", a.TotalAbonosTransferencia),
		cantidad("Cantidad abonos por transferencia", a.CantidadAbonosTransferencia),
		monto("Entrada de efectivo", a.TotalEntradaEfectivo),
		monto("Total gastos", a.TotalGastos),
		cantidad("Cantidad de gastos", a.CantidadGastos),
		neto,
		monto("Efectivo contado", a.EfectivoContado),
		diff,
	}
}

// NombreArchivo is the base name used for both formats.
func NombreArchivo(a *model.Arqueo, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	fecha := a.CreatedAt.In(loc).Format("2006-01-02_1504")
	return "arqueo_" + fecha + "_" + strings.SplitN(a.ID.String(), "-", 2)[0]
}
