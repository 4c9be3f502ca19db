package dto

import (
	"time"

	"arelyz/internal/calculo"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ConteoRequest struct {
	// EfectivoContado is the physically counted cash. Nil clears the figure.
	EfectivoContado *decimal.Decimal `json:"efectivo_contado"`
}

type TotalesQuery struct {
	Desde string `form:"desde" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Hasta string `form:"hasta" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ResultadoCierre is what the atomic close returns. On failure only
// Success=false and Error are meaningful.
type ResultadoCierre struct {
	Success    bool            `json:"success"`
	Error      string          `json:"error,omitempty"`
	ArqueoID   string          `json:"arqueo_id,omitempty"`
	Diferencia decimal.Decimal `json:"diferencia"`
	Etiqueta   string          `json:"etiqueta,omitempty"` // sobrante | faltante | exacto
	Resumen    calculo.Totales `json:"resumen"`
	// DiscrepanciaEstimado is true when the provisional efectivo_neto shown
	// to the operator differs from the one computed at close.
	DiscrepanciaEstimado bool `json:"discrepancia_estimado"`
}

type BorradorResponse struct {
	ID              string           `json:"id"`
	Estado          string           `json:"estado"`
	Operador        string           `json:"operador"`
	Periodo         calculo.Periodo  `json:"periodo"`
	Totales         calculo.Totales  `json:"totales"`
	EfectivoContado *decimal.Decimal `json:"efectivo_contado"`
	Incierto        bool             `json:"incierto"`
	ArqueoID        *string          `json:"arqueo_id,omitempty"`
	ActualizadoEn   time.Time        `json:"actualizado_en"`
}

// ConfirmacionResponse is the summary the operator must accept before the close.
type ConfirmacionResponse struct {
	BorradorID      string          `json:"borrador_id"`
	EfectivoNeto    decimal.Decimal `json:"efectivo_neto"`
	EfectivoContado decimal.Decimal `json:"efectivo_contado"`
	Diferencia      decimal.Decimal `json:"diferencia"`
	Etiqueta        string          `json:"etiqueta"`
	Totales         calculo.Totales `json:"totales"`
	Lineas          []string        `json:"lineas"`
}

type ArqueoResponse struct {
	ID                          string          `json:"id"`
	TotalVentas                 decimal.Decimal `json:"total_ventas"`
	TotalVentasEfectivo         decimal.Decimal `json:"total_ventas_efectivo"`
	TotalCreditos               decimal.Decimal `json:"total_creditos"`
	TotalAbonosEfectivo         decimal.Decimal `json:"total_abonos_efectivo"`
	TotalAbonosTarjeta          decimal.Decimal `json:"total_abonos_tarjeta"`
	TotalAbonosTransferencia    decimal.Decimal `json:"total_abonos_transferencia"`
	TotalEntradaEfectivo        decimal.Decimal `json:"total_entrada_efectivo"`
	TotalGastos                 decimal.Decimal `json:"total_gastos"`
	EfectivoNeto                decimal.Decimal `json:"efectivo_neto"`
	EfectivoContado             decimal.Decimal `json:"efectivo_contado"`
	Diferencia                  decimal.Decimal `json:"diferencia"`
	Etiqueta                    string          `json:"etiqueta"`
	CantidadVentas              int             `json:"cantidad_ventas"`
	CantidadCreditos            int             `json:"cantidad_creditos"`
	CantidadAbonosEfectivo      int             `json:"cantidad_abonos_efectivo"`
	CantidadAbonosTarjeta       int             `json:"cantidad_abonos_tarjeta"`
	CantidadAbonosTransferencia int             `json:"cantidad_abonos_transferencia"`
	CantidadGastos              int             `json:"cantidad_gastos"`
	PeriodoInicio               time.Time       `json:"periodo_inicio"`
	PeriodoFin                  time.Time       `json:"periodo_fin"`
	Operador                    string          `json:"operador"`
	CreatedAt                   time.Time       `json:"created_at"`
}

type ResumenHistorialResponse struct {
	Cantidad          int             `json:"cantidad"`
	Exactos           int             `json:"exactos"`
	ConSobrante       int             `json:"con_sobrante"`
	ConFaltante       int             `json:"con_faltante"`
	TotalSobrante     decimal.Decimal `json:"total_sobrante"`
	TotalFaltante     decimal.Decimal `json:"total_faltante"`
	TotalEfectivoNeto decimal.Decimal `json:"total_efectivo_neto"`
	TotalGastos       decimal.Decimal `json:"total_gastos"`
}

type ReporteMensualResponse struct {
	Anio                     int              `json:"anio"`
	Mes                      int              `json:"mes"`
	Cantidad                 int              `json:"cantidad"`
	TotalVentas              decimal.Decimal  `json:"total_ventas"`
	TotalCreditos            decimal.Decimal  `json:"total_creditos"`
	TotalAbonosEfectivo      decimal.Decimal  `json:"total_abonos_efectivo"`
	TotalAbonosTarjeta       decimal.Decimal  `json:"total_abonos_tarjeta"`
	TotalAbonosTransferencia decimal.Decimal  `json:"total_abonos_transferencia"`
	TotalGastos              decimal.Decimal  `json:"total_gastos"`
	TotalEfectivoNeto        decimal.Decimal  `json:"total_efectivo_neto"`
	TotalDiferencia          decimal.Decimal  `json:"total_diferencia"`
	Arqueos                  []ArqueoResponse `json:"arqueos"`
}
