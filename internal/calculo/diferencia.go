package calculo

import "github.com/shopspring/decimal"

// Etiquetas de diferencia.
const (
	Sobrante = "sobrante"
	Faltante = "faltante"
	Exacto   = "exacto"
)

// Diferencia returns contado - esperado.
func Diferencia(contado, esperado decimal.Decimal) decimal.Decimal {
	return contado.Sub(esperado)
}

// Etiqueta labels a variance: positive surplus, negative shortage.
func Etiqueta(diferencia decimal.Decimal) string {
	switch diferencia.Sign() {
	case 1:
		return Sobrante
	case -1:
		return Faltante
	default:
		return Exacto
	}
}

// Moneda formats an amount for display. Rounding happens only here.
func Moneda(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
