package export

// pdf.go: arqueo receipt using go-pdf/fpdf.
// Thermal-receipt width (80mm) with:
//   - Business name header
//   - Arqueo id, operator and period
//   - One line per snapshot field, highlighted totals
//   - Surplus / shortage footer

import (
	"bytes"
	"fmt"
	"time"

	"arelyz/internal/calculo"
	"arelyz/internal/model"

	"github.com/go-pdf/fpdf"
)

// PDF renders the snapshot as a single-page receipt and returns its bytes.
func PDF(a *model.Arqueo, negocio string, loc *time.Location) ([]byte, error) {
	filas := Filas(a, loc)

	// Height grows with the number of lines; 80mm wide like the ticket printer.
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: float64(60 + 6*len(filas))},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(negocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Arqueo de caja", "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Lines ────────────────────────────────────────────────────────────────
	labelW := contentW * 0.58
	valueW := contentW - labelW
	for _, f := range filas {
		style := ""
		if f.Destacar {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 7)
		if f.Monto == nil && f.Cantidad == nil {
			// free text (ids, dates) takes the whole width
			pdf.CellFormat(contentW, 4, tr(f.Etiqueta+": "+f.Valor()), "", 1, "L", false, 0, "")
			continue
		}
		pdf.CellFormat(labelW, 5, tr(f.Etiqueta), "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 5, f.Valor(), "", 1, "R", false, 0, "")
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "I", 7)
	var footer string
	switch calculo.Etiqueta(a.Diferencia) {
	case calculo.Sobrante:
		footer = fmt.Sprintf("Sobrante de %s", calculo.Moneda(a.Diferencia))
	case calculo.Faltante:
		footer = fmt.Sprintf("Faltante de %s", calculo.Moneda(a.Diferencia.Abs()))
	default:
		footer = "Caja cuadrada"
	}
	pdf.CellFormat(contentW, 4, tr(footer), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
