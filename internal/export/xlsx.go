package export

import (
	"fmt"
	"time"

	"arelyz/internal/model"

	"github.com/xuri/excelize/v2"
)

const hoja = "Arqueo"

// XLSX renders the snapshot as a two-column sheet (concepto, valor).
// Amounts and counts are written as numbers so the sheet can be summed.
func XLSX(a *model.Arqueo, negocio string, loc *time.Location) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", hoja); err != nil {
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("xlsx: style: %w", err)
	}

	if err := f.SetCellValue(hoja, "A1", negocio+" - Arqueo de caja"); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(hoja, "A1", "A1", bold); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(hoja, "A3", &[]interface{}{"Concepto", "Valor"}); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(hoja, "A3", "B3", bold); err != nil {
		return nil, err
	}

	row := 4
	for _, fila := range Filas(a, loc) {
		label, _ := excelize.CoordinatesToCellName(1, row)
		value, _ := excelize.CoordinatesToCellName(2, row)

		var v interface{}
		switch {
		case fila.Monto != nil:
			v = fila.Monto.InexactFloat64()
		case fila.Cantidad != nil:
			v = *fila.Cantidad
		default:
			v = fila.Texto
		}
		if err := f.SetSheetRow(hoja, label, &[]interface{}{fila.Etiqueta, v}); err != nil {
			return nil, fmt.Errorf("xlsx: row %d: %w", row, err)
		}
		if fila.Monto != nil {
			if err := f.SetCellStyle(hoja, value, value, money); err != nil {
				return nil, err
			}
		}
		if fila.Destacar {
			if err := f.SetCellStyle(hoja, label, label, bold); err != nil {
				return nil, err
			}
		}
		row++
	}

	if err := f.SetColWidth(hoja, "A", "A", 36); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(hoja, "B", "B", 40); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}
