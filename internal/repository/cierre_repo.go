package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"arelyz/internal/calculo"
	"arelyz/internal/dto"
	"arelyz/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// arqueoLockKey serializes concurrent closes on PostgreSQL (pg_advisory_xact_lock).
const arqueoLockKey int64 = 0x41524551 // "AREQ"

// ErrRetencion is returned when the post-close state breaks the retention
// rule. The transaction is rolled back.
var ErrRetencion = errors.New("la regla de retención del arqueo no se cumple")

// CierreParams are the inputs of an atomic close.
type CierreParams struct {
	Periodo         calculo.Periodo
	EfectivoContado decimal.Decimal
	Operador        string
	// Ahora stamps the Arqueo record; zero means time.Now().
	Ahora time.Time
}

// CierreRepository performs the till close as a single transaction:
// archive every record of the period, delete ventas and gastos, stamp
// credits and abonos, and persist the Arqueo snapshot.
type CierreRepository interface {
	Cerrar(ctx context.Context, p CierreParams) (*dto.ResultadoCierre, error)
}

type cierreRepo struct{ db *gorm.DB }

func NewCierreRepository(db *gorm.DB) CierreRepository { return &cierreRepo{db: db} }

func (r *cierreRepo) Cerrar(ctx context.Context, p CierreParams) (*dto.ResultadoCierre, error) {
	if p.Ahora.IsZero() {
		p.Ahora = time.Now()
	}

	var arqueo model.Arqueo
	var totales calculo.Totales

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", arqueoLockKey).Error; err != nil {
				return fmt.Errorf("lock arqueo: %w", err)
			}
		}

		ventas, err := ventasEn(tx, p.Periodo)
		if err != nil {
			return fmt.Errorf("leer ventas: %w", err)
		}
		creditos, err := creditosEn(tx, p.Periodo)
		if err != nil {
			return fmt.Errorf("leer creditos: %w", err)
		}
		abonos, err := abonosEn(tx, p.Periodo)
		if err != nil {
			return fmt.Errorf("leer abonos: %w", err)
		}
		gastos, err := gastosEn(tx, p.Periodo)
		if err != nil {
			return fmt.Errorf("leer gastos: %w", err)
		}

		totales = calculo.Totalizar(ventas, creditos, abonos, gastos)
		arqueo = snapshot(totales, p)
		if err := tx.Create(&arqueo).Error; err != nil {
			return fmt.Errorf("crear arqueo: %w", err)
		}

		facturados := archivar(arqueo.ID, ventas, creditos, abonos, gastos)
		if len(facturados) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				CreateInBatches(facturados, 200).Error; err != nil {
				return fmt.Errorf("archivar: %w", err)
			}
		}

		ventaIDs := idsVentas(ventas)
		gastoIDs := idsGastos(gastos)
		creditoIDs := idsCreditos(creditos)
		abonoIDs := idsAbonos(abonos)

		if len(ventaIDs) > 0 {
			if err := tx.Delete(&model.Venta{}, "id IN ?", ventaIDs).Error; err != nil {
				return fmt.Errorf("eliminar ventas: %w", err)
			}
		}
		if len(gastoIDs) > 0 {
			if err := tx.Delete(&model.Gasto{}, "id IN ?", gastoIDs).Error; err != nil {
				return fmt.Errorf("eliminar gastos: %w", err)
			}
		}
		// Only arqueo_id changes; saldo_pendiente belongs to the abonos flow.
		if len(creditoIDs) > 0 {
			if err := tx.Model(&model.VentaCredito{}).Where("id IN ?", creditoIDs).
				Update("arqueo_id", arqueo.ID).Error; err != nil {
				return fmt.Errorf("marcar creditos: %w", err)
			}
		}
		if len(abonoIDs) > 0 {
			if err := tx.Model(&model.Abono{}).Where("id IN ?", abonoIDs).
				Update("arqueo_id", arqueo.ID).Error; err != nil {
				return fmt.Errorf("marcar abonos: %w", err)
			}
		}

		return verificarRetencion(tx, p.Periodo, retenidos{
			creditos: creditoIDs,
			abonos:   abonoIDs,
			todos:    concatIDs(ventaIDs, gastoIDs, creditoIDs, abonoIDs),
		})
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			log.Error().Str("pg_code", pgErr.Code).Str("constraint", pgErr.ConstraintName).
				Err(err).Msg("cierre: transaction rolled back")
		} else {
			log.Error().Err(err).Msg("cierre: transaction rolled back")
		}
		return nil, err
	}

	log.Info().
		Str("arqueo_id", arqueo.ID.String()).
		Str("operador", arqueo.Operador).
		Str("efectivo_neto", arqueo.EfectivoNeto.StringFixed(2)).
		Str("diferencia", arqueo.Diferencia.StringFixed(2)).
		Int("ventas", totales.CantidadVentas).
		Int("gastos", totales.CantidadGastos).
		Msg("cierre: arqueo committed")

	return &dto.ResultadoCierre{
		Success:    true,
		ArqueoID:   arqueo.ID.String(),
		Diferencia: arqueo.Diferencia,
		Etiqueta:   calculo.Etiqueta(arqueo.Diferencia),
		Resumen:    totales,
	}, nil
}

func snapshot(t calculo.Totales, p CierreParams) model.Arqueo {
	return model.Arqueo{
		TotalVentas:                 t.TotalVentas,
		TotalVentasEfectivo:         t.TotalVentasEfectivo,
		TotalCreditos:               t.TotalCreditos,
		TotalAbonosEfectivo:         t.TotalAbonosEfectivo,
		TotalAbonosTarjeta:          t.TotalAbonosTarjeta,
		TotalAbonosTransferencia:    t.TotalAbonosTransferencia,
		TotalEntradaEfectivo:        t.TotalEntradaEfectivo,
		TotalGastos:                 t.TotalGastos,
		EfectivoNeto:                t.EfectivoNeto,
		EfectivoContado:             p.EfectivoContado,
		Diferencia:                  calculo.Diferencia(p.EfectivoContado, t.EfectivoNeto),
		CantidadVentas:              t.CantidadVentas,
		CantidadCreditos:            t.CantidadCreditos,
		CantidadAbonosEfectivo:      t.CantidadAbonosEfectivo,
		CantidadAbonosTarjeta:       t.CantidadAbonosTarjeta,
		CantidadAbonosTransferencia: t.CantidadAbonosTransferencia,
		CantidadGastos:              t.CantidadGastos,
		PeriodoInicio:               p.Periodo.Desde.UTC(),
		PeriodoFin:                  p.Periodo.Hasta.UTC(),
		Operador:                    p.Operador,
		CreatedAt:                   p.Ahora.UTC(),
	}
}

func archivar(arqueoID uuid.UUID, ventas []model.Venta, creditos []model.VentaCredito, abonos []model.Abono, gastos []model.Gasto) []model.Facturado {
	rows := make([]model.Facturado, 0, len(ventas)+len(creditos)+len(abonos)+len(gastos))
	for _, v := range ventas {
		metodo := v.MetodoPago
		rows = append(rows, model.Facturado{
			ArqueoID: arqueoID, Origen: model.OrigenVenta, OrigenID: v.ID,
			Descripcion: v.Producto, Cantidad: v.Cantidad, MetodoPago: &metodo,
			Monto: v.Total, FechaOrigen: v.Fecha,
		})
	}
	for _, c := range creditos {
		cliente := c.Cliente
		rows = append(rows, model.Facturado{
			ArqueoID: arqueoID, Origen: model.OrigenCredito, OrigenID: c.ID,
			Descripcion: c.Producto, Cliente: &cliente, Cantidad: c.Cantidad,
			Monto: c.Total, FechaOrigen: c.Fecha,
		})
	}
	for _, a := range abonos {
		metodo := a.MetodoPago
		rows = append(rows, model.Facturado{
			ArqueoID: arqueoID, Origen: model.OrigenAbono, OrigenID: a.ID,
			Descripcion: "Abono a crédito " + a.CreditoID.String(), MetodoPago: &metodo,
			Monto: a.Monto, Banco: a.Banco, FechaOrigen: a.Fecha,
		})
	}
	for _, g := range gastos {
		rows = append(rows, model.Facturado{
			ArqueoID: arqueoID, Origen: model.OrigenGasto, OrigenID: g.ID,
			Descripcion: g.Descripcion, Monto: g.Monto, FechaOrigen: g.Fecha,
		})
	}
	return rows
}

type retenidos struct {
	creditos []uuid.UUID
	abonos   []uuid.UUID
	todos    []uuid.UUID
}

// verificarRetencion checks, inside the transaction, that no venta or gasto
// of the period survives, that every credit and abono still exists, and that
// every processed row has an archived copy.
func verificarRetencion(tx *gorm.DB, p calculo.Periodo, r retenidos) error {
	var n int64
	if err := tx.Model(&model.Venta{}).Scopes(enPeriodo(p)).Count(&n).Error; err != nil {
		return err
	}
	if n != 0 {
		return fmt.Errorf("%w: %d ventas siguen en el periodo", ErrRetencion, n)
	}
	if err := tx.Model(&model.Gasto{}).Scopes(enPeriodo(p)).Count(&n).Error; err != nil {
		return err
	}
	if n != 0 {
		return fmt.Errorf("%w: %d gastos siguen en el periodo", ErrRetencion, n)
	}
	if err := contarExactos(tx, &model.VentaCredito{}, r.creditos, "creditos"); err != nil {
		return err
	}
	if err := contarExactos(tx, &model.Abono{}, r.abonos, "abonos"); err != nil {
		return err
	}
	return contarFacturados(tx, r.todos)
}

func contarExactos(tx *gorm.DB, m interface{}, ids []uuid.UUID, nombre string) error {
	if len(ids) == 0 {
		return nil
	}
	var n int64
	if err := tx.Model(m).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return fmt.Errorf("%w: %d de %d %s retenidos", ErrRetencion, n, len(ids), nombre)
	}
	return nil
}

func contarFacturados(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	var n int64
	if err := tx.Model(&model.Facturado{}).Where("origen_id IN ?", ids).Count(&n).Error; err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return fmt.Errorf("%w: %d de %d registros archivados", ErrRetencion, n, len(ids))
	}
	return nil
}

func idsVentas(rows []model.Venta) []uuid.UUID {
	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func idsCreditos(rows []model.VentaCredito) []uuid.UUID {
	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func idsAbonos(rows []model.Abono) []uuid.UUID {
	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func idsGastos(rows []model.Gasto) []uuid.UUID {
	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func concatIDs(groups ...[]uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
