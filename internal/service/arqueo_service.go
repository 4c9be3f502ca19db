package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"arelyz/internal/calculo"
	"arelyz/internal/dto"
	"arelyz/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Estados of an arqueo draft. Idle is the absence of a draft.
const (
	EstadoCalculando      = "calculando"
	EstadoEsperandoConteo = "esperando_conteo"
	EstadoConfirmando     = "confirmando"
	EstadoCerrado         = "cerrado"
)

// ArqueoService drives one till reconciliation from the first computation
// to the atomic close.
type ArqueoService interface {
	Iniciar(ctx context.Context, operador string) (*dto.BorradorResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.BorradorResponse, error)
	ActualizarConteo(ctx context.Context, id uuid.UUID, contado *decimal.Decimal) (*dto.BorradorResponse, error)
	Confirmar(ctx context.Context, id uuid.UUID) (*dto.ConfirmacionResponse, error)
	Aceptar(ctx context.Context, id uuid.UUID, operador string) (*dto.ResultadoCierre, error)
	Cancelar(ctx context.Context, id uuid.UUID) error
}

// ExportEnqueuer schedules the receipt files of a closed arqueo.
type ExportEnqueuer interface {
	EnqueueExportArqueo(ctx context.Context, arqueoID uuid.UUID) error
}

// ArqueoOptions tunes the engine. Zero values fall back to defaults.
type ArqueoOptions struct {
	CommitTimeout time.Duration
	Now           func() time.Time
}

type arqueoService struct {
	agregador     AgregadorService
	cierre        repository.CierreRepository
	borradores    repository.BorradorStore
	exports       ExportEnqueuer
	commitTimeout time.Duration
	now           func() time.Time
}

func NewArqueoService(
	agregador AgregadorService,
	cierre repository.CierreRepository,
	borradores repository.BorradorStore,
	exports ExportEnqueuer,
	opts ArqueoOptions,
) ArqueoService {
	if opts.CommitTimeout <= 0 {
		opts.CommitTimeout = 20 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &arqueoService{
		agregador:     agregador,
		cierre:        cierre,
		borradores:    borradores,
		exports:       exports,
		commitTimeout: opts.CommitTimeout,
		now:           opts.Now,
	}
}

// ── Iniciar ───────────────────────────────────────────────────────────────────
// idle → calculando → esperando_conteo, or back to idle on failure.

func (s *arqueoService) Iniciar(ctx context.Context, operador string) (*dto.BorradorResponse, error) {
	if operador == "" {
		return nil, ErrOperadorRequerido
	}
	now := s.now()
	b := &repository.Borrador{
		ID:            uuid.New(),
		Estado:        EstadoCalculando,
		Operador:      operador,
		Periodo:       s.agregador.Turno(now),
		CreadoEn:      now,
		ActualizadoEn: now,
	}
	if err := s.borradores.Save(ctx, b); err != nil {
		return nil, err
	}

	totales, err := s.agregador.Agregar(ctx, b.Periodo)
	if err != nil {
		if delErr := s.borradores.Delete(context.WithoutCancel(ctx), b.ID); delErr != nil {
			log.Warn().Err(delErr).Str("borrador_id", b.ID.String()).Msg("arqueo: could not drop failed draft")
		}
		return nil, err
	}

	contado := totales.EfectivoNeto
	b.Totales = *totales
	b.EfectivoContado = &contado
	b.Estado = EstadoEsperandoConteo
	b.ActualizadoEn = s.now()
	if err := s.borradores.Save(ctx, b); err != nil {
		return nil, err
	}
	return borradorToResponse(b), nil
}

func (s *arqueoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.BorradorResponse, error) {
	b, err := s.cargar(ctx, id)
	if err != nil {
		return nil, err
	}
	return borradorToResponse(b), nil
}

// ── ActualizarConteo ─────────────────────────────────────────────────────────

func (s *arqueoService) ActualizarConteo(ctx context.Context, id uuid.UUID, contado *decimal.Decimal) (*dto.BorradorResponse, error) {
	b, err := s.cargar(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Estado != EstadoEsperandoConteo {
		return nil, fmt.Errorf("%w: %s", ErrEstadoInvalido, b.Estado)
	}
	if contado != nil && contado.IsNegative() {
		return nil, ErrConteoInvalido
	}
	b.EfectivoContado = contado
	b.ActualizadoEn = s.now()
	if err := s.borradores.Save(ctx, b); err != nil {
		return nil, err
	}
	return borradorToResponse(b), nil
}

// ── Confirmar ────────────────────────────────────────────────────────────────
// esperando_conteo → confirmando. No row-store call is made here.

func (s *arqueoService) Confirmar(ctx context.Context, id uuid.UUID) (*dto.ConfirmacionResponse, error) {
	b, err := s.cargar(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Estado != EstadoEsperandoConteo {
		return nil, fmt.Errorf("%w: %s", ErrEstadoInvalido, b.Estado)
	}
	if b.EfectivoContado == nil || b.EfectivoContado.IsNegative() {
		return nil, ErrConteoInvalido
	}

	b.Estado = EstadoConfirmando
	b.UltimoError = ""
	b.ActualizadoEn = s.now()
	if err := s.borradores.Save(ctx, b); err != nil {
		return nil, err
	}
	return confirmacion(b), nil
}

// ── Aceptar ──────────────────────────────────────────────────────────────────
// confirmando → cerrado. The close is issued exactly once and is not retried;
// once sent it is detached from the caller's cancellation.

func (s *arqueoService) Aceptar(ctx context.Context, id uuid.UUID, operador string) (*dto.ResultadoCierre, error) {
	detached := context.WithoutCancel(ctx)

	// Claim first, then read: a concurrent accept either fails the claim or
	// sees the draft already closed.
	ok, err := s.borradores.Reservar(ctx, id, s.commitTimeout+5*time.Second)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: cierre en curso", ErrEstadoInvalido)
	}
	defer func() {
		if err := s.borradores.Liberar(detached, id); err != nil {
			log.Warn().Err(err).Str("borrador_id", id.String()).Msg("arqueo: draft claim not released")
		}
	}()

	b, err := s.cargar(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Incierto {
		return nil, ErrResultadoDesconocido
	}
	if b.Estado != EstadoConfirmando {
		return nil, fmt.Errorf("%w: %s", ErrEstadoInvalido, b.Estado)
	}
	if operador == "" {
		operador = b.Operador
	}

	commitCtx, cancel := context.WithTimeout(detached, s.commitTimeout)
	defer cancel()

	res, err := s.cierre.Cerrar(commitCtx, repository.CierreParams{
		Periodo:         b.Periodo,
		EfectivoContado: *b.EfectivoContado,
		Operador:        operador,
		Ahora:           s.now(),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(commitCtx.Err(), context.DeadlineExceeded) {
			b.Incierto = true
			b.UltimoError = err.Error()
			b.ActualizadoEn = s.now()
			s.guardar(detached, b)
			log.Error().Err(err).Str("borrador_id", b.ID.String()).Msg("arqueo: close timed out, outcome unknown")
			return nil, ErrResultadoDesconocido
		}

		// The transaction rolled back: back to the count with the figure intact.
		b.Estado = EstadoEsperandoConteo
		b.UltimoError = err.Error()
		b.ActualizadoEn = s.now()
		s.guardar(detached, b)
		return nil, fmt.Errorf("%w: %s", ErrCierreFallido, err.Error())
	}

	if !res.Resumen.EfectivoNeto.Equal(b.Totales.EfectivoNeto) {
		res.DiscrepanciaEstimado = true
		log.Warn().
			Str("borrador_id", b.ID.String()).
			Str("estimado", b.Totales.EfectivoNeto.StringFixed(2)).
			Str("cierre", res.Resumen.EfectivoNeto.StringFixed(2)).
			Msg("arqueo: provisional efectivo_neto differs from close")
	}

	if arqueoID, perr := uuid.Parse(res.ArqueoID); perr == nil {
		b.ArqueoID = &arqueoID
		if s.exports != nil {
			if err := s.exports.EnqueueExportArqueo(detached, arqueoID); err != nil {
				log.Warn().Err(err).Str("arqueo_id", res.ArqueoID).Msg("arqueo: export job not enqueued")
			}
		}
	}
	b.Estado = EstadoCerrado
	b.Totales = res.Resumen
	b.UltimoError = ""
	b.ActualizadoEn = s.now()
	s.guardar(detached, b)

	return res, nil
}

// ── Cancelar ─────────────────────────────────────────────────────────────────

func (s *arqueoService) Cancelar(ctx context.Context, id uuid.UUID) error {
	b, err := s.cargar(ctx, id)
	if err != nil {
		return err
	}
	switch b.Estado {
	case EstadoEsperandoConteo, EstadoConfirmando:
		return s.borradores.Delete(ctx, id)
	default:
		return fmt.Errorf("%w: %s", ErrEstadoInvalido, b.Estado)
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *arqueoService) cargar(ctx context.Context, id uuid.UUID) (*repository.Borrador, error) {
	b, err := s.borradores.Get(ctx, id)
	if errors.Is(err, repository.ErrBorradorInexistente) {
		return nil, ErrBorradorNoEncontrado
	}
	return b, err
}

// guardar persists a draft after the close was sent; failures are logged only,
// the close outcome is already decided.
func (s *arqueoService) guardar(ctx context.Context, b *repository.Borrador) {
	if err := s.borradores.Save(ctx, b); err != nil {
		log.Error().Err(err).Str("borrador_id", b.ID.String()).Str("estado", b.Estado).Msg("arqueo: draft not saved")
	}
}

func borradorToResponse(b *repository.Borrador) *dto.BorradorResponse {
	resp := &dto.BorradorResponse{
		ID:              b.ID.String(),
		Estado:          b.Estado,
		Operador:        b.Operador,
		Periodo:         b.Periodo,
		Totales:         b.Totales,
		EfectivoContado: b.EfectivoContado,
		Incierto:        b.Incierto,
		ActualizadoEn:   b.ActualizadoEn,
	}
	if b.ArqueoID != nil {
		id := b.ArqueoID.String()
		resp.ArqueoID = &id
	}
	return resp
}

func confirmacion(b *repository.Borrador) *dto.ConfirmacionResponse {
	t := b.Totales
	contado := *b.EfectivoContado
	diff := calculo.Diferencia(contado, t.EfectivoNeto)
	etiqueta := calculo.Etiqueta(diff)

	return &dto.ConfirmacionResponse{
		BorradorID:      b.ID.String(),
		EfectivoNeto:    t.EfectivoNeto,
		EfectivoContado: contado,
		Diferencia:      diff,
		Etiqueta:        etiqueta,
		Totales:         t,
		Lineas: []string{
			fmt.Sprintf("Ventas (%d): %s", t.CantidadVentas, calculo.Moneda(t.TotalVentas)),
			fmt.Sprintf("Ventas a crédito (%d): %s", t.CantidadCreditos, calculo.Moneda(t.TotalCreditos)),
			fmt.Sprintf("Abonos en efectivo (%d): %s", t.CantidadAbonosEfectivo, calculo.Moneda(t.TotalAbonosEfectivo)),
			fmt.Sprintf("Abonos con tarjeta (%d): %s", t.CantidadAbonosTarjeta, calculo.Moneda(t.TotalAbonosTarjeta)),
			fmt.Sprintf("Abonos por transferencia (%d): %s", t.CantidadAbonosTransferencia, calculo.Moneda(t.TotalAbonosTransferencia)),
			fmt.Sprintf("Gastos (%d): %s", t.CantidadGastos, calculo.Moneda(t.TotalGastos)),
			fmt.Sprintf("Efectivo esperado: %s", calculo.Moneda(t.EfectivoNeto)),
			fmt.Sprintf("Efectivo contado: %s", calculo.Moneda(contado)),
			fmt.Sprintf("Diferencia: %s (%s)", calculo.Moneda(diff), etiqueta),
			fmt.Sprintf("Se eliminarán %d ventas y %d gastos; los créditos y abonos se conservan.", t.CantidadVentas, t.CantidadGastos),
		},
	}
}
