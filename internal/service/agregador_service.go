package service

import (
	"context"
	"fmt"
	"time"

	"arelyz/internal/calculo"
	"arelyz/internal/model"
	"arelyz/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// AgregadorService reduces a period's records into totals.
type AgregadorService interface {
	Agregar(ctx context.Context, p calculo.Periodo) (*calculo.Totales, error)
	// Turno returns the default window: start of today (configured zone) to now.
	Turno(now time.Time) calculo.Periodo
}

type agregadorService struct {
	repo repository.PeriodoRepository
	loc  *time.Location
}

func NewAgregadorService(repo repository.PeriodoRepository, loc *time.Location) AgregadorService {
	if loc == nil {
		loc = time.Local
	}
	return &agregadorService{repo: repo, loc: loc}
}

func (s *agregadorService) Turno(now time.Time) calculo.Periodo {
	return calculo.Turno(now, s.loc)
}

// Agregar runs the four fetches concurrently and waits for all of them.
// Any failure discards everything: no partial totals.
func (s *agregadorService) Agregar(ctx context.Context, p calculo.Periodo) (*calculo.Totales, error) {
	if !p.Hasta.After(p.Desde) {
		return nil, ErrPeriodoInvalido
	}

	var (
		ventas   []model.Venta
		creditos []model.VentaCredito
		abonos   []model.Abono
		gastos   []model.Gasto
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ventas, err = s.repo.ListVentas(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		creditos, err = s.repo.ListCreditos(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		abonos, err = s.repo.ListAbonos(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		gastos, err = s.repo.ListGastos(gctx, p)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).
			Time("desde", p.Desde).
			Time("hasta", p.Hasta).
			Msg("agregador: fetch failed")
		return nil, fmt.Errorf("%w: %w", ErrAgregacion, err)
	}

	t := calculo.Totalizar(ventas, creditos, abonos, gastos)
	return &t, nil
}
