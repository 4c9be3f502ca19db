package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"arelyz/internal/calculo"
	"arelyz/internal/dto"
	"arelyz/internal/model"
	"arelyz/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── PeriodoRepository ─────────────────────────────────────────────────────────

type fakePeriodoRepo struct {
	ventas   []model.Venta
	creditos []model.VentaCredito
	abonos   []model.Abono
	gastos   []model.Gasto
	failOn   string // "ventas" | "creditos" | "abonos" | "gastos"
	err      error
}

func (r *fakePeriodoRepo) fail(name string) error {
	if r.failOn == name {
		return r.err
	}
	return nil
}

func (r *fakePeriodoRepo) ListVentas(context.Context, calculo.Periodo) ([]model.Venta, error) {
	return r.ventas, r.fail("ventas")
}

func (r *fakePeriodoRepo) ListCreditos(context.Context, calculo.Periodo) ([]model.VentaCredito, error) {
	return r.creditos, r.fail("creditos")
}

func (r *fakePeriodoRepo) ListAbonos(context.Context, calculo.Periodo) ([]model.Abono, error) {
	return r.abonos, r.fail("abonos")
}

func (r *fakePeriodoRepo) ListGastos(context.Context, calculo.Periodo) ([]model.Gasto, error) {
	return r.gastos, r.fail("gastos")
}

// escenario: 3 cash sales 450, 2 cash abonos 120, 1 card abono 80, 2 expenses 95.
func escenario() *fakePeriodoRepo {
	return &fakePeriodoRepo{
		ventas: []model.Venta{
			{ID: uuid.New(), Total: d("200"), MetodoPago: model.MetodoEfectivo},
			{ID: uuid.New(), Total: d("150"), MetodoPago: model.MetodoEfectivo},
			{ID: uuid.New(), Total: d("100"), MetodoPago: model.MetodoEfectivo},
		},
		abonos: []model.Abono{
			{ID: uuid.New(), Monto: d("70"), MetodoPago: model.MetodoEfectivo},
			{ID: uuid.New(), Monto: d("50"), MetodoPago: model.MetodoEfectivo},
			{ID: uuid.New(), Monto: d("80"), MetodoPago: model.MetodoTarjeta},
		},
		gastos: []model.Gasto{
			{ID: uuid.New(), Monto: d("45")},
			{ID: uuid.New(), Monto: d("50")},
		},
	}
}

// ── CierreRepository ──────────────────────────────────────────────────────────

type fakeCierre struct {
	mu     sync.Mutex
	calls  int
	last   repository.CierreParams
	neto   decimal.Decimal
	err    error
	delay  time.Duration
	onCall func()
}

func (f *fakeCierre) Cerrar(ctx context.Context, p repository.CierreParams) (*dto.ResultadoCierre, error) {
	f.mu.Lock()
	f.calls++
	f.last = p
	f.mu.Unlock()

	if f.onCall != nil {
		f.onCall()
	}
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	diff := calculo.Diferencia(p.EfectivoContado, f.neto)
	return &dto.ResultadoCierre{
		Success:    true,
		ArqueoID:   uuid.NewString(),
		Diferencia: diff,
		Etiqueta:   calculo.Etiqueta(diff),
		Resumen:    calculo.Totales{EfectivoNeto: f.neto},
	}, nil
}

func (f *fakeCierre) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// ── BorradorStore ─────────────────────────────────────────────────────────────

// memBorradores round-trips drafts through JSON like the Redis store does.
type memBorradores struct {
	mu     sync.Mutex
	data   map[uuid.UUID][]byte
	claims map[uuid.UUID]bool
}

func newMemBorradores() *memBorradores {
	return &memBorradores{data: map[uuid.UUID][]byte{}, claims: map[uuid.UUID]bool{}}
}

func (m *memBorradores) Save(_ context.Context, b *repository.Borrador) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[b.ID] = raw
	return nil
}

func (m *memBorradores) Get(_ context.Context, id uuid.UUID) (*repository.Borrador, error) {
	m.mu.Lock()
	raw, ok := m.data[id]
	m.mu.Unlock()
	if !ok {
		return nil, repository.ErrBorradorInexistente
	}
	var b repository.Borrador
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (m *memBorradores) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memBorradores) Reservar(_ context.Context, id uuid.UUID, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claims[id] {
		return false, nil
	}
	m.claims[id] = true
	return true, nil
}

func (m *memBorradores) Liberar(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, id)
	return nil
}

func (m *memBorradores) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// ── ExportEnqueuer ────────────────────────────────────────────────────────────

type fakeExports struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (f *fakeExports) EnqueueExportArqueo(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return nil
}

// ── ArqueoRepository ──────────────────────────────────────────────────────────

type fakeArqueoRepo struct {
	arqueos []model.Arqueo // newest first
	err     error
}

func (r *fakeArqueoRepo) ListRecientes(_ context.Context, limit int) ([]model.Arqueo, error) {
	if r.err != nil {
		return nil, r.err
	}
	if limit > len(r.arqueos) {
		limit = len(r.arqueos)
	}
	return r.arqueos[:limit], nil
}

func (r *fakeArqueoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Arqueo, error) {
	for i := range r.arqueos {
		if r.arqueos[i].ID == id {
			return &r.arqueos[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeArqueoRepo) ListPorPeriodo(_ context.Context, p calculo.Periodo) ([]model.Arqueo, error) {
	var out []model.Arqueo
	for _, a := range r.arqueos {
		if !a.CreatedAt.Before(p.Desde) && a.CreatedAt.Before(p.Hasta) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeArqueoRepo) ListFacturados(context.Context, uuid.UUID) ([]model.Facturado, error) {
	return nil, nil
}
