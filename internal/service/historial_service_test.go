package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"arelyz/internal/model"
	"arelyz/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arqueo(creado time.Time, neto, contado, gastos string) model.Arqueo {
	n, c := d(neto), d(contado)
	return model.Arqueo{
		ID:           uuid.New(),
		TotalVentas:  n,
		TotalGastos:  d(gastos),
		EfectivoNeto: n, EfectivoContado: c, Diferencia: c.Sub(n),
		Operador:  "Ana",
		CreatedAt: creado,
	}
}

func historial() *fakeArqueoRepo {
	base := time.Date(2026, 3, 20, 21, 0, 0, 0, time.UTC)
	return &fakeArqueoRepo{arqueos: []model.Arqueo{
		arqueo(base, "475", "480", "95"),                     // +5
		arqueo(base.AddDate(0, 0, -1), "300", "290", "10"),   // -10
		arqueo(base.AddDate(0, 0, -2), "200", "200", "0"),    // exacto
		arqueo(base.AddDate(0, 0, -25), "100", "103.5", "0"), // February
	}}
}

func TestListarRecientes_LimiteYOrden(t *testing.T) {
	repo := historial()
	svc := service.NewHistorialService(repo, time.UTC, 2, "Arelyz Salon")

	got, err := svc.ListarRecientes(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 2, "zero means the configured default")
	assert.Equal(t, repo.arqueos[0].ID.String(), got[0].ID)
	assert.Equal(t, "sobrante", got[0].Etiqueta)
	assert.Equal(t, "faltante", got[1].Etiqueta)

	got, err = svc.ListarRecientes(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestListarRecientes_ErrorDelRepositorio(t *testing.T) {
	svc := service.NewHistorialService(&fakeArqueoRepo{err: errors.New("db down")}, time.UTC, 20, "")
	_, err := svc.ListarRecientes(context.Background(), 5)
	assert.ErrorContains(t, err, "db down")
}

func TestResumen_Estadisticas(t *testing.T) {
	svc := service.NewHistorialService(historial(), time.UTC, 20, "")

	r, err := svc.Resumen(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Cantidad)
	assert.Equal(t, 1, r.Exactos)
	assert.Equal(t, 2, r.ConSobrante)
	assert.Equal(t, 1, r.ConFaltante)
	assert.True(t, d("8.5").Equal(r.TotalSobrante), "got %s", r.TotalSobrante)
	assert.True(t, d("10").Equal(r.TotalFaltante), "got %s", r.TotalFaltante)
	assert.True(t, d("1075").Equal(r.TotalEfectivoNeto))
	assert.True(t, d("105").Equal(r.TotalGastos))
}

func TestReporteMensual_SumaSoloElMes(t *testing.T) {
	svc := service.NewHistorialService(historial(), time.UTC, 20, "")

	r, err := svc.ReporteMensual(context.Background(), 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Cantidad)
	assert.Len(t, r.Arqueos, 3)
	assert.True(t, d("975").Equal(r.TotalEfectivoNeto))
	assert.True(t, d("-5").Equal(r.TotalDiferencia))

	r, err = svc.ReporteMensual(context.Background(), 2026, 5)
	require.NoError(t, err)
	assert.Zero(t, r.Cantidad)
	assert.NotNil(t, r.Arqueos)
}

func TestReporteMensual_PeriodoInvalido(t *testing.T) {
	svc := service.NewHistorialService(historial(), time.UTC, 20, "")
	for _, c := range []struct{ anio, mes int }{{2026, 0}, {2026, 13}, {1999, 5}} {
		_, err := svc.ReporteMensual(context.Background(), c.anio, c.mes)
		assert.ErrorIs(t, err, service.ErrPeriodoInvalido, "%d-%d", c.anio, c.mes)
	}
}

func TestExportar_Formatos(t *testing.T) {
	repo := historial()
	svc := service.NewHistorialService(repo, time.UTC, 20, "Arelyz Salon")
	id := repo.arqueos[0].ID

	xlsx, err := svc.Exportar(context.Background(), id, "XLSX")
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", xlsx.ContentType)
	assert.Equal(t, "arqueo_2026-03-20_2100_"+id.String()[:8]+".xlsx", xlsx.Nombre)
	assert.True(t, bytes.HasPrefix(xlsx.Contenido, []byte("PK")), "xlsx is a zip container")

	pdf, err := svc.Exportar(context.Background(), id, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Contenido, []byte("%PDF")))
}

func TestExportar_Errores(t *testing.T) {
	repo := historial()
	svc := service.NewHistorialService(repo, time.UTC, 20, "")

	_, err := svc.Exportar(context.Background(), repo.arqueos[0].ID, "csv")
	assert.ErrorIs(t, err, service.ErrFormatoInvalido)

	_, err = svc.Exportar(context.Background(), uuid.New(), "pdf")
	assert.ErrorIs(t, err, service.ErrArqueoNoEncontrado)

	_, err = svc.Obtener(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrArqueoNoEncontrado)
}
