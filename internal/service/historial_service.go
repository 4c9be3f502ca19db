package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"arelyz/internal/calculo"
	"arelyz/internal/dto"
	"arelyz/internal/export"
	"arelyz/internal/model"
	"arelyz/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxHistorial = 100

// Documento is an exported arqueo ready to be streamed or attached.
type Documento struct {
	Nombre      string
	ContentType string
	Contenido   []byte
}

const (
	FormatoXLSX = "xlsx"
	FormatoPDF  = "pdf"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// HistorialService reads committed arqueos. It never writes.
type HistorialService interface {
	ListarRecientes(ctx context.Context, limit int) ([]dto.ArqueoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ArqueoResponse, error)
	Resumen(ctx context.Context, limit int) (*dto.ResumenHistorialResponse, error)
	ReporteMensual(ctx context.Context, anio, mes int) (*dto.ReporteMensualResponse, error)
	Exportar(ctx context.Context, id uuid.UUID, formato string) (*Documento, error)
}

type historialService struct {
	repo         repository.ArqueoRepository
	loc          *time.Location
	limitDefault int
	negocio      string
}

func NewHistorialService(repo repository.ArqueoRepository, loc *time.Location, limitDefault int, negocio string) HistorialService {
	if loc == nil {
		loc = time.Local
	}
	if limitDefault <= 0 || limitDefault > maxHistorial {
		limitDefault = 20
	}
	return &historialService{repo: repo, loc: loc, limitDefault: limitDefault, negocio: negocio}
}

func (s *historialService) limite(limit int) int {
	if limit <= 0 {
		return s.limitDefault
	}
	if limit > maxHistorial {
		return maxHistorial
	}
	return limit
}

func (s *historialService) ListarRecientes(ctx context.Context, limit int) ([]dto.ArqueoResponse, error) {
	arqueos, err := s.repo.ListRecientes(ctx, s.limite(limit))
	if err != nil {
		return nil, fmt.Errorf("listar arqueos: %w", err)
	}
	out := make([]dto.ArqueoResponse, len(arqueos))
	for i := range arqueos {
		out[i] = arqueoToResponse(&arqueos[i])
	}
	return out, nil
}

func (s *historialService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ArqueoResponse, error) {
	a, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := arqueoToResponse(a)
	return &resp, nil
}

func (s *historialService) Resumen(ctx context.Context, limit int) (*dto.ResumenHistorialResponse, error) {
	arqueos, err := s.repo.ListRecientes(ctx, s.limite(limit))
	if err != nil {
		return nil, fmt.Errorf("listar arqueos: %w", err)
	}

	r := &dto.ResumenHistorialResponse{
		Cantidad:          len(arqueos),
		TotalSobrante:     decimal.Zero,
		TotalFaltante:     decimal.Zero,
		TotalEfectivoNeto: decimal.Zero,
		TotalGastos:       decimal.Zero,
	}
	for _, a := range arqueos {
		switch calculo.Etiqueta(a.Diferencia) {
		case calculo.Sobrante:
			r.ConSobrante++
			r.TotalSobrante = r.TotalSobrante.Add(a.Diferencia)
		case calculo.Faltante:
			r.ConFaltante++
			r.TotalFaltante = r.TotalFaltante.Add(a.Diferencia.Abs())
		default:
			r.Exactos++
		}
		r.TotalEfectivoNeto = r.TotalEfectivoNeto.Add(a.EfectivoNeto)
		r.TotalGastos = r.TotalGastos.Add(a.TotalGastos)
	}
	return r, nil
}

func (s *historialService) ReporteMensual(ctx context.Context, anio, mes int) (*dto.ReporteMensualResponse, error) {
	if mes < 1 || mes > 12 || anio < 2000 || anio > 9999 {
		return nil, ErrPeriodoInvalido
	}
	arqueos, err := s.repo.ListPorPeriodo(ctx, calculo.Mes(anio, time.Month(mes), s.loc))
	if err != nil {
		return nil, fmt.Errorf("reporte mensual: %w", err)
	}

	r := &dto.ReporteMensualResponse{
		Anio:                     anio,
		Mes:                      mes,
		Cantidad:                 len(arqueos),
		TotalVentas:              decimal.Zero,
		TotalCreditos:            decimal.Zero,
		TotalAbonosEfectivo:      decimal.Zero,
		TotalAbonosTarjeta:       decimal.Zero,
		TotalAbonosTransferencia: decimal.Zero,
		TotalGastos:              decimal.Zero,
		TotalEfectivoNeto:        decimal.Zero,
		TotalDiferencia:          decimal.Zero,
		Arqueos:                  make([]dto.ArqueoResponse, 0, len(arqueos)),
	}
	for i := range arqueos {
		a := &arqueos[i]
		r.TotalVentas = r.TotalVentas.Add(a.TotalVentas)
		r.TotalCreditos = r.TotalCreditos.Add(a.TotalCreditos)
		r.TotalAbonosEfectivo = r.TotalAbonosEfectivo.Add(a.TotalAbonosEfectivo)
		r.TotalAbonosTarjeta = r.TotalAbonosTarjeta.Add(a.TotalAbonosTarjeta)
		r.TotalAbonosTransferencia = r.TotalAbonosTransferencia.Add(a.TotalAbonosTransferencia)
		r.TotalGastos = r.TotalGastos.Add(a.TotalGastos)
		r.TotalEfectivoNeto = r.TotalEfectivoNeto.Add(a.EfectivoNeto)
		r.TotalDiferencia = r.TotalDiferencia.Add(a.Diferencia)
		r.Arqueos = append(r.Arqueos, arqueoToResponse(a))
	}
	return r, nil
}

func (s *historialService) Exportar(ctx context.Context, id uuid.UUID, formato string) (*Documento, error) {
	formato = strings.ToLower(strings.TrimSpace(formato))
	if formato != FormatoXLSX && formato != FormatoPDF {
		return nil, ErrFormatoInvalido
	}
	a, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	return Exportar(a, formato, s.negocio, s.loc)
}

// Exportar serializes one snapshot. Shared with the export worker.
func Exportar(a *model.Arqueo, formato, negocio string, loc *time.Location) (*Documento, error) {
	var (
		contenido []byte
		ct        string
		err       error
	)
	switch formato {
	case FormatoXLSX:
		contenido, err = export.XLSX(a, negocio, loc)
		ct = contentTypeXLSX
	case FormatoPDF:
		contenido, err = export.PDF(a, negocio, loc)
		ct = contentTypePDF
	default:
		return nil, ErrFormatoInvalido
	}
	if err != nil {
		log.Error().Err(err).Str("arqueo_id", a.ID.String()).Str("formato", formato).Msg("historial: export failed")
		return nil, fmt.Errorf("exportar arqueo: %w", err)
	}
	return &Documento{
		Nombre:      export.NombreArchivo(a, loc) + "." + formato,
		ContentType: ct,
		Contenido:   contenido,
	}, nil
}

func (s *historialService) buscar(ctx context.Context, id uuid.UUID) (*model.Arqueo, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArqueoNoEncontrado
		}
		return nil, fmt.Errorf("buscar arqueo: %w", err)
	}
	return a, nil
}

func arqueoToResponse(a *model.Arqueo) dto.ArqueoResponse {
	return dto.ArqueoResponse{
		ID:                          a.ID.String(),
		TotalVentas:                 a.TotalVentas,
		TotalVentasEfectivo:         a.TotalVentasEfectivo,
		TotalCreditos:               a.TotalCreditos,
		TotalAbonosEfectivo:         a.TotalAbonosEfectivo,
		TotalAbonosTarjeta:          a.TotalAbonosTarjeta,
		TotalAbonosTransferencia:    a.TotalAbonosTransferencia,
		TotalEntradaEfectivo:        a.TotalEntradaEfectivo,
		TotalGastos:                 a.TotalGastos,
		EfectivoNeto:                a.EfectivoNeto,
		EfectivoContado:             a.EfectivoContado,
		Diferencia:                  a.Diferencia,
		Etiqueta:                    calculo.Etiqueta(a.Diferencia),
		CantidadVentas:              a.CantidadVentas,
		CantidadCreditos:            a.CantidadCreditos,
		CantidadAbonosEfectivo:      a.CantidadAbonosEfectivo,
		CantidadAbonosTarjeta:       a.CantidadAbonosTarjeta,
		CantidadAbonosTransferencia: a.CantidadAbonosTransferencia,
		CantidadGastos:              a.CantidadGastos,
		PeriodoInicio:               a.PeriodoInicio,
		PeriodoFin:                  a.PeriodoFin,
		Operador:                    a.Operador,
		CreatedAt:                   a.CreatedAt,
	}
}
