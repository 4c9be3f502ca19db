package service

import "errors"

// Sentinel errors surfaced to the operator. Handlers map them with errors.Is.
var (
	ErrAgregacion           = errors.New("no se pudo calcular el resumen del turno")
	ErrPeriodoInvalido      = errors.New("periodo inválido: hasta debe ser posterior a desde")
	ErrConteoInvalido       = errors.New("el efectivo contado es obligatorio y no puede ser negativo")
	ErrEstadoInvalido       = errors.New("operación no permitida en el estado actual del arqueo")
	ErrBorradorNoEncontrado = errors.New("arqueo en curso no encontrado o expirado")
	ErrCierreFallido        = errors.New("no se pudo cerrar el arqueo")
	ErrResultadoDesconocido = errors.New("resultado del cierre desconocido, concilie manualmente antes de reintentar")
	ErrArqueoNoEncontrado   = errors.New("arqueo no encontrado")
	ErrFormatoInvalido      = errors.New("formato de exportación inválido (xlsx | pdf)")
	ErrOperadorRequerido    = errors.New("se requiere el nombre del operador")
	ErrCredenciales         = errors.New("credenciales invalidas")
)
