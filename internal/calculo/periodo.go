package calculo

import "time"

// Periodo is a half-open interval [Desde, Hasta).
type Periodo struct {
	Desde time.Time `json:"desde"`
	Hasta time.Time `json:"hasta"`
}

// Contiene reports whether t falls in the interval.
func (p Periodo) Contiene(t time.Time) bool {
	return !t.Before(p.Desde) && t.Before(p.Hasta)
}

// InicioDelDia returns local midnight of the calendar day of now in loc.
func InicioDelDia(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// Turno is the default reconciliation window: start of the current day up to now.
func Turno(now time.Time, loc *time.Location) Periodo {
	return Periodo{Desde: InicioDelDia(now, loc), Hasta: now}
}

// Mes returns the calendar month [first day, first day of next month) in loc.
func Mes(anio int, mes time.Month, loc *time.Location) Periodo {
	desde := time.Date(anio, mes, 1, 0, 0, 0, 0, loc)
	return Periodo{Desde: desde, Hasta: desde.AddDate(0, 1, 0)}
}
