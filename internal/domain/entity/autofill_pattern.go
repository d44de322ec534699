package entity

import "time"

// AutofillPattern registra un valor usado por un doctor en un campo de
// formulario, con su frecuencia y el contexto en que se seleccionó.
// El scorer de autocompletado consume estos registros.
type AutofillPattern struct {
	ID         string
	DoctorID   string
	Campo      string
	Valor      string
	Frecuencia int
	// Contexto claves comparables: day_of_week, tipo_consulta, period_of_day.
	Contexto  map[string]string
	UltimoUso time.Time
	CreatedAt time.Time
}
