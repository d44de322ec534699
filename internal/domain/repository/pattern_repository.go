package repository

import (
	"context"

	"github.com/thecarebot/facturacion-sii/internal/domain/entity"
)

// PatternRepository define el puerto de persistencia para patrones de
// autocompletado por doctor.
type PatternRepository interface {
	// ListByDoctorAndField devuelve los patrones de un doctor para un campo,
	// ordenados por frecuencia descendente.
	ListByDoctorAndField(ctx context.Context, doctorID, campo string) ([]*entity.AutofillPattern, error)

	// CountByDoctor cuenta los patrones registrados de un doctor. Se usa para
	// decidir si el predictor con IA tiene historia suficiente.
	CountByDoctor(ctx context.Context, doctorID string) (int, error)

	// IncrementUsage incrementa la frecuencia del patrón (doctor, campo, valor)
	// y actualiza su último uso; si no existe lo crea con frecuencia 1 y el
	// contexto dado.
	IncrementUsage(ctx context.Context, doctorID, campo, valor string, contexto map[string]string) error
}
