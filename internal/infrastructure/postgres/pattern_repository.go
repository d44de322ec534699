package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thecarebot/facturacion-sii/internal/domain/entity"
	"github.com/thecarebot/facturacion-sii/internal/domain/repository"
)

var _ repository.PatternRepository = (*PatternRepository)(nil)

// PatternRepository persistencia de patrones de autocompletado en la tabla
// autofill_patterns (doctor_id, campo, valor únicos por fila).
type PatternRepository struct {
	q Querier
}

// NewPatternRepository acepta pool o tx.
func NewPatternRepository(q Querier) *PatternRepository {
	return &PatternRepository{q: q}
}

func (r *PatternRepository) ListByDoctorAndField(ctx context.Context, doctorID, campo string) ([]*entity.AutofillPattern, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, doctor_id, campo, valor, frecuencia, contexto, ultimo_uso, created_at
		FROM autofill_patterns
		WHERE doctor_id = $1 AND campo = $2
		ORDER BY frecuencia DESC, ultimo_uso DESC`,
		doctorID, campo,
	)
	if err != nil {
		return nil, fmt.Errorf("listar patrones: %w", err)
	}
	defer rows.Close()

	var out []*entity.AutofillPattern
	for rows.Next() {
		var p entity.AutofillPattern
		var contexto []byte
		if err := rows.Scan(&p.ID, &p.DoctorID, &p.Campo, &p.Valor, &p.Frecuencia, &contexto, &p.UltimoUso, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("leer patrón: %w", err)
		}
		if len(contexto) > 0 {
			if err := json.Unmarshal(contexto, &p.Contexto); err != nil {
				return nil, fmt.Errorf("deserializar contexto del patrón %s: %w", p.ID, err)
			}
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PatternRepository) CountByDoctor(ctx context.Context, doctorID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM autofill_patterns WHERE doctor_id = $1`,
		doctorID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("contar patrones: %w", err)
	}
	return n, nil
}

// IncrementUsage upsert: crea el patrón con frecuencia 1 o incrementa el
// existente, actualizando contexto y último uso.
func (r *PatternRepository) IncrementUsage(ctx context.Context, doctorID, campo, valor string, contexto map[string]string) error {
	ctxJSON, err := json.Marshal(contexto)
	if err != nil {
		return fmt.Errorf("serializar contexto: %w", err)
	}
	now := time.Now()
	_, err = r.q.Exec(ctx, `
		INSERT INTO autofill_patterns (id, doctor_id, campo, valor, frecuencia, contexto, ultimo_uso, created_at)
		VALUES ($1, $2, $3, $4, 1, $5, $6, $6)
		ON CONFLICT (doctor_id, campo, valor) DO UPDATE
		SET frecuencia = autofill_patterns.frecuencia + 1,
		    contexto   = EXCLUDED.contexto,
		    ultimo_uso = EXCLUDED.ultimo_uso`,
		uuid.New().String(), doctorID, campo, valor, ctxJSON, now,
	)
	if err != nil {
		return fmt.Errorf("registrar uso del patrón: %w", err)
	}
	return nil
}
