package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/thecarebot/facturacion-sii/internal/domain/entity"
	"github.com/thecarebot/facturacion-sii/internal/domain/repository"
	"github.com/thecarebot/facturacion-sii/pkg/sii"
)

var _ repository.FolioRepository = (*FolioRepository)(nil)

// FolioRepository persistencia de rangos de folios CAF en la tabla
// folios_asignados.
type FolioRepository struct {
	q Querier
}

// NewFolioRepository acepta pool o tx.
func NewFolioRepository(q Querier) *FolioRepository {
	return &FolioRepository{q: q}
}

func (r *FolioRepository) Create(ctx context.Context, rango *entity.FolioRange) error {
	now := time.Now()
	_, err := r.q.Exec(ctx, `
		INSERT INTO folios_asignados
			(id, rut_emisor, tipo_dte, folio_desde, folio_hasta, folio_actual, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		rango.ID, rango.RUTEmisor, int(rango.TipoDTE),
		rango.FolioDesde, rango.FolioHasta, rango.FolioActual, rango.Estado, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ya existe un rango con id %s", rango.ID)
		}
		return fmt.Errorf("insertar rango de folios: %w", err)
	}
	return nil
}

// GetActiveForUpdate bloquea y devuelve el rango activo del emisor y tipo.
// Devuelve (nil, nil) si no hay rango activo. El FOR UPDATE serializa las
// asignaciones concurrentes sobre la misma fila.
func (r *FolioRepository) GetActiveForUpdate(ctx context.Context, rutEmisor string, tipo sii.DTEType) (*entity.FolioRange, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, rut_emisor, tipo_dte, folio_desde, folio_hasta, folio_actual, estado, created_at, updated_at
		FROM folios_asignados
		WHERE rut_emisor = $1 AND tipo_dte = $2 AND estado = $3
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE`,
		rutEmisor, int(tipo), entity.FolioRangeActivo,
	)

	var rango entity.FolioRange
	var tipoDTE int
	err := row.Scan(
		&rango.ID, &rango.RUTEmisor, &tipoDTE,
		&rango.FolioDesde, &rango.FolioHasta, &rango.FolioActual,
		&rango.Estado, &rango.CreatedAt, &rango.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("consultar rango activo: %w", err)
	}
	rango.TipoDTE = sii.DTEType(tipoDTE)
	return &rango, nil
}

func (r *FolioRepository) UpdateFolioActual(ctx context.Context, id string, folio int64) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE folios_asignados
		SET folio_actual = $2, updated_at = now()
		WHERE id = $1`,
		id, folio,
	)
	if err != nil {
		return fmt.Errorf("actualizar folio actual: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rango %s no encontrado", id)
	}
	return nil
}

func (r *FolioRepository) MarkExhausted(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE folios_asignados
		SET estado = $2, updated_at = now()
		WHERE id = $1`,
		id, entity.FolioRangeAgotado,
	)
	if err != nil {
		return fmt.Errorf("marcar rango agotado: %w", err)
	}
	return nil
}
