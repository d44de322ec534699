package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/thecarebot/facturacion-sii/internal/domain"
	"github.com/thecarebot/facturacion-sii/internal/domain/entity"
	"github.com/thecarebot/facturacion-sii/internal/domain/repository"
	"github.com/thecarebot/facturacion-sii/pkg/sii"
)

var _ repository.TaxDocumentRepository = (*TaxDocumentRepository)(nil)
var _ repository.OperationLogRepository = (*OperationLogRepository)(nil)

// TaxDocumentRepository persistencia de documentos emitidos. Las boletas van
// a boletas_electronicas y las facturas y notas de crédito a
// facturas_electronicas, como en el esquema original del sistema.
type TaxDocumentRepository struct {
	q Querier
}

// NewTaxDocumentRepository acepta pool o tx.
func NewTaxDocumentRepository(q Querier) *TaxDocumentRepository {
	return &TaxDocumentRepository{q: q}
}

// tableFor tabla destino según el tipo de documento.
func tableFor(tipo sii.DTEType) string {
	if tipo == sii.DTEBoletaElectronica {
		return "boletas_electronicas"
	}
	return "facturas_electronicas"
}

func (r *TaxDocumentRepository) Create(ctx context.Context, doc *entity.TaxDocument) error {
	sql := fmt.Sprintf(`
		INSERT INTO %s
			(id, doctor_id, tipo_dte, folio, folio_demo, rut_receptor, razon_social_receptor,
			 monto_neto, iva, monto_total, estado_sii, track_id, xml_dte, fecha_emision, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		tableFor(doc.TipoDTE),
	)
	_, err := r.q.Exec(ctx, sql,
		doc.ID, doc.DoctorID, int(doc.TipoDTE), doc.Folio, doc.FolioDemo,
		doc.RUTReceptor, doc.RazonSocialReceptor,
		doc.MontoNeto, doc.IVA, doc.MontoTotal,
		doc.EstadoSII, doc.TrackID, doc.XMLFirmado, doc.FechaEmision, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("documento %s ya registrado", doc.ID)
		}
		return fmt.Errorf("insertar documento: %w", err)
	}
	return nil
}

const docColumns = `id, doctor_id, tipo_dte, folio, folio_demo, rut_receptor, razon_social_receptor,
	monto_neto, iva, monto_total, estado_sii, track_id, xml_dte, fecha_emision, created_at`

func (r *TaxDocumentRepository) GetByID(ctx context.Context, id string) (*entity.TaxDocument, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM boletas_electronicas WHERE id = $1
		UNION ALL
		SELECT %s FROM facturas_electronicas WHERE id = $1
		LIMIT 1`, docColumns, docColumns)

	doc, err := scanDocument(r.q.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consultar documento: %w", err)
	}
	return doc, nil
}

func (r *TaxDocumentRepository) ListByDoctor(ctx context.Context, doctorID string, limit int) ([]*entity.TaxDocument, error) {
	if limit <= 0 {
		limit = 20
	}
	sql := fmt.Sprintf(`
		SELECT * FROM (
			SELECT %s FROM boletas_electronicas WHERE doctor_id = $1
			UNION ALL
			SELECT %s FROM facturas_electronicas WHERE doctor_id = $1
		) docs
		ORDER BY fecha_emision DESC
		LIMIT $2`, docColumns, docColumns)

	rows, err := r.q.Query(ctx, sql, doctorID, limit)
	if err != nil {
		return nil, fmt.Errorf("listar documentos: %w", err)
	}
	defer rows.Close()

	var out []*entity.TaxDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("leer documento: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// pgxScanner fila de pgx.Row o pgx.Rows.
type pgxScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row pgxScanner) (*entity.TaxDocument, error) {
	var doc entity.TaxDocument
	var tipo int
	err := row.Scan(
		&doc.ID, &doc.DoctorID, &tipo, &doc.Folio, &doc.FolioDemo,
		&doc.RUTReceptor, &doc.RazonSocialReceptor,
		&doc.MontoNeto, &doc.IVA, &doc.MontoTotal,
		&doc.EstadoSII, &doc.TrackID, &doc.XMLFirmado, &doc.FechaEmision, &doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.TipoDTE = sii.DTEType(tipo)
	return &doc, nil
}

// OperationLogRepository log de auditoría en la tabla logs_sii.
type OperationLogRepository struct {
	q Querier
}

// NewOperationLogRepository acepta pool o tx.
func NewOperationLogRepository(q Querier) *OperationLogRepository {
	return &OperationLogRepository{q: q}
}

func (r *OperationLogRepository) Create(ctx context.Context, log *entity.OperationLog) error {
	detalle, err := json.Marshal(log.Detalle)
	if err != nil {
		return fmt.Errorf("serializar detalle: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO logs_sii (id, doctor_id, operacion, exito, duracion_ms, detalle, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, log.DoctorID, log.Operacion, log.Exito, log.DuracionMs, detalle, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insertar log: %w", err)
	}
	return nil
}
