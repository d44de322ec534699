package repository

import (
	"context"

	"github.com/thecarebot/facturacion-sii/internal/domain/entity"
)

// TaxDocumentRepository define el puerto de persistencia para documentos emitidos.
type TaxDocumentRepository interface {
	Create(ctx context.Context, doc *entity.TaxDocument) error
	GetByID(ctx context.Context, id string) (*entity.TaxDocument, error)
	// ListByDoctor lista los últimos documentos emitidos por un doctor.
	ListByDoctor(ctx context.Context, doctorID string, limit int) ([]*entity.TaxDocument, error)
}

// OperationLogRepository define el puerto para el log de auditoría.
type OperationLogRepository interface {
	Create(ctx context.Context, log *entity.OperationLog) error
}
