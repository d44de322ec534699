package repository

import (
	"context"

	"github.com/thecarebot/facturacion-sii/internal/domain/entity"
	"github.com/thecarebot/facturacion-sii/pkg/sii"
)

// FolioRepository define el puerto de persistencia para rangos de folios CAF.
// Las operaciones de lectura-modificación se ejecutan dentro de una transacción
// (ver FolioTxRunner en la capa de aplicación) para garantizar folios únicos
// bajo concurrencia.
type FolioRepository interface {
	Create(ctx context.Context, r *entity.FolioRange) error

	// GetActiveForUpdate devuelve el rango activo para el emisor y tipo dados,
	// bloqueando la fila hasta el fin de la transacción (SELECT ... FOR UPDATE
	// en la implementación PostgreSQL). Devuelve (nil, nil) si no hay rango activo.
	GetActiveForUpdate(ctx context.Context, rutEmisor string, tipo sii.DTEType) (*entity.FolioRange, error)

	// UpdateFolioActual persiste el último folio asignado del rango.
	UpdateFolioActual(ctx context.Context, id string, folio int64) error

	// MarkExhausted marca el rango como agotado. Se invoca antes de reportar
	// el agotamiento para que el siguiente intento no vea el rango como activo.
	MarkExhausted(ctx context.Context, id string) error
}
