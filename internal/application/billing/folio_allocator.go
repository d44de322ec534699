package billing

import (
	"context"
	"fmt"

	"github.com/thecarebot/facturacion-sii/internal/domain"
	"github.com/thecarebot/facturacion-sii/internal/domain/repository"
	"github.com/thecarebot/facturacion-sii/pkg/sii"
)

// FolioAllocator asigna el siguiente folio del rango CAF activo dentro de una
// transacción. Errores de negocio (sin rango, rango agotado) se devuelven tal
// cual; cualquier fallo del almacenamiento se envuelve en ErrStoreUnavailable
// para que el workflow pueda degradar a folio demo.
type FolioAllocator struct {
	tx FolioTxRunner // nil en modo demo (sin base de datos)
}

// NewFolioAllocator construye el asignador. tx puede ser nil.
func NewFolioAllocator(tx FolioTxRunner) *FolioAllocator {
	return &FolioAllocator{tx: tx}
}

// Allocate reserva y devuelve el siguiente folio para el emisor y tipo dados.
// Si el rango queda agotado lo marca como tal antes de reportar el
// agotamiento. La marca se devuelve fuera del callback transaccional para que
// el commit la persista; devolver el error desde dentro la revertiría.
func (a *FolioAllocator) Allocate(ctx context.Context, rutEmisor string, tipo sii.DTEType) (int64, error) {
	if a.tx == nil {
		return 0, domain.ErrStoreUnavailable
	}

	var (
		folio     int64
		noRange   bool
		exhausted bool
	)
	err := a.tx.RunFolio(ctx, func(folioRepo repository.FolioRepository) error {
		rango, err := folioRepo.GetActiveForUpdate(ctx, rutEmisor, tipo)
		if err != nil {
			return fmt.Errorf("consultando rango activo: %w", err)
		}
		if rango == nil {
			noRange = true
			return nil
		}
		if rango.Exhausted() {
			if mErr := folioRepo.MarkExhausted(ctx, rango.ID); mErr != nil {
				return fmt.Errorf("marcando rango agotado: %w", mErr)
			}
			exhausted = true
			return nil
		}
		folio = rango.FolioActual + 1
		if uErr := folioRepo.UpdateFolioActual(ctx, rango.ID, folio); uErr != nil {
			return fmt.Errorf("actualizando folio actual: %w", uErr)
		}
		return nil
	})
	switch {
	case err != nil:
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	case noRange:
		return 0, domain.ErrNoActiveRange
	case exhausted:
		return 0, domain.ErrRangeExhausted
	}
	return folio, nil
}
