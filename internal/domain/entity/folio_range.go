package entity

import (
	"time"

	"github.com/thecarebot/facturacion-sii/pkg/sii"
)

// Estados de un rango de folios CAF.
const (
	FolioRangeActivo  = "activo"
	FolioRangeAgotado = "agotado"
)

// FolioRange representa un rango de folios autorizado por el SII (CAF) para un
// tipo de documento y un emisor. Solo puede haber un rango activo por tipo;
// FolioActual es el último folio asignado dentro del rango.
type FolioRange struct {
	ID          string
	RUTEmisor   string
	TipoDTE     sii.DTEType
	FolioDesde  int64
	FolioHasta  int64
	FolioActual int64 // último asignado; el siguiente es FolioActual+1
	Estado      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Exhausted indica si el siguiente folio quedaría fuera del rango autorizado.
func (r *FolioRange) Exhausted() bool {
	return r.FolioActual+1 > r.FolioHasta
}
