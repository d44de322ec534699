package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/thecarebot/facturacion-sii/pkg/sii"
)

// TaxDocument representa un documento tributario emitido (boleta o factura
// electrónica). Se persiste después del envío simulado al SII junto con el XML
// firmado; el PDF vive en el estado del workflow y no se guarda en la tabla.
type TaxDocument struct {
	ID                  string
	DoctorID            string
	TipoDTE             sii.DTEType
	Folio               int64
	FolioDemo           bool // folio generado al azar por falta de almacenamiento
	RUTReceptor         string
	RazonSocialReceptor string
	MontoNeto           decimal.Decimal
	IVA                 decimal.Decimal
	MontoTotal          decimal.Decimal
	EstadoSII           string // ACEPTADO, RECHAZADO, REPARO
	TrackID             string
	XMLFirmado          []byte // DTE firmado tal como se envió (ISO-8859-1)
	FechaEmision        time.Time
	CreatedAt           time.Time
}
