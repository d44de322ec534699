// Package dte modela el Documento Tributario Electrónico SII y sus totales.
package dte

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/thecarebot/facturacion-sii/pkg/sii"
)

// Emisor datos del emisor del documento.
type Emisor struct {
	RUT                string
	RazonSocial        string
	Giro               string
	Direccion          string
	Comuna             string
	ActividadEconomica string
}

// Receptor datos del receptor (paciente o empresa).
type Receptor struct {
	RUT         string
	RazonSocial string
	Direccion   string
	Comuna      string
}

// Item línea de detalle del documento. Total es el monto de la línea tal como
// lo informa el sistema origen; no se recalcula a partir de Cantidad x Precio.
type Item struct {
	Nombre   string
	Cantidad decimal.Decimal
	Precio   decimal.Decimal
	Total    decimal.Decimal
}

// Documento DTE completo listo para renderizar a XML, firmar y enviar.
// TrackID se asigna antes de generar el PDF para que el timbre impreso lo
// incluya; el envío al SII lo reutiliza.
type Documento struct {
	Tipo         sii.DTEType
	Folio        int64
	FechaEmision time.Time
	Emisor       Emisor
	Receptor     Receptor
	Items        []Item
	MontoNeto    decimal.Decimal
	IVA          decimal.Decimal
	MontoTotal   decimal.Decimal
	TrackID      string
}

// ID devuelve el identificador del nodo Documento del XML: "DTE-{tipo}-{folio}".
func (d *Documento) ID() string {
	return sii.DocumentoID(d.Tipo, d.Folio)
}
