package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItemRequest línea de detalle de la solicitud de emisión.
type InvoiceItemRequest struct {
	Nombre   string          `json:"nombre"`
	Cantidad decimal.Decimal `json:"cantidad"`
	Precio   decimal.Decimal `json:"precio"`
	Total    decimal.Decimal `json:"total"`
}

// GenerateInvoiceRequest body para POST /api/invoices/generate.
type GenerateInvoiceRequest struct {
	TipoDTE             int                  `json:"tipo_dte"`
	RUTReceptor         string               `json:"rut_receptor"`
	RazonSocialReceptor string               `json:"razon_social_receptor"`
	Direccion           string               `json:"direccion,omitempty"`
	Comuna              string               `json:"comuna,omitempty"`
	Items               []InvoiceItemRequest `json:"items"`
}

// TaxDocumentResponse documento emitido, en listados y consultas.
type TaxDocumentResponse struct {
	ID                  string          `json:"id"`
	TipoDTE             int             `json:"tipo_dte"`
	Folio               int64           `json:"folio"`
	FolioDemo           bool            `json:"folio_demo,omitempty"`
	RUTReceptor         string          `json:"rut_receptor"`
	RazonSocialReceptor string          `json:"razon_social_receptor"`
	MontoNeto           decimal.Decimal `json:"monto_neto"`
	IVA                 decimal.Decimal `json:"iva"`
	MontoTotal          decimal.Decimal `json:"monto_total"`
	EstadoSII           string          `json:"estado_sii"`
	TrackID             string          `json:"track_id"`
	FechaEmision        time.Time       `json:"fecha_emision"`
}

// ListInvoicesResponse listado de documentos del doctor, más recientes primero.
type ListInvoicesResponse struct {
	Documentos []TaxDocumentResponse `json:"documentos"`
	Limit      int                   `json:"limit"`
}

// GenerateInvoiceResponse resultado de la emisión. PDFBase64 solo viene en
// emisiones exitosas; Errores solo cuando el flujo falla.
type GenerateInvoiceResponse struct {
	Success      bool            `json:"success"`
	Estado       string          `json:"estado"`
	Folio        int64           `json:"folio,omitempty"`
	FolioDemo    bool            `json:"folio_demo,omitempty"`
	TrackID      string          `json:"track_id,omitempty"`
	EstadoSII    string          `json:"estado_sii,omitempty"`
	MontoNeto    decimal.Decimal `json:"monto_neto"`
	IVA          decimal.Decimal `json:"iva"`
	MontoTotal   decimal.Decimal `json:"monto_total"`
	FechaEmision time.Time       `json:"fecha_emision"`
	PDFBase64    string          `json:"pdf_base64,omitempty"`
	Errores      []string        `json:"errores,omitempty"`
}
