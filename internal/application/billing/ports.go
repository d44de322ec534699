package billing

import (
	"context"

	"github.com/thecarebot/facturacion-sii/internal/domain/dte"
	"github.com/thecarebot/facturacion-sii/internal/domain/repository"
)

// FolioTxRunner ejecuta una función dentro de una transacción que incluye el
// repositorio de folios. La implementación PostgreSQL bloquea la fila del rango
// activo (SELECT ... FOR UPDATE) para que dos asignaciones concurrentes nunca
// entreguen el mismo folio.
type FolioTxRunner interface {
	RunFolio(ctx context.Context, fn func(folioRepo repository.FolioRepository) error) error
}

// DTERenderer construye el XML del DTE (codificación ISO-8859-1, montos enteros).
type DTERenderer interface {
	Render(doc *dte.Documento) ([]byte, error)
}

// DTESigner agrega el bloque Signature al XML del DTE.
// La implementación actual usa una firma simulada con digest C14N real; una
// implementación con certificado se inyecta por esta misma interfaz.
type DTESigner interface {
	Sign(xmlDTE []byte) ([]byte, error)
}

// PDFGenerator genera la representación impresa del documento.
type PDFGenerator interface {
	Generate(doc *dte.Documento) ([]byte, error)
}

// SubmitResult respuesta del SII a un envío de DTE.
type SubmitResult struct {
	TrackID string
	Estado  string // ACEPTADO, RECHAZADO, REPARO
	Glosa   string
}

// Submitter envía el DTE firmado al SII. La implementación actual simula la
// recepción y siempre acepta.
type Submitter interface {
	Submit(ctx context.Context, signedXML []byte, doc *dte.Documento) (*SubmitResult, error)
}
