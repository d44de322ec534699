package billing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/thecarebot/facturacion-sii/pkg/sii"
)

// Status estado del workflow de generación. Enumeración cerrada: cada paso
// exitoso deja el estado del paso siguiente; el primer fallo deja failed.
type Status string

const (
	StatusPending            Status = "pending"
	StatusValidating         Status = "validating"
	StatusGeneratingDocument Status = "generating_document"
	StatusSigning            Status = "signing"
	StatusGeneratingPDF      Status = "generating_pdf"
	StatusSending            Status = "sending"
	StatusCompleted          Status = "completed"
	StatusFailed             Status = "failed"
)

// ItemInput línea de detalle tal como llega del sistema origen. Total se
// respeta como viene; no se deriva de Cantidad x Precio.
type ItemInput struct {
	Nombre   string
	Cantidad decimal.Decimal
	Precio   decimal.Decimal
	Total    decimal.Decimal
}

// GenerateInput solicitud de generación de un documento tributario.
type GenerateInput struct {
	DoctorID            string
	TipoDTE             sii.DTEType
	RUTReceptor         string
	RazonSocialReceptor string
	DireccionReceptor   string
	ComunaReceptor      string
	Items               []ItemInput
}

// WorkflowState estado mutable único del pipeline. Cada paso acumula sus
// productos (montos, XML, PDF, track id) sin borrar los de pasos anteriores.
type WorkflowState struct {
	Input        GenerateInput
	FechaEmision time.Time

	Folio     int64
	FolioDemo bool // folio aleatorio por almacenamiento no disponible

	MontoNeto  decimal.Decimal
	IVA        decimal.Decimal
	MontoTotal decimal.Decimal

	XMLDTE     []byte
	XMLFirmado []byte
	PDF        []byte

	TrackID   string
	EstadoSII string

	Status Status
	Errors []string
}

// fail registra el error del paso y deja el workflow en estado terminal.
func (s *WorkflowState) fail(msg string) {
	s.Errors = append(s.Errors, msg)
	s.Status = StatusFailed
}

// GenerateResult resultado final expuesto al caller. En caso de fallo solo
// Errors y Status llevan información; no se entrega PDF parcial.
type GenerateResult struct {
	Success      bool
	Status       Status
	Folio        int64
	FolioDemo    bool
	TrackID      string
	EstadoSII    string
	PDF          []byte
	MontoNeto    decimal.Decimal
	IVA          decimal.Decimal
	MontoTotal   decimal.Decimal
	FechaEmision time.Time
	Errors       []string
}
