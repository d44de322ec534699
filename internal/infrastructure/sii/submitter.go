package sii

import (
	"context"
	"fmt"

	"github.com/thecarebot/facturacion-sii/internal/application/billing"
	"github.com/thecarebot/facturacion-sii/internal/domain/dte"
	"github.com/thecarebot/facturacion-sii/pkg/logger"
	pkgsii "github.com/thecarebot/facturacion-sii/pkg/sii"
)

// SimulatedSubmitter simula la recepción del DTE por el SII: acepta siempre y
// confirma el track id del documento (o sintetiza uno si el documento no trae).
// El cliente SOAP real (maullin/palena) se inyecta por billing.Submitter
// cuando el servicio opere con certificado.
type SimulatedSubmitter struct {
	ambiente string
	log      *logger.Logger
}

// NewSimulatedSubmitter crea el cliente simulado.
func NewSimulatedSubmitter(ambiente string, log *logger.Logger) *SimulatedSubmitter {
	return &SimulatedSubmitter{ambiente: ambiente, log: log}
}

// Submit registra el envío y devuelve aceptación inmediata.
func (s *SimulatedSubmitter) Submit(ctx context.Context, signedXML []byte, doc *dte.Documento) (*billing.SubmitResult, error) {
	if len(signedXML) == 0 {
		return nil, fmt.Errorf("sii: no hay XML firmado que enviar")
	}
	trackID := doc.TrackID
	if trackID == "" {
		trackID = billing.NewTrackID()
	}
	s.log.Info().
		Str("ambiente", s.ambiente).
		Str("documento", doc.ID()).
		Str("track_id", trackID).
		Int("bytes", len(signedXML)).
		Msg("envío simulado al SII")
	return &billing.SubmitResult{
		TrackID: trackID,
		Estado:  pkgsii.EstadoAceptado,
		Glosa:   "DTE recibido (envío simulado, ambiente " + s.ambiente + ")",
	}, nil
}

var _ billing.Submitter = (*SimulatedSubmitter)(nil)
