package billing

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/thecarebot/facturacion-sii/internal/domain"
	"github.com/thecarebot/facturacion-sii/internal/domain/dte"
	"github.com/thecarebot/facturacion-sii/internal/domain/entity"
	"github.com/thecarebot/facturacion-sii/internal/domain/repository"
	"github.com/thecarebot/facturacion-sii/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Banda de folios demo cuando el almacenamiento no está disponible.
const (
	demoFolioMin = 100000
	demoFolioMax = 999999
)

// InvoiceWorkflow orquesta el ciclo completo de emisión de un DTE:
//
//	folio → validación → XML → firma → PDF → envío SII → persistencia
//
// Los pasos corren en orden fijo sobre un único estado mutable; el primer
// fallo registra el error, deja el estado en failed y corta el pipeline.
// Un fallo posterior a la asignación de folio NO devuelve el folio al rango:
// el folio queda consumido (limitación conocida, los rangos CAF son baratos).
type InvoiceWorkflow struct {
	allocator *FolioAllocator
	renderer  DTERenderer
	signer    DTESigner
	pdfGen    PDFGenerator
	submitter Submitter

	docRepo repository.TaxDocumentRepository // nil en modo demo
	logRepo repository.OperationLogRepository

	emisor  dte.Emisor
	tasaIVA decimal.Decimal
	log     *logger.Logger
}

// NewInvoiceWorkflow construye el workflow con todas sus dependencias.
// docRepo y logRepo pueden ser nil (modo demo sin persistencia).
func NewInvoiceWorkflow(
	allocator *FolioAllocator,
	renderer DTERenderer,
	signer DTESigner,
	pdfGen PDFGenerator,
	submitter Submitter,
	docRepo repository.TaxDocumentRepository,
	logRepo repository.OperationLogRepository,
	emisor dte.Emisor,
	tasaIVA decimal.Decimal,
	log *logger.Logger,
) *InvoiceWorkflow {
	if tasaIVA.IsZero() {
		tasaIVA = dte.TasaIVADefault
	}
	return &InvoiceWorkflow{
		allocator: allocator,
		renderer:  renderer,
		signer:    signer,
		pdfGen:    pdfGen,
		submitter: submitter,
		docRepo:   docRepo,
		logRepo:   logRepo,
		emisor:    emisor,
		tasaIVA:   tasaIVA,
		log:       log,
	}
}

// Generate ejecuta el pipeline completo y devuelve el resultado final.
func (w *InvoiceWorkflow) Generate(ctx context.Context, in GenerateInput) *GenerateResult {
	inicio := time.Now()
	state := &WorkflowState{
		Input:        in,
		FechaEmision: inicio,
		Status:       StatusPending,
	}

	steps := []struct {
		name string
		run  func(context.Context, *WorkflowState) bool
	}{
		{"asignar_folio", w.assignFolio},
		{"validar_datos", w.validate},
		{"generar_xml", w.renderXML},
		{"firmar_documento", w.sign},
		{"generar_pdf", w.renderPDF},
		{"enviar_sii", w.sendToSII},
	}

	for _, step := range steps {
		if !step.run(ctx, state) {
			w.log.Paso(step.name).Error().
				Str("doctor_id", in.DoctorID).
				Strs("errores", state.Errors).
				Msg("workflow de emisión falló")
			w.audit(ctx, in.DoctorID, step.name, false, state, time.Since(inicio))
			return resultFrom(state)
		}
		w.log.Paso(step.name).Debug().
			Str("estado", string(state.Status)).
			Int64("folio", state.Folio).
			Msg("paso completado")
	}

	w.audit(ctx, in.DoctorID, "emision_completa", true, state, time.Since(inicio))
	return resultFrom(state)
}

// assignFolio reserva el siguiente folio del rango activo. Solo cuando el
// almacenamiento no está disponible se degrada a un folio demo aleatorio;
// sin rango activo o rango agotado son fallos de negocio y cortan el pipeline.
func (w *InvoiceWorkflow) assignFolio(ctx context.Context, s *WorkflowState) bool {
	folio, err := w.allocator.Allocate(ctx, w.emisor.RUT, s.Input.TipoDTE)
	switch {
	case err == nil:
		s.Folio = folio
	case errors.Is(err, domain.ErrStoreUnavailable):
		s.Folio = int64(rand.IntN(demoFolioMax-demoFolioMin+1) + demoFolioMin)
		s.FolioDemo = true
		w.log.Warn().
			Int64("folio", s.Folio).
			Msg("almacenamiento no disponible, usando folio demo")
	default:
		s.fail(fmt.Sprintf("asignación de folio: %v", err))
		return false
	}
	s.Status = StatusValidating
	return true
}

// validate revisa los datos y calcula los montos del documento.
func (w *InvoiceWorkflow) validate(_ context.Context, s *WorkflowState) bool {
	if errs := ValidarDatos(s.Input); len(errs) > 0 {
		s.Errors = append(s.Errors, errs...)
		s.Status = StatusFailed
		return false
	}
	items := itemsFrom(s.Input)
	s.MontoNeto, s.IVA, s.MontoTotal = dte.CalcularTotales(items, w.tasaIVA)
	s.Status = StatusGeneratingDocument
	return true
}

func (w *InvoiceWorkflow) renderXML(_ context.Context, s *WorkflowState) bool {
	xmlBytes, err := w.renderer.Render(w.documento(s))
	if err != nil {
		s.fail(fmt.Sprintf("generación de XML: %v", err))
		return false
	}
	s.XMLDTE = xmlBytes
	s.Status = StatusSigning
	return true
}

func (w *InvoiceWorkflow) sign(_ context.Context, s *WorkflowState) bool {
	signed, err := w.signer.Sign(s.XMLDTE)
	if err != nil {
		s.fail(fmt.Sprintf("firma del documento: %v", err))
		return false
	}
	s.XMLFirmado = signed
	s.Status = StatusGeneratingPDF
	return true
}

// renderPDF sintetiza el track id antes de renderizar para que el timbre
// impreso (QR y pie de página) lo incluya; el envío posterior lo reutiliza.
func (w *InvoiceWorkflow) renderPDF(_ context.Context, s *WorkflowState) bool {
	s.TrackID = NewTrackID()
	pdfBytes, err := w.pdfGen.Generate(w.documento(s))
	if err != nil {
		s.fail(fmt.Sprintf("generación de PDF: %v", err))
		return false
	}
	s.PDF = pdfBytes
	s.Status = StatusSending
	return true
}

// sendToSII envía el DTE firmado (envío simulado) y persiste el documento.
// La persistencia es best-effort: en modo demo se omite y un fallo de escritura
// no revierte la emisión ya aceptada.
func (w *InvoiceWorkflow) sendToSII(ctx context.Context, s *WorkflowState) bool {
	res, err := w.submitter.Submit(ctx, s.XMLFirmado, w.documento(s))
	if err != nil {
		s.fail(fmt.Sprintf("envío al SII: %v", err))
		return false
	}
	if res.TrackID != "" {
		s.TrackID = res.TrackID
	}
	if s.TrackID == "" {
		s.TrackID = NewTrackID()
	}
	s.EstadoSII = res.Estado

	if w.docRepo != nil {
		doc := &entity.TaxDocument{
			ID:                  uuid.New().String(),
			DoctorID:            s.Input.DoctorID,
			TipoDTE:             s.Input.TipoDTE,
			Folio:               s.Folio,
			FolioDemo:           s.FolioDemo,
			RUTReceptor:         s.Input.RUTReceptor,
			RazonSocialReceptor: s.Input.RazonSocialReceptor,
			MontoNeto:           s.MontoNeto,
			IVA:                 s.IVA,
			MontoTotal:          s.MontoTotal,
			EstadoSII:           s.EstadoSII,
			TrackID:             s.TrackID,
			XMLFirmado:          s.XMLFirmado,
			FechaEmision:        s.FechaEmision,
		}
		if err := w.docRepo.Create(ctx, doc); err != nil {
			w.log.Warn().Err(err).Int64("folio", s.Folio).
				Msg("no se pudo persistir el documento emitido")
		}
	}

	s.Status = StatusCompleted
	return true
}

// documento arma el DTE de dominio a partir del estado actual.
func (w *InvoiceWorkflow) documento(s *WorkflowState) *dte.Documento {
	return &dte.Documento{
		Tipo:         s.Input.TipoDTE,
		Folio:        s.Folio,
		FechaEmision: s.FechaEmision,
		Emisor:       w.emisor,
		Receptor: dte.Receptor{
			RUT:         s.Input.RUTReceptor,
			RazonSocial: s.Input.RazonSocialReceptor,
			Direccion:   s.Input.DireccionReceptor,
			Comuna:      s.Input.ComunaReceptor,
		},
		Items:      itemsFrom(s.Input),
		MontoNeto:  s.MontoNeto,
		IVA:        s.IVA,
		MontoTotal: s.MontoTotal,
		TrackID:    s.TrackID,
	}
}

// audit registra la operación en el log de auditoría, best-effort.
func (w *InvoiceWorkflow) audit(ctx context.Context, doctorID, operacion string, exito bool, s *WorkflowState, duracion time.Duration) {
	if w.logRepo == nil {
		return
	}
	log := &entity.OperationLog{
		ID:         uuid.New().String(),
		DoctorID:   doctorID,
		Operacion:  operacion,
		Exito:      exito,
		DuracionMs: duracion.Milliseconds(),
		Detalle: map[string]any{
			"tipo_dte": int(s.Input.TipoDTE),
			"folio":    s.Folio,
			"estado":   string(s.Status),
			"errores":  s.Errors,
		},
	}
	if err := w.logRepo.Create(ctx, log); err != nil {
		w.log.Warn().Err(err).Msg("no se pudo escribir el log de auditoría")
	}
}

func itemsFrom(in GenerateInput) []dte.Item {
	items := make([]dte.Item, len(in.Items))
	for i, it := range in.Items {
		items[i] = dte.Item{
			Nombre:   it.Nombre,
			Cantidad: it.Cantidad,
			Precio:   it.Precio,
			Total:    it.Total,
		}
	}
	return items
}

func resultFrom(s *WorkflowState) *GenerateResult {
	r := &GenerateResult{
		Success:      s.Status == StatusCompleted,
		Status:       s.Status,
		Folio:        s.Folio,
		FolioDemo:    s.FolioDemo,
		TrackID:      s.TrackID,
		EstadoSII:    s.EstadoSII,
		MontoNeto:    s.MontoNeto,
		IVA:          s.IVA,
		MontoTotal:   s.MontoTotal,
		FechaEmision: s.FechaEmision,
		Errors:       s.Errors,
	}
	if r.Success {
		r.PDF = s.PDF
	}
	return r
}

// NewTrackID genera un identificador de seguimiento "TRACK-XXXXXXXX"
// (8 hex mayúsculas derivados de un UUID).
func NewTrackID() string {
	id := uuid.New()
	return fmt.Sprintf("TRACK-%08X", uint32(id[0])<<24|uint32(id[1])<<16|uint32(id[2])<<8|uint32(id[3]))
}
