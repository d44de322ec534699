package http

import (
	"encoding/base64"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/thecarebot/facturacion-sii/internal/application/billing"
	"github.com/thecarebot/facturacion-sii/internal/application/dto"
	"github.com/thecarebot/facturacion-sii/internal/domain"
	"github.com/thecarebot/facturacion-sii/internal/domain/entity"
	"github.com/thecarebot/facturacion-sii/internal/domain/repository"
	"github.com/thecarebot/facturacion-sii/pkg/sii"
)

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
// docs puede ser nil (modo demo sin persistencia): las consultas de documentos
// responden 503 y la emisión sigue operando.
type InvoiceHandler struct {
	workflow *billing.InvoiceWorkflow
	docs     repository.TaxDocumentRepository
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(workflow *billing.InvoiceWorkflow, docs repository.TaxDocumentRepository) *InvoiceHandler {
	return &InvoiceHandler{workflow: workflow, docs: docs}
}

// Generate ejecuta el flujo completo de emisión: folio, validación, XML,
// firma, PDF y envío.
// POST /api/invoices/generate
func (h *InvoiceHandler) Generate(c *fiber.Ctx) error {
	doctorID := GetDoctorID(c)
	if doctorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.GenerateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	items := make([]billing.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, billing.ItemInput{
			Nombre:   it.Nombre,
			Cantidad: it.Cantidad,
			Precio:   it.Precio,
			Total:    it.Total,
		})
	}
	res := h.workflow.Generate(c.Context(), billing.GenerateInput{
		DoctorID:            doctorID,
		TipoDTE:             sii.DTEType(in.TipoDTE),
		RUTReceptor:         in.RUTReceptor,
		RazonSocialReceptor: in.RazonSocialReceptor,
		DireccionReceptor:   in.Direccion,
		ComunaReceptor:      in.Comuna,
		Items:               items,
	})

	out := dto.GenerateInvoiceResponse{
		Success:      res.Success,
		Estado:       string(res.Status),
		Folio:        res.Folio,
		FolioDemo:    res.FolioDemo,
		TrackID:      res.TrackID,
		EstadoSII:    res.EstadoSII,
		MontoNeto:    res.MontoNeto,
		IVA:          res.IVA,
		MontoTotal:   res.MontoTotal,
		FechaEmision: res.FechaEmision,
		Errores:      res.Errors,
	}
	if len(res.PDF) > 0 {
		out.PDFBase64 = base64.StdEncoding.EncodeToString(res.PDF)
	}
	if !res.Success {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List devuelve los documentos emitidos por el doctor, más recientes primero.
// GET /api/invoices?limit=20
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	doctorID := GetDoctorID(c)
	if doctorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if h.docs == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NO_PERSISTENCE", Message: "servicio en modo demo: no hay documentos persistidos"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de paginación inválidos"})
	}
	page.DefaultPage()

	docs, err := h.docs.ListByDoctor(c.Context(), doctorID, page.Limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.TaxDocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentResponse(d))
	}
	return c.JSON(dto.ListInvoicesResponse{Documentos: out, Limit: page.Limit})
}

// GetByID devuelve un documento emitido.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	doctorID := GetDoctorID(c)
	if doctorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if h.docs == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NO_PERSISTENCE", Message: "servicio en modo demo: no hay documentos persistidos"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	doc, err := h.docs.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "documento no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if doc.DoctorID != doctorID {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al documento"})
	}
	return c.JSON(documentResponse(doc))
}

func documentResponse(d *entity.TaxDocument) dto.TaxDocumentResponse {
	return dto.TaxDocumentResponse{
		ID:                  d.ID,
		TipoDTE:             int(d.TipoDTE),
		Folio:               d.Folio,
		FolioDemo:           d.FolioDemo,
		RUTReceptor:         d.RUTReceptor,
		RazonSocialReceptor: d.RazonSocialReceptor,
		MontoNeto:           d.MontoNeto,
		IVA:                 d.IVA,
		MontoTotal:          d.MontoTotal,
		EstadoSII:           d.EstadoSII,
		TrackID:             d.TrackID,
		FechaEmision:        d.FechaEmision,
	}
}
