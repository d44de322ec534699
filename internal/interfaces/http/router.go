package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/thecarebot/facturacion-sii/internal/application/autofill"
	"github.com/thecarebot/facturacion-sii/internal/application/billing"
	"github.com/thecarebot/facturacion-sii/internal/application/dto"
	"github.com/thecarebot/facturacion-sii/internal/domain/repository"
)

// RouterDeps dependencias para el router. Documents es nil en modo demo.
type RouterDeps struct {
	InvoiceWorkflow *billing.InvoiceWorkflow
	AutofillUC      *autofill.UseCase
	Documents       repository.TaxDocumentRepository
	JWTSecret       string
	Persistente     bool
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Health (público)
	app.Get("/health", func(c *fiber.Ctx) error {
		modo := "demo"
		if deps.Persistente {
			modo = "persistente"
		}
		return c.JSON(dto.HealthResponse{
			Status:   "ok",
			Servicio: "facturacion-sii",
			Modo:     modo,
		})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Invoices (protegido)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceWorkflow, deps.Documents)
	invoices.Post("/generate", invoiceHandler.Generate)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)

	// Autofill (protegido)
	autofillGroup := protected.Group("/autofill")
	autofillHandler := NewAutofillHandler(deps.AutofillUC)
	autofillGroup.Post("/predict", autofillHandler.Predict)
	autofillGroup.Post("/select", autofillHandler.Select)
}
