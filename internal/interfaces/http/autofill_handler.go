package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/thecarebot/facturacion-sii/internal/application/autofill"
	"github.com/thecarebot/facturacion-sii/internal/application/dto"
)

// AutofillHandler maneja las peticiones de autocompletado (protegido).
type AutofillHandler struct {
	uc *autofill.UseCase
}

// NewAutofillHandler construye el handler.
func NewAutofillHandler(uc *autofill.UseCase) *AutofillHandler {
	return &AutofillHandler{uc: uc}
}

// Predict devuelve sugerencias para un campo según el historial del doctor.
// POST /api/autofill/predict
func (h *AutofillHandler) Predict(c *fiber.Ctx) error {
	doctorID := GetDoctorID(c)
	if doctorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.PredictRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Campo == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "campo requerido"})
	}
	res, err := h.uc.Predict(c.Context(), doctorID, in.Campo, in.Entrada, in.Contexto)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	predicciones := res.Predictions
	if predicciones == nil {
		predicciones = []autofill.Prediction{}
	}
	return c.JSON(dto.PredictResponse{
		Estrategia:   res.Strategy,
		Predicciones: predicciones,
	})
}

// Select registra el valor que el doctor eligió para retroalimentar el
// historial de patrones.
// POST /api/autofill/select
func (h *AutofillHandler) Select(c *fiber.Ctx) error {
	doctorID := GetDoctorID(c)
	if doctorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SelectRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Campo == "" || in.Valor == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "campo y valor requeridos"})
	}
	if err := h.uc.RecordSelection(c.Context(), doctorID, in.Campo, in.Valor, in.Contexto); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.SelectResponse{Registrado: true})
}
