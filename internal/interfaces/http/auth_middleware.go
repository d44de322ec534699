package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/thecarebot/facturacion-sii/internal/application/dto"
	"github.com/thecarebot/facturacion-sii/pkg/jwt"
)

// Locals keys para DoctorID y ClinicaID en Fiber.
const (
	LocalDoctorID  = "doctor_id"
	LocalClinicaID = "clinica_id"
)

// AuthMiddleware valida el Bearer Token JWT y extrae DoctorID y ClinicaID a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		doctorID, clinicaID, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalDoctorID, doctorID)
		c.Locals(LocalClinicaID, clinicaID)
		return c.Next()
	}
}

// GetDoctorID devuelve el DoctorID del contexto (después del middleware de auth).
func GetDoctorID(c *fiber.Ctx) string {
	v := c.Locals(LocalDoctorID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetClinicaID devuelve el ClinicaID del contexto (después del middleware de auth).
func GetClinicaID(c *fiber.Ctx) string {
	v := c.Locals(LocalClinicaID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
