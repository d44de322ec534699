package billing

import (
	"fmt"
	"strings"
)

// minRUTLength largo mínimo aceptado para un RUT con dígito verificador.
// La validación estricta de módulo 11 vive en pkg/sii; aquí solo se exige un
// largo plausible para no rechazar RUT extranjeros o provisorios.
const minRUTLength = 9

// ValidarDatos revisa la solicitud completa y devuelve todas las violaciones
// encontradas, no solo la primera. Lista vacía significa datos válidos.
func ValidarDatos(in GenerateInput) []string {
	var errs []string

	if !in.TipoDTE.IsValid() {
		errs = append(errs, fmt.Sprintf("tipo de DTE no soportado: %d", in.TipoDTE))
	}

	rut := strings.TrimSpace(in.RUTReceptor)
	if len(rut) < minRUTLength {
		errs = append(errs, "RUT del receptor inválido")
	}

	if len(in.Items) == 0 {
		errs = append(errs, "el documento no tiene líneas de detalle")
	}

	for i, it := range in.Items {
		if !it.Cantidad.IsPositive() {
			errs = append(errs, fmt.Sprintf("cantidad inválida en la línea %d", i+1))
		}
		if !it.Precio.IsPositive() {
			errs = append(errs, fmt.Sprintf("precio inválido en la línea %d", i+1))
		}
	}

	return errs
}
