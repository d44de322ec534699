package dto

import "github.com/thecarebot/facturacion-sii/internal/application/autofill"

// PredictRequest solicitud de sugerencias para un campo.
type PredictRequest struct {
	Campo    string            `json:"campo"`
	Entrada  string            `json:"entrada"`
	Contexto map[string]string `json:"contexto,omitempty"`
}

// PredictResponse sugerencias y la estrategia que las produjo.
type PredictResponse struct {
	Estrategia   string                `json:"estrategia"`
	Predicciones []autofill.Prediction `json:"predicciones"`
}

// SelectRequest registro de un valor seleccionado por el doctor.
type SelectRequest struct {
	Campo    string            `json:"campo"`
	Valor    string            `json:"valor"`
	Contexto map[string]string `json:"contexto,omitempty"`
}

// SelectResponse confirmación del registro.
type SelectResponse struct {
	Registrado bool `json:"registrado"`
}
