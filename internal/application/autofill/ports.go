package autofill

import "context"

// Predictor estrategia de predicción de valores para un campo. Hay dos
// implementaciones: el scorer determinista sobre el historial (este paquete)
// y el predictor con IA (internal/infrastructure/ai). La estrategia se elige
// por predicado de preparación, nunca atrapando errores de la otra.
type Predictor interface {
	Predict(ctx context.Context, doctorID, campo, entrada string, contexto map[string]string) ([]Prediction, error)
}
