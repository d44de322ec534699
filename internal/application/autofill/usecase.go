package autofill

import (
	"context"
	"fmt"
	"time"

	"github.com/thecarebot/facturacion-sii/internal/domain/repository"
	"github.com/thecarebot/facturacion-sii/pkg/logger"
)

// MinPatternsForAI historial mínimo para habilitar el predictor con IA.
// Con menos patrones el modelo no tiene señal suficiente y la heurística
// determinista rinde igual o mejor.
const MinPatternsForAI = 5

// Estrategias reportadas en la respuesta.
const (
	StrategyFrecuencia = "frecuencia"
	StrategyAI         = "ai"
)

// UseCase orquesta predicción y registro de patrones de autocompletado.
type UseCase struct {
	patterns repository.PatternRepository // nil en modo demo
	ai       Predictor                    // nil si no hay API key configurada
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso. patterns y ai pueden ser nil.
func NewUseCase(patterns repository.PatternRepository, ai Predictor, log *logger.Logger) *UseCase {
	return &UseCase{patterns: patterns, ai: ai, log: log, now: time.Now}
}

// PredictResult predicciones más la estrategia que las produjo.
type PredictResult struct {
	Predictions []Prediction
	Strategy    string
}

// Predict devuelve sugerencias para el campo dado. La estrategia con IA se usa
// solo si está configurada y el doctor tiene historial suficiente; si la
// estrategia elegida falla, el fallo se reporta sin degradar a la otra.
func (u *UseCase) Predict(ctx context.Context, doctorID, campo, entrada string, contexto map[string]string) (*PredictResult, error) {
	contexto = EnrichContext(contexto, u.now())

	if u.patterns == nil {
		// Modo demo: sin historial no hay nada que sugerir.
		return &PredictResult{Predictions: nil, Strategy: StrategyFrecuencia}, nil
	}

	if u.aiReady(ctx, doctorID) {
		preds, err := u.ai.Predict(ctx, doctorID, campo, entrada, contexto)
		if err != nil {
			return nil, fmt.Errorf("predictor IA: %w", err)
		}
		return &PredictResult{Predictions: preds, Strategy: StrategyAI}, nil
	}

	patterns, err := u.patterns.ListByDoctorAndField(ctx, doctorID, campo)
	if err != nil {
		return nil, fmt.Errorf("consultando patrones: %w", err)
	}
	return &PredictResult{
		Predictions: Score(patterns, entrada, contexto),
		Strategy:    StrategyFrecuencia,
	}, nil
}

// RecordSelection registra que el doctor usó un valor en un campo, con el
// contexto enriquecido del momento de la selección.
func (u *UseCase) RecordSelection(ctx context.Context, doctorID, campo, valor string, contexto map[string]string) error {
	if u.patterns == nil {
		return nil
	}
	contexto = EnrichContext(contexto, u.now())
	if err := u.patterns.IncrementUsage(ctx, doctorID, campo, valor, contexto); err != nil {
		return fmt.Errorf("registrando selección: %w", err)
	}
	return nil
}

// aiReady predicado de preparación de la estrategia con IA: requiere el
// predictor configurado y al menos MinPatternsForAI patrones del doctor.
func (u *UseCase) aiReady(ctx context.Context, doctorID string) bool {
	if u.ai == nil {
		return false
	}
	count, err := u.patterns.CountByDoctor(ctx, doctorID)
	if err != nil {
		u.log.Warn().Err(err).Msg("no se pudo contar patrones, usando estrategia determinista")
		return false
	}
	return count >= MinPatternsForAI
}
