// Package autofill implementa la predicción de valores para campos de
// formularios clínicos a partir del historial de uso de cada doctor.
package autofill

import (
	"math"
	"sort"
	"strings"

	"github.com/thecarebot/facturacion-sii/internal/domain/entity"
	"github.com/xrash/smetrics"
)

// Pesos del puntaje combinado.
const (
	pesoFrecuencia = 0.4
	pesoContexto   = 0.3
	pesoSimilitud  = 0.3
)

// UmbralConfianza puntaje mínimo para que una sugerencia se muestre.
const UmbralConfianza = 0.6

// MaxSugerencias cantidad máxima de sugerencias devueltas.
const MaxSugerencias = 5

// contextKeys claves de contexto comparables entre el momento de la predicción
// y el momento en que el patrón se registró.
var contextKeys = []string{"day_of_week", "tipo_consulta", "period_of_day"}

// Prediction una sugerencia puntuada para un campo.
type Prediction struct {
	Valor      string  `json:"valor"`
	Confianza  float64 `json:"confianza"`
	Frecuencia int     `json:"frecuencia"`
}

// Score puntúa los patrones contra la entrada parcial y el contexto actual y
// devuelve hasta MaxSugerencias sugerencias con confianza >= UmbralConfianza,
// ordenadas por confianza descendente (orden estable: los empates conservan
// el orden de llegada).
func Score(patterns []*entity.AutofillPattern, entrada string, contexto map[string]string) []Prediction {
	if len(patterns) == 0 {
		return nil
	}

	maxFreq := 0
	for _, p := range patterns {
		if p.Frecuencia > maxFreq {
			maxFreq = p.Frecuencia
		}
	}
	if maxFreq == 0 {
		return nil
	}

	var out []Prediction
	for _, p := range patterns {
		freqScore := float64(p.Frecuencia) / float64(maxFreq)
		ctxScore := contextMatch(contexto, p.Contexto)
		simScore := similarity(entrada, p.Valor)

		conf := pesoFrecuencia*freqScore + pesoContexto*ctxScore + pesoSimilitud*simScore
		conf = math.Round(conf*100) / 100
		if conf < UmbralConfianza {
			continue
		}
		out = append(out, Prediction{Valor: p.Valor, Confianza: conf, Frecuencia: p.Frecuencia})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Confianza > out[j].Confianza })
	if len(out) > MaxSugerencias {
		out = out[:MaxSugerencias]
	}
	return out
}

// contextMatch proporción de claves comparables que coinciden entre ambos
// contextos. Sin claves comparables devuelve 0.5 (neutral).
func contextMatch(actual, registrado map[string]string) float64 {
	comparable, matches := 0, 0
	for _, k := range contextKeys {
		a, okA := actual[k]
		r, okR := registrado[k]
		if !okA || !okR {
			continue
		}
		comparable++
		if a == r {
			matches++
		}
	}
	if comparable == 0 {
		return 0.5
	}
	return float64(matches) / float64(comparable)
}

// similarity similitud normalizada entre la entrada parcial y el valor del
// patrón. Entrada vacía puntúa 1.0 (sin texto todo valor es candidato).
func similarity(entrada, valor string) float64 {
	entrada = strings.ToLower(strings.TrimSpace(entrada))
	valor = strings.ToLower(strings.TrimSpace(valor))
	if entrada == "" {
		return 1.0
	}
	if entrada == valor {
		return 1.0
	}
	dist := smetrics.WagnerFischer(entrada, valor, 1, 1, 2)
	total := len(entrada) + len(valor)
	if total == 0 {
		return 1.0
	}
	sim := 1.0 - float64(dist)/float64(total)
	if sim < 0 {
		return 0
	}
	return sim
}
