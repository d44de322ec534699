// Package ai implementa el predictor de autocompletado respaldado por Claude.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/thecarebot/facturacion-sii/internal/application/autofill"
	"github.com/thecarebot/facturacion-sii/internal/domain/repository"
)

// Verificar en tiempo de compilación que AnthropicPredictor implementa Predictor.
var _ autofill.Predictor = (*AnthropicPredictor)(nil)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"

	anthropicSystemPrompt = `Eres un asistente de autocompletado para fichas clínicas odontológicas en Chile.
Recibes el historial de valores que el doctor ha usado en un campo, la entrada parcial actual y el contexto.
Devuelve ÚNICAMENTE un objeto JSON válido (sin markdown, sin bloques de código` + " ```json" + `) con esta estructura exacta:
{
  "predicciones": [
    {"valor": "<texto sugerido>", "confianza": <decimal entre 0.0 y 1.0>}
  ]
}

Reglas:
- Máximo 5 predicciones, ordenadas de mayor a menor confianza.
- Solo sugiere valores coherentes con el historial entregado; no inventes tratamientos.
- confianza: 0.9–1.0 = coincidencia clara con historial y contexto, <0.6 = descartar.
- No incluyas texto fuera del JSON. Solo el objeto JSON.`
)

// AnthropicPredictor implementa autofill.Predictor usando la API REST de
// Anthropic (Claude). Usa net/http de la librería estándar; no requiere el
// SDK oficial.
type AnthropicPredictor struct {
	apiKey     string
	model      string
	patterns   repository.PatternRepository
	httpClient *http.Client
}

// NewAnthropicPredictor construye el adaptador.
// model suele ser "claude-3-5-haiku-20241022".
// Si apiKey está vacío las llamadas devuelven error descriptivo en lugar de panic.
func NewAnthropicPredictor(apiKey, model string, patterns repository.PatternRepository) *AnthropicPredictor {
	return &AnthropicPredictor{
		apiKey:   apiKey,
		model:    model,
		patterns: patterns,
		httpClient: &http.Client{
			// Timeout de red de 25 s; el caller impone además su propio context.
			Timeout: 25 * time.Second,
		},
	}
}

// ── Estructuras internas del protocolo Anthropic Messages API ─────────────────

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type predictionsPayload struct {
	Predicciones []struct {
		Valor     string  `json:"valor"`
		Confianza float64 `json:"confianza"`
	} `json:"predicciones"`
}

// jsonBlockRe extrae el primer objeto JSON del texto aunque Claude lo envuelva en markdown.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// ── Implementación del puerto ─────────────────────────────────────────────────

// Predict envía el historial del campo y la entrada parcial a Claude y
// devuelve las sugerencias puntuadas.
func (p *AnthropicPredictor) Predict(ctx context.Context, doctorID, campo, entrada string, contexto map[string]string) ([]autofill.Prediction, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("AI: ANTHROPIC_API_KEY no configurado")
	}

	historial, err := p.patterns.ListByDoctorAndField(ctx, doctorID, campo)
	if err != nil {
		return nil, fmt.Errorf("AI: consultando historial: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Campo: %s\nEntrada parcial: %q\nContexto: %v\nHistorial (valor, frecuencia):\n", campo, entrada, contexto)
	for _, h := range historial {
		fmt.Fprintf(&sb, "- %q x%d\n", h.Valor, h.Frecuencia)
	}

	payload := anthropicRequest{
		Model:     p.model,
		MaxTokens: 1024,
		System:    anthropicSystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: sb.String()},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("AI: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("AI: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("AI: leer respuesta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp anthropicResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return nil, fmt.Errorf("AI: Anthropic error (%s): %s", errResp.Error.Type, errResp.Error.Message)
		}
		return nil, fmt.Errorf("AI: Anthropic HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	var anthResp anthropicResponse
	if err := json.Unmarshal(rawBody, &anthResp); err != nil {
		return nil, fmt.Errorf("AI: deserializar respuesta Anthropic: %w", err)
	}
	if len(anthResp.Content) == 0 {
		return nil, fmt.Errorf("AI: Claude devolvió respuesta vacía")
	}

	rawText := anthResp.Content[0].Text
	cleanJSON := extractJSON(rawText)
	if cleanJSON == "" {
		return nil, fmt.Errorf("AI: no se encontró JSON válido en la respuesta del modelo (respuesta: %s)", rawText)
	}

	var parsed predictionsPayload
	if err := json.Unmarshal([]byte(cleanJSON), &parsed); err != nil {
		return nil, fmt.Errorf("AI: parsear JSON de predicciones: %w (JSON extraído: %s)", err, cleanJSON)
	}

	freqPorValor := make(map[string]int, len(historial))
	for _, h := range historial {
		freqPorValor[h.Valor] = h.Frecuencia
	}

	out := make([]autofill.Prediction, 0, len(parsed.Predicciones))
	for _, pr := range parsed.Predicciones {
		conf := pr.Confianza
		if conf < 0 {
			conf = 0
		} else if conf > 1 {
			conf = 1
		}
		if conf < autofill.UmbralConfianza {
			continue
		}
		out = append(out, autofill.Prediction{
			Valor:      pr.Valor,
			Confianza:  conf,
			Frecuencia: freqPorValor[pr.Valor],
		})
		if len(out) == autofill.MaxSugerencias {
			break
		}
	}
	return out, nil
}

// extractJSON extrae el primer objeto JSON bien formado de un texto libre.
// Estrategia en dos pasos:
//  1. Eliminar bloques de código markdown (```json … ``` o ``` … ```).
//  2. Usar regex para capturar el primer bloque { … }.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if close := strings.LastIndex(after, "```"); close != -1 {
			after = after[:close]
		}
		text = strings.TrimSpace(after)
	}

	if strings.HasPrefix(text, "{") {
		return text
	}

	match := jsonBlockRe.FindString(text)
	return strings.TrimSpace(match)
}
