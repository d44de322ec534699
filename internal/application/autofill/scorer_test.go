package autofill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thecarebot/facturacion-sii/internal/domain/entity"
)

func pat(valor string, freq int, ctx map[string]string) *entity.AutofillPattern {
	return &entity.AutofillPattern{
		DoctorID:   "doctor-1",
		Campo:      "tratamiento",
		Valor:      valor,
		Frecuencia: freq,
		Contexto:   ctx,
	}
}

func TestScore_PuntajeMaximo(t *testing.T) {
	ctx := map[string]string{"day_of_week": "0", "tipo_consulta": "control", "period_of_day": "morning"}
	patterns := []*entity.AutofillPattern{pat("Limpieza dental", 10, ctx)}

	preds := Score(patterns, "limpieza dental", ctx)

	require.Len(t, preds, 1)
	assert.Equal(t, "Limpieza dental", preds[0].Valor)
	assert.Equal(t, 1.0, preds[0].Confianza,
		"frecuencia máxima + contexto exacto + texto exacto debe puntuar 1.0")
	assert.Equal(t, 10, preds[0].Frecuencia)
}

func TestScore_EntradaVaciaPuntuaSimilitudCompleta(t *testing.T) {
	ctx := map[string]string{"day_of_week": "2"}
	preds := Score([]*entity.AutofillPattern{pat("Destartraje", 5, ctx)}, "", ctx)

	require.Len(t, preds, 1)
	assert.Equal(t, 1.0, preds[0].Confianza)
}

func TestScore_ContextoSinClavesComparablesEsNeutral(t *testing.T) {
	// Patrón sin contexto registrado: el componente de contexto vale 0.5.
	preds := Score([]*entity.AutofillPattern{pat("Consulta", 8, nil)}, "", map[string]string{"day_of_week": "1"})

	require.Len(t, preds, 1)
	// 0.4*1.0 + 0.3*0.5 + 0.3*1.0 = 0.85
	assert.Equal(t, 0.85, preds[0].Confianza)
}

func TestScore_ContextoParcial(t *testing.T) {
	registrado := map[string]string{"day_of_week": "0", "period_of_day": "morning"}
	actual := map[string]string{"day_of_week": "0", "period_of_day": "evening"}

	preds := Score([]*entity.AutofillPattern{pat("Control", 4, registrado)}, "", actual)

	require.Len(t, preds, 1)
	// contexto: 1 de 2 claves comparables -> 0.5; 0.4 + 0.15 + 0.3 = 0.85
	assert.Equal(t, 0.85, preds[0].Confianza)
}

func TestScore_FiltraBajoElUmbral(t *testing.T) {
	ctx := map[string]string{"day_of_week": "0"}
	otro := map[string]string{"day_of_week": "5"}
	patterns := []*entity.AutofillPattern{
		pat("Limpieza dental", 10, ctx),
		// freq 1/10 = 0.04, contexto 0 y texto lejano: queda fuera
		pat("Radiografía panorámica", 1, otro),
	}

	preds := Score(patterns, "limpieza", ctx)

	require.Len(t, preds, 1)
	assert.Equal(t, "Limpieza dental", preds[0].Valor)
}

func TestScore_DevuelveMaximoCincoOrdenadas(t *testing.T) {
	ctx := map[string]string{"day_of_week": "3"}
	patterns := []*entity.AutofillPattern{
		pat("A", 10, ctx), pat("B", 9, ctx), pat("C", 8, ctx),
		pat("D", 7, ctx), pat("E", 6, ctx), pat("F", 5, ctx), pat("G", 4, ctx),
	}

	preds := Score(patterns, "", ctx)

	require.Len(t, preds, MaxSugerencias)
	for i := 1; i < len(preds); i++ {
		assert.GreaterOrEqual(t, preds[i-1].Confianza, preds[i].Confianza,
			"las sugerencias deben venir ordenadas por confianza")
	}
	assert.Equal(t, "A", preds[0].Valor)
}

func TestScore_EmpatesConservanOrdenDeLlegada(t *testing.T) {
	ctx := map[string]string{"day_of_week": "3"}
	patterns := []*entity.AutofillPattern{
		pat("Primero", 5, ctx),
		pat("Segundo", 5, ctx),
	}

	preds := Score(patterns, "", ctx)

	require.Len(t, preds, 2)
	assert.Equal(t, "Primero", preds[0].Valor)
	assert.Equal(t, "Segundo", preds[1].Valor)
}

func TestScore_SinPatrones(t *testing.T) {
	assert.Empty(t, Score(nil, "algo", nil))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("", "cualquier cosa"))
	assert.Equal(t, 1.0, similarity("Limpieza", "limpieza"), "la comparación ignora mayúsculas")
	assert.InDelta(t, 0.3333, similarity("lim", "limpieza dental"), 0.001)
	assert.Less(t, similarity("xyz", "limpieza"), 0.5)
}
