package dte

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalcularTotales(t *testing.T) {
	t.Run("una línea con montos enteros", func(t *testing.T) {
		items := []Item{
			{Nombre: "Limpieza dental", Cantidad: d("1"), Precio: d("35000"), Total: d("35000")},
		}
		neto, iva, total := CalcularTotales(items, TasaIVADefault)
		assert.True(t, d("35000").Equal(neto), "neto debe ser la suma de líneas, se obtuvo %s", neto)
		assert.True(t, d("6650").Equal(iva), "IVA debe ser el 19%% del neto, se obtuvo %s", iva)
		assert.True(t, d("41650").Equal(total), "total debe ser neto+IVA, se obtuvo %s", total)
	})

	t.Run("varias líneas suman el neto", func(t *testing.T) {
		items := []Item{
			{Nombre: "Consulta", Cantidad: d("1"), Precio: d("25000"), Total: d("25000")},
			{Nombre: "Radiografía", Cantidad: d("2"), Precio: d("12000"), Total: d("24000")},
		}
		neto, iva, total := CalcularTotales(items, TasaIVADefault)
		assert.True(t, d("49000").Equal(neto))
		assert.True(t, d("9310").Equal(iva))
		assert.True(t, d("58310").Equal(total))
	})

	t.Run("IVA se redondea a 2 decimales", func(t *testing.T) {
		items := []Item{{Nombre: "Servicio", Cantidad: d("1"), Precio: d("100.33"), Total: d("100.33")}}
		_, iva, _ := CalcularTotales(items, TasaIVADefault)
		// 100.33 * 0.19 = 19.0627 -> 19.06
		assert.True(t, d("19.06").Equal(iva), "se esperaba 19.06, se obtuvo %s", iva)
	})

	t.Run("el total de línea se respeta aunque no sea cantidad por precio", func(t *testing.T) {
		items := []Item{{Nombre: "Plan con descuento", Cantidad: d("2"), Precio: d("10000"), Total: d("18000")}}
		neto, _, _ := CalcularTotales(items, TasaIVADefault)
		assert.True(t, d("18000").Equal(neto))
	})

	t.Run("sin líneas todo queda en cero", func(t *testing.T) {
		neto, iva, total := CalcularTotales(nil, TasaIVADefault)
		assert.True(t, neto.IsZero())
		assert.True(t, iva.IsZero())
		assert.True(t, total.IsZero())
	})
}

func TestDocumentoID(t *testing.T) {
	doc := &Documento{Tipo: 39, Folio: 12345}
	assert.Equal(t, "DTE-39-12345", doc.ID())
}
