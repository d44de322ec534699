package sii

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/thecarebot/facturacion-sii/internal/domain/dte"
	pkgsii "github.com/thecarebot/facturacion-sii/pkg/sii"
)

func testDocumento() *dte.Documento {
	return &dte.Documento{
		Tipo:         pkgsii.DTEBoletaElectronica,
		Folio:        101,
		FechaEmision: time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
		Emisor: dte.Emisor{
			RUT:                "76.123.456-0",
			RazonSocial:        "Clínica Dental Demo SpA",
			Giro:               "Servicios Odontológicos",
			ActividadEconomica: "869090",
			Direccion:          "Av. Providencia 1234",
			Comuna:             "Providencia",
		},
		Receptor: dte.Receptor{
			RUT:         "12.345.678-5",
			RazonSocial: "Juan Pérez",
		},
		Items: []dte.Item{
			{Nombre: "Limpieza dental", Cantidad: decimal.NewFromInt(1), Precio: decimal.NewFromInt(35000), Total: decimal.NewFromInt(35000)},
			{Nombre: "Radiografía", Cantidad: decimal.NewFromInt(2), Precio: decimal.NewFromInt(12000), Total: decimal.NewFromInt(24000)},
		},
		MontoNeto:  decimal.NewFromInt(59000),
		IVA:        decimal.RequireFromString("11210"),
		MontoTotal: decimal.NewFromInt(70210),
	}
}

// decodeLatin1 vuelve el XML a UTF-8 para poder inspeccionarlo como string.
func decodeLatin1(t *testing.T, data []byte) string {
	t.Helper()
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	require.NoError(t, err)
	return string(out)
}

func TestRender_EstructuraDTE(t *testing.T) {
	xmlBytes, err := NewXMLBuilder().Render(testDocumento())
	require.NoError(t, err)

	s := decodeLatin1(t, xmlBytes)

	assert.True(t, strings.HasPrefix(s, `<?xml version="1.0" encoding="ISO-8859-1"?>`),
		"la declaración debe anunciar ISO-8859-1")
	assert.Contains(t, s, `<Documento ID="DTE-39-101">`)
	assert.Contains(t, s, "<TipoDTE>39</TipoDTE>")
	assert.Contains(t, s, "<Folio>101</Folio>")
	assert.Contains(t, s, "<FchEmis>2026-09-01</FchEmis>")
	assert.Contains(t, s, "<RUTEmisor>76123456-0</RUTEmisor>", "el RUT va sin puntos")
	assert.Contains(t, s, "<RUTRecep>12345678-5</RUTRecep>")
	assert.Contains(t, s, "<Acteco>869090</Acteco>")
}

func TestRender_TotalesEnteros(t *testing.T) {
	doc := testDocumento()
	// montos con decimales: el XML los trunca a entero
	doc.MontoNeto = decimal.RequireFromString("59000.75")
	doc.IVA = decimal.RequireFromString("11210.14")
	doc.MontoTotal = decimal.RequireFromString("70210.89")

	xmlBytes, err := NewXMLBuilder().Render(doc)
	require.NoError(t, err)
	s := decodeLatin1(t, xmlBytes)

	assert.Contains(t, s, "<MntNeto>59000</MntNeto>")
	assert.Contains(t, s, "<TasaIVA>19</TasaIVA>")
	assert.Contains(t, s, "<IVA>11210</IVA>")
	assert.Contains(t, s, "<MntTotal>70210</MntTotal>")
}

func TestRender_DetalleNumeradoDesdeUno(t *testing.T) {
	xmlBytes, err := NewXMLBuilder().Render(testDocumento())
	require.NoError(t, err)
	s := decodeLatin1(t, xmlBytes)

	assert.Contains(t, s, "<NroLinDet>1</NroLinDet>")
	assert.Contains(t, s, "<NroLinDet>2</NroLinDet>")
	assert.Contains(t, s, "<NmbItem>Limpieza dental</NmbItem>")
	assert.Contains(t, s, "<QtyItem>2</QtyItem>")
	assert.Contains(t, s, "<PrcItem>12000</PrcItem>")
	assert.Contains(t, s, "<MontoItem>24000</MontoItem>")
}

func TestRender_AcentosEnLatin1(t *testing.T) {
	xmlBytes, err := NewXMLBuilder().Render(testDocumento())
	require.NoError(t, err)

	// "Pérez": la é debe quedar como un solo byte 0xE9, no como UTF-8.
	assert.Contains(t, string(xmlBytes), "P\xe9rez")

	s := decodeLatin1(t, xmlBytes)
	assert.Contains(t, s, "Juan Pérez")
	assert.Contains(t, s, "Radiografía")
}

func TestRender_TipoInvalido(t *testing.T) {
	doc := testDocumento()
	doc.Tipo = 99
	_, err := NewXMLBuilder().Render(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tipo de DTE no soportado")
}
