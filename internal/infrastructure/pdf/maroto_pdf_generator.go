// Package pdf implementa la representación impresa del Documento Tributario
// Electrónico SII.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  EMISOR: Razón Social + Giro │ RECUADRO SII: RUT, tipo, Nº  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Dirección / Comuna / Actividad económica            │
//	│  RECEPTOR: Nombre + RUT                                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Detalle | P.Unit | Monto                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Monto neto / IVA 19% / TOTAL                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TIMBRE: QR de verificación + leyenda SII                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/thecarebot/facturacion-sii/internal/application/billing"
	"github.com/thecarebot/facturacion-sii/internal/domain/dte"
	pkgsii "github.com/thecarebot/facturacion-sii/pkg/sii"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorSIIRed = &props.Color{Red: 180, Green: 30, Blue: 30}
	colorGray   = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// Generate genera el PDF del documento y devuelve sus bytes.
func (g *MarotoPDFGenerator) Generate(doc *dte.Documento) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("pdf: documento nulo")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(doc.Tipo.Name(), true).
		WithAuthor(doc.Emisor.RazonSocial, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorSIIRed, Thickness: 0.5}))
	m.AddRows(emisorRow(doc.Emisor))
	m.AddRows(receptorRow(doc.Receptor))
	m.AddRows(line.NewRow(1, props.Line{Color: colorSIIRed, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(doc.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorSIIRed, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range timbreRows(doc) {
		m.AddRows(r)
	}

	generated, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return generated.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: razón social + giro (izq) y recuadro SII con RUT, tipo y folio (der).
func headerRow(doc *dte.Documento) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(doc.Emisor.RazonSocial, props.Text{
				Style: fontstyle.Bold, Size: 13, Top: 1,
			}),
			text.New(doc.Emisor.Giro, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("R.U.T.: "+pkgsii.FormatRUT(doc.Emisor.RUT), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Center,
				Color: colorSIIRed, Top: 1,
			}),
			text.New(doc.Tipo.Name(), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Center,
				Color: colorSIIRed, Top: 7,
			}),
			text.New(fmt.Sprintf("Nº %d", doc.Folio), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Center,
				Color: colorSIIRed, Top: 13,
			}),
		),
	)
}

// emisorRow: dirección y actividad económica del emisor.
func emisorRow(e dte.Emisor) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorSIIRed, Top: 1,
			}),
			text.New(fmt.Sprintf("Dirección: %s, %s   |   Actividad económica: %s",
				nonEmpty(e.Direccion, "—"),
				nonEmpty(e.Comuna, "—"),
				nonEmpty(e.ActividadEconomica, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// receptorRow: datos del receptor.
func receptorRow(r dte.Receptor) core.Row {
	detalle := "RUT: " + pkgsii.FormatRUT(r.RUT)
	if r.Direccion != "" {
		detalle += "   |   " + r.Direccion
		if r.Comuna != "" {
			detalle += ", " + r.Comuna
		}
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("RECEPTOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorSIIRed, Top: 1,
			}),
			text.New(nonEmpty(r.RazonSocial, "Cliente"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(detalle, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de detalles.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorSIIRed, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Detalle", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Monto", 3, align.Right),
	)
}

// tableDetailRows: una fila por línea del documento.
func tableDetailRows(items []dte.Item) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				it.Cantidad.StringFixed(0),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(6).Add(text.New(
				it.Nombre,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(it.Precio.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				"$"+formatMoney(it.Total.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(doc *dte.Documento) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorSIIRed, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorSIIRed, Right: 1,
		})
	}

	return row.New(26).Add(
		col.New(3),
		col.New(3).Add(
			label("Monto neto:"),
			label("IVA (19%):"),
			grandLabel("TOTAL:"),
		),
		col.New(3).Add(
			value("$"+formatMoney(doc.MontoNeto.StringFixed(0))),
			value("$"+formatMoney(doc.IVA.StringFixed(0))),
			grandValue("$"+formatMoney(doc.MontoTotal.StringFixed(0))),
		),
		col.New(3),
	)
}

// timbreRows: QR de verificación + leyenda SII.
func timbreRows(doc *dte.Documento) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("TIMBRE ELECTRÓNICO SII", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorSIIRed, Top: 1,
			}),
		)),
		row.New(42).Add(
			col.New(4).Add(code.NewQr(buildQRData(doc), props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(8).Add(
				text.New("Verifique este documento en www.sii.cl", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("Track ID: "+nonEmpty(doc.TrackID, "—"), props.Text{
					Size: 8, Top: 10, Left: 3, Color: colorGray,
				}),
				text.New(fmt.Sprintf("Emitido el %s", doc.FechaEmision.Format("02/01/2006 15:04")), props.Text{
					Size: 8, Top: 16, Left: 3, Color: colorGray,
				}),
				text.New(doc.Tipo.Name(), props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 26,
					Left: 3, Color: colorSIIRed,
				}),
			),
		),
		row.New(8).Add(col.New(12).Add(
			text.New(
				"Documento tributario electrónico emitido según Res. Ex. SII. "+
					"Conserve este documento como respaldo de la operación.",
				props.Text{Size: 6.5, Color: colorGray, Top: 2},
			),
		)),
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

// buildQRData datos de verificación del documento, track id incluido:
// rutEmisor|tipo|folio|fecha|rutReceptor|total|trackID.
func buildQRData(doc *dte.Documento) string {
	return strings.Join([]string{
		pkgsii.FormatRUT(doc.Emisor.RUT),
		fmt.Sprintf("%d", doc.Tipo),
		fmt.Sprintf("%d", doc.Folio),
		doc.FechaEmision.Format("2006-01-02"),
		pkgsii.FormatRUT(doc.Receptor.RUT),
		doc.MontoTotal.StringFixed(0),
		doc.TrackID,
	}, "|")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

var _ billing.PDFGenerator = (*MarotoPDFGenerator)(nil)
