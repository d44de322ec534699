// Package sii construye, firma (simulado) y envía (simulado) el XML del
// Documento Tributario Electrónico según el formato del SII.
package sii

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/thecarebot/facturacion-sii/internal/application/billing"
	"github.com/thecarebot/facturacion-sii/internal/domain/dte"
	pkgsii "github.com/thecarebot/facturacion-sii/pkg/sii"
)

// XMLBuilder construye el XML del DTE (sin firma) en ISO-8859-1.
// Los montos van como enteros truncados, que es como los exige el esquema
// para documentos en pesos chilenos.
type XMLBuilder struct{}

// NewXMLBuilder crea el builder.
func NewXMLBuilder() *XMLBuilder { return &XMLBuilder{} }

// Render genera los bytes del documento DTE codificados en ISO-8859-1.
func (b *XMLBuilder) Render(doc *dte.Documento) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("sii: documento nulo")
	}
	if !doc.Tipo.IsValid() {
		return nil, fmt.Errorf("sii: tipo de DTE no soportado: %d", doc.Tipo)
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "DTE"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "version"}, Value: "1.0"}},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	documento := xml.StartElement{
		Name: xml.Name{Local: "Documento"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "ID"}, Value: doc.ID()}},
	}
	if err := enc.EncodeToken(documento); err != nil {
		return nil, err
	}

	b.writeEncabezado(enc, doc)
	b.writeDetalle(enc, doc)

	if err := enc.EncodeToken(documento.End()); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}

	return encodeLatin1(buf.Bytes())
}

func (b *XMLBuilder) writeEncabezado(enc *xml.Encoder, doc *dte.Documento) {
	open(enc, "Encabezado")

	open(enc, "IdDoc")
	writeEl(enc, "TipoDTE", strconv.Itoa(int(doc.Tipo)))
	writeEl(enc, "Folio", strconv.FormatInt(doc.Folio, 10))
	writeEl(enc, "FchEmis", doc.FechaEmision.Format("2006-01-02"))
	closeEl(enc, "IdDoc")

	open(enc, "Emisor")
	writeEl(enc, "RUTEmisor", pkgsii.FormatRUT(doc.Emisor.RUT))
	writeEl(enc, "RznSoc", doc.Emisor.RazonSocial)
	writeEl(enc, "GiroEmis", doc.Emisor.Giro)
	if doc.Emisor.ActividadEconomica != "" {
		writeEl(enc, "Acteco", doc.Emisor.ActividadEconomica)
	}
	writeEl(enc, "DirOrigen", doc.Emisor.Direccion)
	writeEl(enc, "CmnaOrigen", doc.Emisor.Comuna)
	closeEl(enc, "Emisor")

	open(enc, "Receptor")
	writeEl(enc, "RUTRecep", pkgsii.FormatRUT(doc.Receptor.RUT))
	writeEl(enc, "RznSocRecep", doc.Receptor.RazonSocial)
	if doc.Receptor.Direccion != "" {
		writeEl(enc, "DirRecep", doc.Receptor.Direccion)
	}
	if doc.Receptor.Comuna != "" {
		writeEl(enc, "CmnaRecep", doc.Receptor.Comuna)
	}
	closeEl(enc, "Receptor")

	open(enc, "Totales")
	writeEl(enc, "MntNeto", strconv.FormatInt(doc.MontoNeto.IntPart(), 10))
	writeEl(enc, "TasaIVA", "19")
	writeEl(enc, "IVA", strconv.FormatInt(doc.IVA.IntPart(), 10))
	writeEl(enc, "MntTotal", strconv.FormatInt(doc.MontoTotal.IntPart(), 10))
	closeEl(enc, "Totales")

	closeEl(enc, "Encabezado")
}

func (b *XMLBuilder) writeDetalle(enc *xml.Encoder, doc *dte.Documento) {
	open(enc, "Detalle")
	for i, it := range doc.Items {
		open(enc, "Item")
		writeEl(enc, "NroLinDet", strconv.Itoa(i+1))
		writeEl(enc, "NmbItem", it.Nombre)
		writeEl(enc, "QtyItem", strconv.FormatInt(it.Cantidad.IntPart(), 10))
		writeEl(enc, "PrcItem", strconv.FormatInt(it.Precio.IntPart(), 10))
		writeEl(enc, "MontoItem", strconv.FormatInt(it.Total.IntPart(), 10))
		closeEl(enc, "Item")
	}
	closeEl(enc, "Detalle")
}

// ── helpers de tokens ─────────────────────────────────────────────────────────

func open(enc *xml.Encoder, name string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}})
}

func closeEl(enc *xml.Encoder, name string) {
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

func writeEl(enc *xml.Encoder, name, value string) {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	_ = enc.EncodeToken(start)
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(start.End())
}

// encodeLatin1 antepone la declaración XML y transcodifica el cuerpo UTF-8
// a ISO-8859-1, la codificación que exige el esquema DTE.
func encodeLatin1(body []byte) ([]byte, error) {
	var out bytes.Buffer
	out.WriteString(`<?xml version="1.0" encoding="` + XMLEncoding + `"?>` + "\n")
	w := transform.NewWriter(&out, charmap.ISO8859_1.NewEncoder())
	if _, err := w.Write(body); err != nil {
		return nil, fmt.Errorf("sii: codificando a ISO-8859-1: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("sii: codificando a ISO-8859-1: %w", err)
	}
	return out.Bytes(), nil
}

var _ billing.DTERenderer = (*XMLBuilder)(nil)
