// Package sii contiene catálogos y validaciones alineados al formato de
// Documento Tributario Electrónico del Servicio de Impuestos Internos (Chile).
package sii

import "fmt"

// =============================================================================
// Tipos de DTE (Res. Ex. SII Nº 45/2003 y normativa de boleta electrónica)
// Solo se soportan los tipos que emite el servicio.
// =============================================================================

// DTEType código numérico del tipo de documento tributario electrónico.
type DTEType int

const (
	DTEFacturaElectronica     DTEType = 33 // Factura electrónica afecta a IVA
	DTEBoletaElectronica      DTEType = 39 // Boleta electrónica
	DTENotaCreditoElectronica DTEType = 61 // Nota de crédito electrónica
)

// validDTETypes tipos aceptados por el pipeline de generación.
var validDTETypes = map[DTEType]string{
	DTEFacturaElectronica:     "FACTURA ELECTRÓNICA",
	DTEBoletaElectronica:      "BOLETA ELECTRÓNICA",
	DTENotaCreditoElectronica: "NOTA DE CRÉDITO ELECTRÓNICA",
}

// IsValid indica si el tipo de DTE está soportado.
func (t DTEType) IsValid() bool {
	_, ok := validDTETypes[t]
	return ok
}

// Name devuelve el nombre oficial del documento para encabezados y PDF.
// Devuelve cadena vacía si el tipo no está soportado.
func (t DTEType) Name() string {
	return validDTETypes[t]
}

// DocumentoID construye el atributo ID del nodo Documento: "DTE-{tipo}-{folio}".
func DocumentoID(t DTEType, folio int64) string {
	return fmt.Sprintf("DTE-%d-%d", t, folio)
}

// =============================================================================
// Ambientes de envío SII
// =============================================================================

const (
	AmbienteCertificacion = "certificacion" // maullin.sii.cl
	AmbienteProduccion    = "produccion"    // palena.sii.cl
)

// =============================================================================
// Estados de respuesta SII (subset usado por el envío simulado)
// =============================================================================

const (
	EstadoAceptado  = "ACEPTADO"
	EstadoRechazado = "RECHAZADO"
	EstadoReparo    = "REPARO"
)
