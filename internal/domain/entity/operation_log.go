package entity

import "time"

// OperationLog entrada de auditoría de operaciones del servicio (generación de
// documentos, envíos al SII). El registro es best-effort: un fallo al escribir
// el log nunca aborta la operación auditada.
type OperationLog struct {
	ID         string
	DoctorID   string
	Operacion  string // ej. "generar_boleta", "envio_sii"
	Exito      bool
	DuracionMs int64 // duración de la operación completa
	Detalle    map[string]any
	CreatedAt  time.Time
}
