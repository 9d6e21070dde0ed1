package entity

import "time"

// Tipos de evento emitidos cuando cambia un lote.
const (
	BatchEventCreated  = "batch.created"
	BatchEventUpdated  = "batch.updated"
	BatchEventConsumed = "batch.consumed"
	BatchEventDeleted  = "batch.deleted"
)

// BatchEvent notificación de cambio sobre un lote (la consumen suscriptores en proceso).
type BatchEvent struct {
	Type       string
	CompanyID  string
	BatchID    string
	MaterialID string
	Status     BatchStatus
	At         time.Time
}
