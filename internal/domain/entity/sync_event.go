package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operaciones de sincronización.
const (
	SyncOpSendInvoice   = "sendInvoice"
	SyncOpUpdateInvoice = "updateInvoice"
	SyncOpCancelInvoice = "cancelInvoice"
	SyncOpUpdateAccount = "updateAccount"
)

// Resultados registrados en el log de sincronización.
const (
	SyncOutcomeSent     = "SENT"
	SyncOutcomePaid     = "PAID"
	SyncOutcomeCredited = "CREDITED"
	SyncOutcomeSkipped  = "SKIPPED"
	SyncOutcomeFailed   = "FAILED"
)

// SyncEvent entrada del log de auditoría de sincronización.
type SyncEvent struct {
	ID           string
	InvoiceID    int64
	Operation    string
	Outcome      string
	RemoteStatus string
	Total        decimal.Decimal
	Messages     string
	CreatedAt    time.Time
}
