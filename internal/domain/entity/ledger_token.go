package entity

import "time"

// LedgerToken identidad remota de una factura ya enviada al libro.
// Clave única: InvoiceID. Nunca se borra desde este servicio.
type LedgerToken struct {
	InvoiceID  int64
	Token      string
	EntryID    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CreditedAt *time.Time // fecha en que se envió la nota de crédito
}

// SyncState estado local de sincronización, derivado (no se persiste).
type SyncState string

const (
	SyncStateUnsent    SyncState = "Unsent"
	SyncStateSent      SyncState = "Sent"
	SyncStateCancelled SyncState = "Cancelled"
	SyncStateCredited  SyncState = "Credited"
)

// DeriveSyncState infiere el estado a partir de la factura y del token (que puede ser nil).
func DeriveSyncState(inv *Invoice, tok *LedgerToken) SyncState {
	switch {
	case tok == nil:
		return SyncStateUnsent
	case tok.CreditedAt != nil:
		return SyncStateCredited
	case inv != nil && inv.IsCancelled():
		return SyncStateCancelled
	default:
		return SyncStateSent
	}
}
