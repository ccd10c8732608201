package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrUnauthorized  = errors.New("no autorizado")
	ErrConfiguration = errors.New("configuración inválida")
	ErrTransport     = errors.New("error de transporte con el libro remoto")
	ErrBusiness      = errors.New("el libro remoto rechazó la petición")
	ErrPersistence   = errors.New("error de persistencia")
)

// SyncError error estructurado de una operación de sincronización.
// Kind es uno de los sentinelas anteriores; errors.Is(err, domain.ErrBusiness) funciona.
type SyncError struct {
	Op        string
	InvoiceID int64
	Kind      error
	Messages  []string // mensajes devueltos por el libro remoto
	Err       error
}

func (e *SyncError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s invoice %d", e.Op, e.InvoiceID)
	if e.Kind != nil {
		fmt.Fprintf(&b, ": %v", e.Kind)
	}
	if len(e.Messages) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Messages, "; "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Is permite comparar contra el sentinela de Kind.
func (e *SyncError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// NewSyncError construye un SyncError del tipo indicado.
func NewSyncError(op string, invoiceID int64, kind error, err error, messages ...string) *SyncError {
	return &SyncError{Op: op, InvoiceID: invoiceID, Kind: kind, Err: err, Messages: messages}
}
