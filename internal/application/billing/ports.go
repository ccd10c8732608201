package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
)

// BillingSystem puerto hacia el sistema de facturación de origen.
type BillingSystem interface {
	GetInvoice(ctx context.Context, invoiceID int64) (*entity.Invoice, error)
	GetClient(ctx context.Context, clientID int64) (*entity.Client, error)
	GetPaymentMethods(ctx context.Context) ([]PaymentMethod, error)
	UpdateInvoicePaymentMethod(ctx context.Context, invoiceID int64, method string) error
}

// PaymentMethod pasarela de pago configurada en el sistema de facturación.
type PaymentMethod struct {
	Module      string
	DisplayName string
}

// ConfigProvider entrega la instantánea de configuración de una ejecución.
// Debe fallar con domain.ErrConfiguration antes de cualquier llamada remota.
type ConfigProvider interface {
	GetConfig(ctx context.Context) (*entity.SyncConfig, error)
}

// Templater sustituye marcadores de factura y cliente en plantillas de texto.
type Templater interface {
	Render(template string, inv *entity.Invoice, client *entity.Client) string
}

// LedgerTransport puerto hacia el libro contable remoto.
// Devuelve error solo ante fallos de transporte (inalcanzable, timeout,
// respuesta ilegible o estado desconocido). Un rechazo de negocio llega
// como LedgerResponse con Status = LedgerStatusErrors.
type LedgerTransport interface {
	SubmitInvoice(ctx context.Context, sub *InvoiceSubmission) (*LedgerResponse, error)
	SetPaymentStatus(ctx context.Context, token string, status entity.PaymentStatus, paymentDate time.Time) (*LedgerResponse, error)
	GetPaymentStatus(ctx context.Context, token string) (*LedgerResponse, error)
	UpdateEntryAccount(ctx context.Context, entryID int64, accountNumber string) (*LedgerResponse, error)
}

// InvoiceSubmission factura ya anotada lista para enviarse al libro.
type InvoiceSubmission struct {
	Invoice     *entity.Invoice // con Summary y desglose por línea
	Client      *entity.Client
	Config      *entity.SyncConfig
	Credit      bool      // nota de crédito
	PaymentDate time.Time // solo notas de crédito
}

// LedgerMessage error o aviso devuelto por el libro.
type LedgerMessage struct {
	Code    string
	CodeTag string
	Message string
}

func (m LedgerMessage) String() string {
	switch {
	case m.Code == "" && m.CodeTag == "":
		return m.Message
	case m.CodeTag == "":
		return fmt.Sprintf("%s: %s", m.Code, m.Message)
	default:
		return fmt.Sprintf("%s (%s): %s", m.Code, m.CodeTag, m.Message)
	}
}

// LedgerResponse respuesta interpretada del libro.
type LedgerResponse struct {
	Status        entity.LedgerStatus
	Token         string
	EntryID       int64
	PaymentStatus entity.PaymentStatus
	PaymentDate   string
	Errors        []LedgerMessage
	Warnings      []LedgerMessage
}

// ErrorMessages devuelve los errores como texto.
func (r *LedgerResponse) ErrorMessages() []string {
	return messageStrings(r.Errors)
}

// WarningMessages devuelve los avisos como texto.
func (r *LedgerResponse) WarningMessages() []string {
	return messageStrings(r.Warnings)
}

func messageStrings(msgs []LedgerMessage) []string {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.String()
	}
	return out
}
