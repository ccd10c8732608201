package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de factura del sistema de facturación.
const (
	InvoiceStatusUnpaid    = "Unpaid"
	InvoiceStatusPaid      = "Paid"
	InvoiceStatusCancelled = "Cancelled"
	InvoiceStatusRefunded  = "Refunded"
)

// Transaction pago registrado sobre la factura en el sistema de facturación.
type Transaction struct {
	ID      string
	Gateway string
	Date    time.Time
	Amount  decimal.Decimal
}

// TaxBreakdown desglose de impuestos derivado para una línea.
// Variantes "Unrounded" a 4 decimales, "Rounded" a 2.
type TaxBreakdown struct {
	TaxUnrounded       decimal.Decimal
	TaxRounded         decimal.Decimal
	PriceInclUnrounded decimal.Decimal
	PriceInclRounded   decimal.Decimal
	PriceExclUnrounded decimal.Decimal
	PriceExclRounded   decimal.Decimal
}

// LineItem línea de factura. Tax solo se rellena al anotar la factura.
type LineItem struct {
	ID          string
	Description string
	Amount      decimal.Decimal // con signo, en unidades (ej: 12.95)
	Taxed       bool
	Correction  bool // línea sintética de corrección de redondeo
	Tax         TaxBreakdown
}

// InvoiceTaxSummary resumen fiscal derivado de la factura completa.
type InvoiceTaxSummary struct {
	VatType                VatType
	TaxRate                decimal.Decimal // -1 => exento de IVA
	SubtotalTaxedExclTax   decimal.Decimal
	SubtotalTaxedInclTax   decimal.Decimal
	SubtotalUntaxed        decimal.Decimal
	TotalTaxRoundedPerItem decimal.Decimal
	TotalTaxUnrounded      decimal.Decimal
}

// Invoice representa la factura del sistema de facturación.
type Invoice struct {
	ID            int64
	ClientID      int64
	Number        string // puede estar vacío: se usa el ID
	Date          time.Time
	DueDate       time.Time
	PaidDate      *time.Time
	Status        string
	TaxRate       decimal.Decimal // tasa nominal según las reglas del sistema de facturación
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Balance       decimal.Decimal
	PaymentMethod string
	Notes         string
	Items         []LineItem
	Transactions  []Transaction

	// Summary es nil hasta que la factura se anota.
	Summary *InvoiceTaxSummary
}

// DisplayNumber devuelve el número de factura, o el ID si no tiene número.
func (inv *Invoice) DisplayNumber() string {
	if inv.Number != "" {
		return inv.Number
	}
	return decimal.NewFromInt(inv.ID).String()
}

// IsPaid indica si el sistema de facturación marca la factura como pagada.
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// IsCancelled indica si la factura fue anulada.
func (inv *Invoice) IsCancelled() bool {
	return inv.Status == InvoiceStatusCancelled
}

// LastGateway devuelve la pasarela de la última transacción, o vacío si no hay pagos.
func (inv *Invoice) LastGateway() string {
	if len(inv.Transactions) == 0 {
		return ""
	}
	return inv.Transactions[len(inv.Transactions)-1].Gateway
}

// Clone devuelve una copia independiente (líneas, transacciones y resumen).
func (inv *Invoice) Clone() *Invoice {
	out := *inv
	out.Items = append([]LineItem(nil), inv.Items...)
	out.Transactions = append([]Transaction(nil), inv.Transactions...)
	if inv.PaidDate != nil {
		d := *inv.PaidDate
		out.PaidDate = &d
	}
	if inv.Summary != nil {
		s := *inv.Summary
		out.Summary = &s
	}
	return &out
}
