package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/acumulus-sync/internal/application/billing"
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
)

// PaidHookRequest cuerpo opcional de POST /api/hooks/invoices/:id/paid.
type PaidHookRequest struct {
	PaymentDate string `json:"payment_date"` // YYYY-MM-DD; vacío => fecha de pago de la factura
}

// ParsePaymentDate devuelve nil si no se indicó fecha.
func (r PaidHookRequest) ParsePaymentDate() (*time.Time, error) {
	if r.PaymentDate == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", r.PaymentDate)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// TaxSummaryResponse resumen fiscal de la factura anotada.
type TaxSummaryResponse struct {
	VatType                int             `json:"vat_type"`
	VatTypeName            string          `json:"vat_type_name"`
	TaxRate                decimal.Decimal `json:"tax_rate"`
	SubtotalTaxedExclTax   decimal.Decimal `json:"subtotal_taxed_excl_tax"`
	SubtotalTaxedInclTax   decimal.Decimal `json:"subtotal_taxed_incl_tax"`
	SubtotalUntaxed        decimal.Decimal `json:"subtotal_untaxed"`
	TotalTaxRoundedPerItem decimal.Decimal `json:"total_tax_rounded_per_item"`
	TotalTaxUnrounded      decimal.Decimal `json:"total_tax_unrounded"`
}

// SyncResultResponse respuesta de los webhooks.
type SyncResultResponse struct {
	InvoiceID    int64               `json:"invoice_id"`
	Operation    string              `json:"operation"`
	Outcome      string              `json:"outcome"`
	State        string              `json:"state"`
	Token        string              `json:"token,omitempty"`
	EntryID      int64               `json:"entry_id,omitempty"`
	RemoteStatus string              `json:"remote_status,omitempty"`
	Warnings     []string            `json:"warnings,omitempty"`
	Summary      *TaxSummaryResponse `json:"summary,omitempty"`
}

// SyncEventResponse evento del log de sincronización.
type SyncEventResponse struct {
	ID           string          `json:"id"`
	Operation    string          `json:"operation"`
	Outcome      string          `json:"outcome"`
	RemoteStatus string          `json:"remote_status,omitempty"`
	Total        decimal.Decimal `json:"total"`
	Messages     string          `json:"messages,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SyncStateResponse estado local de una factura.
type SyncStateResponse struct {
	InvoiceID  int64               `json:"invoice_id"`
	State      string              `json:"state"`
	Token      string              `json:"token,omitempty"`
	EntryID    int64               `json:"entry_id,omitempty"`
	CreditedAt *time.Time          `json:"credited_at,omitempty"`
	Events     []SyncEventResponse `json:"events"`
}

// NewTaxSummaryResponse nil si la factura no está anotada.
func NewTaxSummaryResponse(s *entity.InvoiceTaxSummary) *TaxSummaryResponse {
	if s == nil {
		return nil
	}
	return &TaxSummaryResponse{
		VatType:                int(s.VatType),
		VatTypeName:            s.VatType.String(),
		TaxRate:                s.TaxRate,
		SubtotalTaxedExclTax:   s.SubtotalTaxedExclTax,
		SubtotalTaxedInclTax:   s.SubtotalTaxedInclTax,
		SubtotalUntaxed:        s.SubtotalUntaxed,
		TotalTaxRoundedPerItem: s.TotalTaxRoundedPerItem,
		TotalTaxUnrounded:      s.TotalTaxUnrounded,
	}
}

// NewSyncStateResponse compone estado, token (puede ser nil) y eventos.
func NewSyncStateResponse(invoiceID int64, state entity.SyncState, tok *entity.LedgerToken, events []*entity.SyncEvent) SyncStateResponse {
	out := SyncStateResponse{InvoiceID: invoiceID, State: string(state), Events: make([]SyncEventResponse, 0, len(events))}
	if tok != nil {
		out.Token = tok.Token
		out.EntryID = tok.EntryID
		out.CreditedAt = tok.CreditedAt
	}
	for _, ev := range events {
		out.Events = append(out.Events, SyncEventResponse{
			ID:           ev.ID,
			Operation:    ev.Operation,
			Outcome:      ev.Outcome,
			RemoteStatus: ev.RemoteStatus,
			Total:        ev.Total,
			Messages:     ev.Messages,
			CreatedAt:    ev.CreatedAt,
		})
	}
	return out
}

// NewSyncResultResponse traduce el resultado del controlador. Sin estado remoto si se saltó.
func NewSyncResultResponse(res *billing.SyncResult) SyncResultResponse {
	out := SyncResultResponse{
		InvoiceID: res.InvoiceID,
		Operation: res.Op,
		Outcome:   res.Outcome,
		State:     string(res.State),
		Token:     res.Token,
		EntryID:   res.EntryID,
		Warnings:  res.Warnings,
		Summary:   NewTaxSummaryResponse(res.Summary),
	}
	if res.Outcome != entity.SyncOutcomeSkipped {
		out.RemoteStatus = res.RemoteStatus.String()
	}
	return out
}
