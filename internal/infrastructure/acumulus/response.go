package acumulus

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/acumulus-sync/internal/application/billing"
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
)

// ── Estructuras de respuesta ─────────────────────────────────────────────────

type apiResponse struct {
	XMLName  xml.Name     `xml:"myxml"`
	Status   *string      `xml:"status"`
	Errors   []apiMessage `xml:"errors>error"`
	Warnings []apiMessage `xml:"warnings>warning"`
	Invoice  apiInvoice   `xml:"invoice"`
	Entry    apiEntry     `xml:"entry"`
}

type apiMessage struct {
	Code    string `xml:"code"`
	CodeTag string `xml:"codetag"`
	Message string `xml:"message"`
}

type apiInvoice struct {
	InvoiceNumber string `xml:"invoicenumber"`
	Token         string `xml:"token"`
	EntryID       string `xml:"entryid"`
	PaymentStatus string `xml:"paymentstatus"`
	PaymentDate   string `xml:"paymentdate"`
}

type apiEntry struct {
	EntryID string `xml:"entryid"`
}

// parseResponse interpreta el cuerpo. Cuerpo ilegible, sin <status> o con un
// código desconocido es un fallo de transporte.
func parseResponse(raw []byte) (*billing.LedgerResponse, error) {
	var r apiResponse
	if err := xml.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("acumulus: respuesta ilegible: %w", err)
	}
	if r.Status == nil {
		return nil, fmt.Errorf("acumulus: respuesta sin <status>")
	}
	status, err := entity.ParseLedgerStatus(*r.Status)
	if err != nil {
		return nil, fmt.Errorf("acumulus: %w", err)
	}

	out := &billing.LedgerResponse{
		Status:      status,
		Token:       strings.TrimSpace(r.Invoice.Token),
		PaymentDate: strings.TrimSpace(r.Invoice.PaymentDate),
		Errors:      toMessages(r.Errors),
		Warnings:    toMessages(r.Warnings),
	}
	entryID := r.Invoice.EntryID
	if entryID == "" {
		entryID = r.Entry.EntryID
	}
	if v := strings.TrimSpace(entryID); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("acumulus: entryid inválido %q: %w", v, err)
		}
		out.EntryID = id
	}
	if v := strings.TrimSpace(r.Invoice.PaymentStatus); v != "" {
		ps, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("acumulus: paymentstatus inválido %q: %w", v, err)
		}
		out.PaymentStatus = entity.PaymentStatus(ps)
	}
	return out, nil
}

func toMessages(in []apiMessage) []billing.LedgerMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]billing.LedgerMessage, 0, len(in))
	for _, m := range in {
		out = append(out, billing.LedgerMessage{
			Code:    strings.TrimSpace(m.Code),
			CodeTag: strings.TrimSpace(m.CodeTag),
			Message: strings.TrimSpace(m.Message),
		})
	}
	return out
}
