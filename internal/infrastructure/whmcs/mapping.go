package whmcs

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/acumulus-sync/internal/domain"
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

func (r *invoiceResponse) toEntity() (*entity.Invoice, error) {
	id := r.InvoiceID.Int64()
	if id == 0 {
		return nil, fmt.Errorf("%w: factura sin invoiceid", domain.ErrNotFound)
	}
	taxRate, err := strictAmount(id, "taxrate", r.TaxRate, true)
	if err != nil {
		return nil, err
	}
	total, err := strictAmount(id, "total", r.Total, true)
	if err != nil {
		return nil, err
	}
	inv := &entity.Invoice{
		ID:            id,
		ClientID:      r.UserID.Int64(),
		Number:        r.InvoiceNum.String(),
		Date:          parseDate(r.Date.String()),
		DueDate:       parseDate(r.DueDate.String()),
		Status:        r.Status.String(),
		TaxRate:       taxRate,
		Subtotal:      parseAmount(r.Subtotal),
		Tax:           parseAmount(r.Tax),
		Total:         total,
		Balance:       parseAmount(r.Balance),
		PaymentMethod: r.PaymentMethod.String(),
		Notes:         r.Notes.String(),
	}
	if paid := parseDate(r.DatePaid.String()); !paid.IsZero() {
		inv.PaidDate = &paid
	}
	for _, it := range r.Items.Item {
		amount, err := strictAmount(id, "item "+it.ID.String()+" amount", it.Amount, false)
		if err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, entity.LineItem{
			ID:          it.ID.String(),
			Description: it.Description.String(),
			Amount:      amount,
			Taxed:       it.Taxed.Int64() == 1 || strings.EqualFold(it.Taxed.String(), "true"),
		})
	}
	for _, tx := range r.Transactions.Transaction {
		inv.Transactions = append(inv.Transactions, entity.Transaction{
			ID:      tx.ID.String(),
			Gateway: tx.Gateway.String(),
			Date:    parseDate(tx.Date.String()),
			Amount:  parseAmount(tx.AmountIn),
		})
	}
	return inv, nil
}

func (d *clientDetails) toEntity() *entity.Client {
	id := d.ID.Int64()
	if id == 0 {
		id = d.UserID.Int64()
	}
	c := &entity.Client{
		ID:           id,
		FirstName:    d.FirstName.String(),
		LastName:     d.LastName.String(),
		FullName:     d.FullName.String(),
		CompanyName:  d.CompanyName.String(),
		Email:        d.Email.String(),
		Address1:     d.Address1.String(),
		Address2:     d.Address2.String(),
		City:         d.City.String(),
		State:        d.State.String(),
		PostCode:     d.PostCode.String(),
		CountryCode:  strings.ToUpper(d.CountryCode.String()),
		CountryName:  d.CountryName.String(),
		PhoneNumber:  d.PhoneNumber.String(),
		TaxID:        d.TaxID.String(),
		Status:       d.Status.String(),
		CurrencyCode: d.CurrencyCode.String(),
	}
	for _, f := range d.CustomFields {
		c.CustomFields = append(c.CustomFields, entity.ClientCustomField{
			ID:    f.ID.Int64(),
			Name:  f.Name.String(),
			Value: f.Value.String(),
		})
	}
	return c
}

// parseDate acepta "2006-01-02" y "2006-01-02 15:04:05"; "0000-00-00" y vacío dan tiempo cero.
func parseDate(s string) time.Time {
	if s == "" || strings.HasPrefix(s, "0000-00-00") {
		return time.Time{}
	}
	for _, layout := range []string{dateTimeLayout, dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// strictAmount importe que interviene en el cálculo de IVA. Un valor ilegible es
// ErrInvalidInput; vacío solo se acepta (como cero) si allowEmpty.
func strictAmount(invoiceID int64, field string, f flexString, allowEmpty bool) (decimal.Decimal, error) {
	raw := f.String()
	if raw == "" && allowEmpty {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: factura %d: %s ilegible %q", domain.ErrInvalidInput, invoiceID, field, raw)
	}
	return d, nil
}

// parseAmount importes informativos; ilegible => cero.
func parseAmount(f flexString) decimal.Decimal {
	d, err := decimal.NewFromString(f.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
