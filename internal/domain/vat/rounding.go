package vat

import (
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CorrectionLineID identificador de la línea sintética de corrección.
const CorrectionLineID = "n/a"

// Totals devuelve Σ precio con IVA sin redondear y Σ redondeado, ambos a 2 decimales.
func Totals(items []entity.LineItem) (unrounded, rounded decimal.Decimal) {
	unrounded, rounded = decimal.Zero, decimal.Zero
	for _, it := range items {
		unrounded = unrounded.Add(it.Tax.PriceInclUnrounded)
		rounded = rounded.Add(it.Tax.PriceInclRounded)
	}
	return Round2(unrounded), Round2(rounded)
}

// Reconcile añade una línea de corrección cuando la suma de líneas redondeadas
// no coincide con el total sin redondear. Devuelve la línea añadida o nil.
// Los subtotales del resumen no se tocan. Si la factura ya tiene línea de
// corrección no añade otra.
func Reconcile(inv *entity.Invoice, description string) *entity.LineItem {
	for _, it := range inv.Items {
		if it.Correction {
			return nil
		}
	}
	unrounded, rounded := Totals(inv.Items)
	diff := unrounded.Sub(rounded)
	if diff.IsZero() {
		return nil
	}
	line := entity.LineItem{
		ID:          CorrectionLineID,
		Description: description,
		Amount:      diff,
		Taxed:       false,
		Correction:  true,
		Tax: entity.TaxBreakdown{
			TaxUnrounded:       decimal.Zero,
			TaxRounded:         decimal.Zero,
			PriceInclUnrounded: diff,
			PriceInclRounded:   diff,
			PriceExclUnrounded: diff,
			PriceExclRounded:   diff,
		},
	}
	inv.Items = append(inv.Items, line)
	return &inv.Items[len(inv.Items)-1]
}
