package vat

import "github.com/jhoicas/acumulus-sync/internal/domain/entity"

// Invert devuelve la imagen negativa de la factura para la nota de crédito.
// Importes de línea y totales se niegan y redondean a 2 decimales; el desglose
// fiscal se borra y debe recalcularse con Annotate.
func Invert(inv *entity.Invoice) *entity.Invoice {
	out := inv.Clone()
	for i := range out.Items {
		out.Items[i].Amount = Round2(out.Items[i].Amount.Neg())
		out.Items[i].Tax = entity.TaxBreakdown{}
	}
	out.Subtotal = Round2(inv.Subtotal.Neg())
	out.Tax = Round2(inv.Tax.Neg())
	out.Total = Round2(inv.Total.Neg())
	out.Balance = Round2(inv.Balance.Neg())
	out.Summary = nil
	return out
}
