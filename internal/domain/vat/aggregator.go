package vat

import (
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Templater sustituye marcadores de factura y cliente en un texto libre.
type Templater interface {
	Render(template string, inv *entity.Invoice, client *entity.Client) string
}

// Aggregator clasifica la factura, calcula cada línea y acumula los subtotales.
type Aggregator struct {
	classifier *Classifier
	templater  Templater
}

// NewAggregator construye el agregador.
func NewAggregator(classifier *Classifier, templater Templater) *Aggregator {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	return &Aggregator{classifier: classifier, templater: templater}
}

// Annotate devuelve una copia de la factura con el desglose por línea y el resumen.
// La factura de entrada no se modifica.
func (a *Aggregator) Annotate(inv *entity.Invoice, client *entity.Client, cfg *entity.SyncConfig) *entity.Invoice {
	out := inv.Clone()
	cls := a.classifier.Classify(client, inv, cfg)
	rate := cls.LineRate()
	// La tasa nominal se fuerza a 0 para que ninguna línea lleve IVA.
	out.TaxRate = rate

	sum := &entity.InvoiceTaxSummary{
		VatType:                cls.VatType,
		TaxRate:                cls.TaxRate,
		SubtotalTaxedExclTax:   decimal.Zero,
		SubtotalTaxedInclTax:   decimal.Zero,
		SubtotalUntaxed:        decimal.Zero,
		TotalTaxRoundedPerItem: decimal.Zero,
		TotalTaxUnrounded:      decimal.Zero,
	}

	for i := range out.Items {
		item := &out.Items[i]
		item.Tax = ComputeLine(item.Amount, item.Taxed, rate, cfg.PricingMode)
		if !item.Taxed {
			sum.SubtotalUntaxed = sum.SubtotalUntaxed.Add(item.Amount)
			continue
		}
		if cfg.PricingMode == entity.PricingInclusive {
			sum.SubtotalTaxedExclTax = sum.SubtotalTaxedExclTax.Add(item.Tax.PriceExclUnrounded)
		} else {
			sum.SubtotalTaxedExclTax = sum.SubtotalTaxedExclTax.Add(item.Amount)
		}
		sum.SubtotalTaxedInclTax = sum.SubtotalTaxedInclTax.Add(item.Tax.PriceInclUnrounded)
		sum.TotalTaxRoundedPerItem = sum.TotalTaxRoundedPerItem.Add(item.Tax.TaxRounded)
		sum.TotalTaxUnrounded = sum.TotalTaxUnrounded.Add(item.Tax.TaxUnrounded)
	}
	out.Summary = sum

	if cfg.CorrectionEnabled {
		description := ""
		if a.templater != nil {
			description = a.templater.Render(cfg.CorrectionText, out, client)
		}
		Reconcile(out, description)
	}
	return out
}
