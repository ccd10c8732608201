package vat

import (
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round4 redondea a 4 decimales, mitad lejos de cero.
func Round4(d decimal.Decimal) decimal.Decimal { return d.Round(4) }

// Round2 redondea a 2 decimales, mitad lejos de cero.
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// ComputeLine calcula el desglose de una línea. rate es porcentaje (21, no 0.21).
// Solo depende de sus argumentos.
func ComputeLine(amount decimal.Decimal, taxed bool, rate decimal.Decimal, mode entity.PricingMode) entity.TaxBreakdown {
	if !taxed {
		b := entity.TaxBreakdown{
			TaxUnrounded:       decimal.Zero,
			TaxRounded:         decimal.Zero,
			PriceInclUnrounded: decimal.Zero,
			PriceInclRounded:   decimal.Zero,
			PriceExclUnrounded: Round4(amount),
			PriceExclRounded:   Round2(amount),
		}
		// En modo exclusivo el precio con IVA de una línea sin IVA queda en cero.
		if mode == entity.PricingInclusive {
			b.PriceInclUnrounded = Round4(amount)
			b.PriceInclRounded = Round2(amount)
		}
		return b
	}

	if mode == entity.PricingInclusive {
		divisor := hundred.Add(rate)
		if divisor.IsZero() {
			return ComputeLine(amount, false, rate, mode)
		}
		tax := amount.Mul(rate).Div(divisor)
		excl := amount.Mul(hundred).Div(divisor)
		return entity.TaxBreakdown{
			TaxUnrounded:       Round4(tax),
			TaxRounded:         Round2(tax),
			PriceInclUnrounded: Round4(amount),
			PriceInclRounded:   Round2(amount),
			PriceExclUnrounded: Round4(excl),
			PriceExclRounded:   Round2(excl),
		}
	}

	tax := amount.Mul(rate).Div(hundred)
	return entity.TaxBreakdown{
		TaxUnrounded:       Round4(tax),
		TaxRounded:         Round2(tax),
		PriceInclUnrounded: Round4(amount.Add(tax)),
		PriceInclRounded:   Round2(amount.Add(Round2(tax))),
		PriceExclUnrounded: Round4(amount),
		PriceExclRounded:   Round2(amount),
	}
}
