package vat

import (
	"strings"
	"time"

	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MossDate entrada en vigor del régimen MOSS (servicios digitales a particulares UE).
var MossDate = date(2015, time.January, 1)

// ExemptRate tasa centinela "exento de IVA", distinta de un 0% real.
var ExemptRate = decimal.NewFromInt(-1)

const homeCountry = "NL"

// Classification resultado de clasificar una factura.
type Classification struct {
	VatType entity.VatType
	TaxRate decimal.Decimal // -1 => exento
}

// Exempt indica si la tasa es la centinela de exención.
func (c Classification) Exempt() bool {
	return c.TaxRate.Equal(ExemptRate)
}

// LineRate tasa aplicada al cálculo por línea: 0 si la tasa resuelta es 0 o exenta.
func (c Classification) LineRate() decimal.Decimal {
	if c.Exempt() || c.TaxRate.IsZero() {
		return decimal.Zero
	}
	return c.TaxRate
}

// Classifier determina tipo de IVA y tasa según país, empresa, nº de IVA y fecha.
type Classifier struct {
	membership *Membership
}

// NewClassifier construye el clasificador. Con membership nil usa la tabla por defecto.
func NewClassifier(membership *Membership) *Classifier {
	if membership == nil {
		membership = defaultMembership
	}
	return &Classifier{membership: membership}
}

// Classify aplica el árbol de decisión; gana la primera regla que coincide.
func (c *Classifier) Classify(client *entity.Client, inv *entity.Invoice, cfg *entity.SyncConfig) Classification {
	nominal := inv.TaxRate
	country := strings.ToUpper(strings.TrimSpace(client.CountryCode))

	if country == homeCountry {
		return Classification{VatType: entity.VatTypeNational, TaxRate: nominal}
	}

	if c.membership.IsMember(country, inv.Date) {
		switch {
		case inv.Date.Before(MossDate):
			// Antes de MOSS: a empresas UE se factura como nacional sin IVA.
			if client.IsPrivate() {
				return Classification{VatType: entity.VatTypeNational, TaxRate: nominal}
			}
			return Classification{VatType: entity.VatTypeNational, TaxRate: decimal.Zero}
		case !client.HasTaxID():
			return Classification{VatType: entity.VatTypeForeignVat, TaxRate: nominal}
		default:
			return Classification{VatType: entity.VatTypeInternationalReverseCharge, TaxRate: decimal.Zero}
		}
	}

	if cfg.DefaultNature == entity.NatureService {
		if client.IsPrivate() {
			return Classification{VatType: entity.VatTypeExport, TaxRate: decimal.Zero}
		}
		return Classification{VatType: entity.VatTypeNational, TaxRate: ExemptRate}
	}
	return Classification{VatType: entity.VatTypeExport, TaxRate: decimal.Zero}
}
