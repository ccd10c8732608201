package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/acumulus-sync/internal/application/billing"
	"github.com/jhoicas/acumulus-sync/internal/domain"
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
	"github.com/jhoicas/acumulus-sync/pkg/config"
)

var _ billing.ConfigProvider = (*Provider)(nil)

// Provider construye la instantánea SyncConfig a partir de la configuración cargada con viper.
// Cada llamada devuelve una copia nueva; nadie comparte el mapa de cuentas.
type Provider struct {
	raw config.SyncConfig
}

// NewProvider construye el proveedor.
func NewProvider(raw config.SyncConfig) *Provider {
	return &Provider{raw: raw}
}

// GetConfig valida y devuelve la configuración. Cualquier valor mal formado
// devuelve domain.ErrConfiguration antes de tocar sistemas remotos.
func (p *Provider) GetConfig(_ context.Context) (*entity.SyncConfig, error) {
	return Build(p.raw)
}

// Build convierte y valida los valores crudos.
func Build(raw config.SyncConfig) (*entity.SyncConfig, error) {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	pricing, err := entity.ParsePricingMode(raw.PricingMode)
	if err != nil {
		fail("SYNC_PRICING_MODE: %v", err)
	}
	nature, err := entity.ParseNature(raw.DefaultNature)
	if err != nil {
		fail("SYNC_DEFAULT_NATURE: %v", err)
	}
	accounts, err := ParseAccountNumbers(raw.AccountNumbers)
	if err != nil {
		fail("SYNC_ACCOUNT_NUMBERS: %v", err)
	}
	customerType, err := parseCustomerType(raw.CustomerType)
	if err != nil {
		fail("SYNC_CUSTOMER_TYPE: %v", err)
	}
	autoName, err := parseCountryAutoName(raw.CountryAutoName)
	if err != nil {
		fail("SYNC_COUNTRY_AUTONAME: %v", err)
	}
	costCenter := strings.TrimSpace(raw.CostCenter)
	if costCenter == "" {
		fail("SYNC_COST_CENTER: centro de coste por defecto vacío")
	}
	if raw.CorrectionEnabled && strings.TrimSpace(raw.CorrectionText) == "" {
		fail("SYNC_CORRECTION_TEXT: vacío con la corrección activada")
	}
	if raw.EmailPDF && strings.TrimSpace(raw.EmailPDFSubject) == "" {
		fail("SYNC_EMAIL_PDF_SUBJECT: vacío con el envío por email activado")
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfiguration, strings.Join(problems, "; "))
	}

	return &entity.SyncConfig{
		PricingMode:          pricing,
		DefaultNature:        nature,
		CorrectionEnabled:    raw.CorrectionEnabled,
		CorrectionText:       raw.CorrectionText,
		SequentialNumbering:  raw.SequentialNumbering,
		UseLastPaymentMethod: raw.UseLastPaymentMethod,
		AccountNumbers:       accounts,
		CostCenterID:         costCenter,
		TemplateID:           strings.TrimSpace(raw.Template),

		Description:        raw.Description,
		DescriptionText:    raw.DescriptionText,
		InvoiceNotes:       raw.InvoiceNotes,
		CreditDescription:  raw.CreditDescription,
		SummarizeInvoice:   raw.Summarize,
		SummaryTextTaxed:   raw.SummaryTextTaxed,
		SummaryTextUntaxed: raw.SummaryTextUntaxed,

		CustomerImport:    raw.CustomerImport,
		CustomerType:      customerType,
		CountryAutoName:   autoName,
		OverwriteIfExists: raw.OverwriteIfExists,
		DisableDuplicates: raw.DisableDuplicates,
		CustomerMark:      raw.CustomerMark,
		VatFieldName:      strings.TrimSpace(raw.VatField),
		IbanFieldName:     strings.TrimSpace(raw.IbanField),

		EmailAsPDF: entity.EmailAsPDFConfig{
			Enabled:        raw.EmailPDF,
			BCC:            raw.EmailPDFBCC,
			From:           raw.EmailPDFFrom,
			Subject:        raw.EmailPDFSubject,
			Message:        raw.EmailPDFMessage,
			ConfirmReading: raw.EmailPDFConfirmReading,
		},
	}, nil
}

// ParseAccountNumbers interpreta "metodo=cuenta" separados por comas. Vacío => mapa vacío.
func ParseAccountNumbers(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		method, account, ok := strings.Cut(pair, "=")
		method, account = strings.TrimSpace(method), strings.TrimSpace(account)
		if !ok || method == "" || account == "" {
			return nil, fmt.Errorf("par mal formado %q (usar metodo=cuenta)", pair)
		}
		if _, dup := out[method]; dup {
			return nil, fmt.Errorf("método %q repetido", method)
		}
		out[method] = account
	}
	return out, nil
}

func parseCustomerType(s string) (entity.CustomerType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debtor", "1":
		return entity.CustomerTypeDebtor, nil
	case "creditor", "2":
		return entity.CustomerTypeCreditor, nil
	case "debtor/creditor", "neutral", "3":
		return entity.CustomerTypeNeutral, nil
	default:
		return "", fmt.Errorf("tipo de contacto desconocido %q", s)
	}
}

func parseCountryAutoName(s string) (entity.CountryAutoName, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "0":
		return entity.CountryAutoNameNone, nil
	case "automatic", "1":
		return entity.CountryAutoNameAutomatic, nil
	case "automatic-nl", "2":
		return entity.CountryAutoNameAutomaticNL, nil
	default:
		return "", fmt.Errorf("valor desconocido %q (usar none|automatic|automatic-nl)", s)
	}
}
