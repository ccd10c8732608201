package entity

// CustomerType tipo de contacto creado en el libro remoto.
type CustomerType string

const (
	CustomerTypeDebtor   CustomerType = "Debtor"
	CustomerTypeCreditor CustomerType = "Creditor"
	CustomerTypeNeutral  CustomerType = "Debtor/Creditor"
)

// Code devuelve el código del cable (1 deudor, 2 acreedor, 3 neutro).
func (t CustomerType) Code() string {
	switch t {
	case CustomerTypeDebtor:
		return "1"
	case CustomerTypeCreditor:
		return "2"
	default:
		return "3"
	}
}

// CountryAutoName cómo rellena el libro el nombre del país del contacto.
type CountryAutoName string

const (
	CountryAutoNameNone        CountryAutoName = "none"
	CountryAutoNameAutomatic   CountryAutoName = "automatic"
	CountryAutoNameAutomaticNL CountryAutoName = "automatic-nl"
)

// Code devuelve el código del cable (0 igual que origen, 1 automático, 2 automático incluido Nederland).
func (c CountryAutoName) Code() string {
	switch c {
	case CountryAutoNameAutomatic:
		return "1"
	case CountryAutoNameAutomaticNL:
		return "2"
	default:
		return "0"
	}
}

// EmailAsPDFConfig envío de la factura en PDF por parte del libro.
type EmailAsPDFConfig struct {
	Enabled        bool
	BCC            string
	From           string
	Subject        string // plantilla
	Message        string // plantilla
	ConfirmReading bool
}

// SyncConfig instantánea inmutable de configuración para una ejecución.
// Se construye una vez por invocación y se pasa explícitamente a cada componente.
type SyncConfig struct {
	PricingMode          PricingMode
	DefaultNature        Nature
	CorrectionEnabled    bool
	CorrectionText       string // plantilla de la línea de corrección
	SequentialNumbering  bool   // el libro asigna los números de factura
	UseLastPaymentMethod bool
	AccountNumbers       map[string]string // método de pago -> id de cuenta remota

	CostCenterID string
	TemplateID   string

	// Plantillas de texto (con marcadores {INVOICEID}, {COMPANYNAME}, ...).
	Description        string
	DescriptionText    string
	InvoiceNotes       string
	CreditDescription  string
	SummarizeInvoice   bool
	SummaryTextTaxed   string
	SummaryTextUntaxed string

	// Contacto.
	CustomerImport    bool
	CustomerType      CustomerType
	CountryAutoName   CountryAutoName
	OverwriteIfExists bool
	DisableDuplicates bool
	CustomerMark      string
	VatFieldName      string // campo personalizado con el nº de IVA (clientes antiguos)
	IbanFieldName     string

	EmailAsPDF EmailAsPDFConfig
}

// AccountNumber devuelve la cuenta remota para el método de pago (vacío si no hay).
func (c *SyncConfig) AccountNumber(paymentMethod string) string {
	if c.AccountNumbers == nil {
		return ""
	}
	return c.AccountNumbers[paymentMethod]
}
