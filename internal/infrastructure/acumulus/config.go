package acumulus

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/jhoicas/acumulus-sync/internal/domain"
)

// ── Constantes del API ────────────────────────────────────────────────────────

const (
	// DefaultEndpoint URL base del API estable de Acumulus.
	DefaultEndpoint = "https://api.sielsystems.nl/acumulus/stable/"

	pathInvoiceAdd       = "invoices/invoice_add.php"
	pathPaymentStatusSet = "invoices/invoice_paymentstatus_set.php"
	pathPaymentStatusGet = "invoices/invoice_paymentstatus_get.php"
	pathEntryUpdate      = "entry/entry_update.php"
	defaultTimeout       = 10 * time.Second
	defaultConnectorSrc  = "https://github.com/jhoicas/acumulus-sync"
	defaultConnectorApp  = "WHMCS"
	defaultConnectorDev  = "acumulus-sync"
	maxResponseBodyBytes = 1 << 20
)

// ConnectorInfo bloque <connector> que identifica la integración ante Acumulus.
type ConnectorInfo struct {
	Application string // ej: "WHMCS 8.6"
	Webkoppel   string // ej: "Acumulus 1.4.0"
	Development string
	Remark      string
	SourceURI   string
}

// Config credenciales y parámetros del API de Acumulus.
type Config struct {
	Endpoint     string // URL base; vacío => DefaultEndpoint
	ContractCode string
	Username     string
	Password     string
	ErrorEmail   string // <emailonerror>
	WarningEmail string // <emailonwarning>
	Timeout      time.Duration
	Connector    ConnectorInfo
}

// Validate comprueba los campos obligatorios.
func (c Config) Validate() error {
	var missing []string
	if c.ContractCode == "" {
		missing = append(missing, "contract code")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: acumulus: faltan credenciales: %s", domain.ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

// withDefaults completa los valores opcionales.
func (c Config) withDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if !strings.HasSuffix(c.Endpoint, "/") {
		c.Endpoint += "/"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Connector.Application == "" {
		c.Connector.Application = defaultConnectorApp
	}
	if c.Connector.Development == "" {
		c.Connector.Development = defaultConnectorDev
	}
	if c.Connector.Remark == "" {
		c.Connector.Remark = "Go " + runtime.Version()
	}
	if c.Connector.SourceURI == "" {
		c.Connector.SourceURI = defaultConnectorSrc
	}
	return c
}

// secrets valores que nunca deben aparecer en el log.
func (c Config) secrets() []string {
	return []string{c.ContractCode, c.Username, c.Password}
}
