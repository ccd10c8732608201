package entity

import (
	"strconv"
	"strings"
)

// Estados de cliente en el sistema de facturación.
const (
	ClientStatusActive   = "Active"
	ClientStatusInactive = "Inactive"
	ClientStatusClosed   = "Closed"
)

// ClientCustomField campo personalizado del cliente (ej: número de IVA o IBAN antiguos).
type ClientCustomField struct {
	ID    int64
	Name  string
	Value string
}

// Client representa al cliente (deudor) de una factura.
// Solo CountryCode, CompanyName y TaxID intervienen en la clasificación de IVA;
// el resto se usa para construir el contacto en el libro remoto.
type Client struct {
	ID           int64
	FirstName    string
	LastName     string
	FullName     string
	CompanyName  string // vacío => particular
	Email        string
	Address1     string
	Address2     string
	City         string
	State        string
	PostCode     string
	CountryCode  string // ISO 3166 alfa-2
	CountryName  string
	PhoneNumber  string
	TaxID        string // número de IVA, puede estar vacío
	Status       string
	CurrencyCode string
	CustomFields []ClientCustomField
}

// IsPrivate indica si el cliente es un particular (sin nombre de empresa).
func (c *Client) IsPrivate() bool {
	return strings.TrimSpace(c.CompanyName) == ""
}

// HasTaxID indica si el cliente tiene número de IVA.
func (c *Client) HasTaxID() bool {
	return strings.TrimSpace(c.TaxID) != ""
}

// CustomField devuelve el valor del campo personalizado indicado por nombre
// (sin distinguir mayúsculas) o por ID numérico.
func (c *Client) CustomField(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	id, idErr := strconv.ParseInt(key, 10, 64)
	for _, f := range c.CustomFields {
		if strings.EqualFold(f.Name, key) || (idErr == nil && f.ID == id) {
			return f.Value
		}
	}
	return ""
}

// CustomFieldAt devuelve el n-ésimo campo personalizado (base 1), o vacío si no existe.
func (c *Client) CustomFieldAt(n int) string {
	if n < 1 || n > len(c.CustomFields) {
		return ""
	}
	return c.CustomFields[n-1].Value
}
