package templating

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jhoicas/acumulus-sync/internal/application/billing"
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
)

var _ billing.Templater = (*Renderer)(nil)

const dateLayout = "2006-01-02"

// placeholder {NOMBRE} sin distinguir mayúsculas.
var placeholder = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

type resolver func(inv *entity.Invoice, c *entity.Client) string

// Renderer sustituye marcadores de cliente y factura en plantillas de texto.
// Un marcador conocido sin valor se resuelve a cadena vacía; uno desconocido
// (ej: {TAB}) se deja intacto para que lo procese quien construye el documento.
type Renderer struct {
	vars map[string]resolver
}

// New construye el renderer con el juego fijo de marcadores.
func New() *Renderer {
	vars := map[string]resolver{
		"USERID":          client(func(c *entity.Client) string { return formatID(c.ID) }),
		"FIRSTNAME":       client(func(c *entity.Client) string { return c.FirstName }),
		"LASTNAME":        client(func(c *entity.Client) string { return c.LastName }),
		"FULLNAME":        client(fullName),
		"COMPANYNAME":     client(func(c *entity.Client) string { return c.CompanyName }),
		"ADDRESS1":        client(func(c *entity.Client) string { return c.Address1 }),
		"ADDRESS2":        client(func(c *entity.Client) string { return c.Address2 }),
		"CITY":            client(func(c *entity.Client) string { return c.City }),
		"STATE":           client(func(c *entity.Client) string { return c.State }),
		"POSTCODE":        client(func(c *entity.Client) string { return c.PostCode }),
		"COUNTRYCODE":     client(func(c *entity.Client) string { return c.CountryCode }),
		"COUNTRY":         client(func(c *entity.Client) string { return c.CountryName }),
		"PHONENUMBER":     client(func(c *entity.Client) string { return c.PhoneNumber }),
		"CLIENT_CURRENCY": client(func(c *entity.Client) string { return c.CurrencyCode }),

		"INVOICEID":     invoice(func(inv *entity.Invoice) string { return formatID(inv.ID) }),
		"INVOICENUMBER": invoice(func(inv *entity.Invoice) string { return inv.DisplayNumber() }),
		"INVOICEDATE":   invoice(func(inv *entity.Invoice) string { return formatDate(inv.Date.Format(dateLayout), inv.Date.IsZero()) }),
		"INVOICEDUE":    invoice(func(inv *entity.Invoice) string { return formatDate(inv.DueDate.Format(dateLayout), inv.DueDate.IsZero()) }),
		"INVOICENOTES":  invoice(func(inv *entity.Invoice) string { return inv.Notes }),
		"INVOICESTATUS": invoice(func(inv *entity.Invoice) string { return inv.Status }),
	}
	for n := 1; n <= 4; n++ {
		n := n
		vars["CLIENT_CUSTOMFIELD"+strconv.Itoa(n)] = client(func(c *entity.Client) string { return c.CustomFieldAt(n) })
	}
	return &Renderer{vars: vars}
}

// Render aplica la plantilla. Plantilla vacía => "". inv y c pueden ser nil.
func (r *Renderer) Render(tmpl string, inv *entity.Invoice, c *entity.Client) string {
	if tmpl == "" {
		return ""
	}
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := strings.ToUpper(m[1 : len(m)-1])
		fn, ok := r.vars[name]
		if !ok {
			return m
		}
		return fn(inv, c)
	})
}

// Placeholders nombres admitidos, para la ayuda de la CLI.
func (r *Renderer) Placeholders() []string {
	out := make([]string, 0, len(r.vars))
	for k := range r.vars {
		out = append(out, "{"+k+"}")
	}
	return out
}

// ── helpers privados ─────────────────────────────────────────────────────────

func client(fn func(*entity.Client) string) resolver {
	return func(_ *entity.Invoice, c *entity.Client) string {
		if c == nil {
			return ""
		}
		return fn(c)
	}
}

func invoice(fn func(*entity.Invoice) string) resolver {
	return func(inv *entity.Invoice, _ *entity.Client) string {
		if inv == nil {
			return ""
		}
		return fn(inv)
	}
}

func fullName(c *entity.Client) string {
	if c.FullName != "" {
		return c.FullName
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func formatDate(s string, zero bool) string {
	if zero {
		return ""
	}
	return s
}
