package templating_test

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
	"github.com/jhoicas/acumulus-sync/internal/infrastructure/templating"
)

func fixture() (*entity.Invoice, *entity.Client) {
	inv := &entity.Invoice{
		ID:      77,
		Date:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:  entity.InvoiceStatusUnpaid,
		Notes:   "Gracias",
	}
	client := &entity.Client{
		ID:           12,
		FirstName:    "Jan",
		LastName:     "Jansen",
		CompanyName:  "Acme BV",
		City:         "Utrecht",
		CountryCode:  "NL",
		CurrencyCode: "EUR",
		CustomFields: []entity.ClientCustomField{{ID: 3, Value: "NL91ABNA0417164300"}, {ID: 4, Value: "ref-9"}},
	}
	return inv, client
}

func TestRender(t *testing.T) {
	inv, client := fixture()
	r := templating.New()

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"vacía", "", ""},
		{"sin marcadores", "Factuur", "Factuur"},
		{"número cae al id", "Factuur {INVOICENUMBER}", "Factuur 77"},
		{"sin distinguir mayúsculas", "{companyname} / {CompanyName}", "Acme BV / Acme BV"},
		{"nombre completo compuesto", "{FULLNAME}", "Jan Jansen"},
		{"fechas", "{INVOICEDATE} -> {INVOICEDUE}", "2024-03-01 -> 2024-03-15"},
		{"campos personalizados por posición", "{CLIENT_CUSTOMFIELD1}|{CLIENT_CUSTOMFIELD2}|{CLIENT_CUSTOMFIELD3}", "NL91ABNA0417164300|ref-9|"},
		{"conocido sin valor", "[{ADDRESS2}]", "[]"},
		{"desconocido intacto", "a{TAB}b {NOPE}", "a{TAB}b {NOPE}"},
		{"estado y moneda", "{INVOICESTATUS} {CLIENT_CURRENCY} {USERID}", "Unpaid EUR 12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Render(tt.tmpl, inv, client))
		})
	}
}

func TestRender_NumeroExplicitoYNil(t *testing.T) {
	inv, client := fixture()
	inv.Number = "2024-0012"
	r := templating.New()

	assert.Equal(t, "2024-0012", r.Render("{INVOICENUMBER}", inv, client))
	assert.Equal(t, " ", r.Render("{INVOICEID} {COMPANYNAME}", nil, nil))
}

func TestPlaceholders(t *testing.T) {
	names := templating.New().Placeholders()
	sort.Strings(names)
	assert.Len(t, names, 24)
	assert.Contains(t, names, "{CLIENT_CUSTOMFIELD4}")
	assert.Contains(t, names, "{INVOICESTATUS}")
}
