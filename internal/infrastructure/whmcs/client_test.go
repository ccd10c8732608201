package whmcs_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/acumulus-sync/internal/domain"
	"github.com/jhoicas/acumulus-sync/internal/infrastructure/whmcs"
)

// newTestServer responde según la acción recibida y guarda los formularios.
func newTestServer(t *testing.T, responses map[string]string) (*httptest.Server, *[]url.Values) {
	t.Helper()
	var forms []url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/includes/api.php", r.URL.Path)
		require.NoError(t, r.ParseForm())
		forms = append(forms, r.PostForm)
		body, ok := responses[r.PostForm.Get("action")]
		if !ok {
			body = `{"result":"error","message":"Command Not Found"}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &forms
}

func newTestClient(srvURL string) *whmcs.Client {
	return whmcs.NewClient(whmcs.Config{
		URL:        srvURL + "/",
		Identifier: "ident",
		Secret:     "s3cr3t",
		AccessKey:  "key",
		Timeout:    2 * time.Second,
	}, zerolog.Nop())
}

const invoiceJSON = `{
  "result": "success",
  "invoiceid": "77",
  "invoicenum": "",
  "userid": 12,
  "date": "2024-03-01",
  "duedate": "2024-03-15",
  "datepaid": "0000-00-00 00:00:00",
  "subtotal": "100.14",
  "tax": "21.03",
  "total": "121.17",
  "balance": "121.17",
  "taxrate": "21.00",
  "status": "Unpaid",
  "paymentmethod": "paypal",
  "notes": "",
  "items": {"item": [
    {"id": 1, "type": "Hosting", "description": "Hosting\nbasic", "amount": "100.00", "taxed": 1},
    {"id": "2", "type": "Setup", "description": "Setup", "amount": 0.14, "taxed": "0"}
  ]},
  "transactions": ""
}`

func TestClient_GetInvoice(t *testing.T) {
	srv, forms := newTestServer(t, map[string]string{"GetInvoice": invoiceJSON})

	inv, err := newTestClient(srv.URL).GetInvoice(context.Background(), 77)
	require.NoError(t, err)

	assert.Equal(t, int64(77), inv.ID)
	assert.Equal(t, int64(12), inv.ClientID)
	assert.Equal(t, "77", inv.DisplayNumber())
	assert.Equal(t, "2024-03-01", inv.Date.Format("2006-01-02"))
	assert.Nil(t, inv.PaidDate)
	assert.True(t, decimal.RequireFromString("21").Equal(inv.TaxRate))
	assert.True(t, decimal.RequireFromString("121.17").Equal(inv.Total))
	assert.Equal(t, "paypal", inv.PaymentMethod)
	require.Len(t, inv.Items, 2)
	assert.True(t, inv.Items[0].Taxed)
	assert.False(t, inv.Items[1].Taxed)
	assert.True(t, decimal.RequireFromString("0.14").Equal(inv.Items[1].Amount))
	assert.Empty(t, inv.Transactions)

	require.Len(t, *forms, 1)
	form := (*forms)[0]
	assert.Equal(t, "GetInvoice", form.Get("action"))
	assert.Equal(t, "77", form.Get("invoiceid"))
	assert.Equal(t, "ident", form.Get("identifier"))
	assert.Equal(t, "key", form.Get("accesskey"))
	assert.Equal(t, "json", form.Get("responsetype"))
}

func TestClient_GetInvoice_Pagada(t *testing.T) {
	body := `{"result":"success","invoiceid":5,"userid":3,"date":"2024-01-10","datepaid":"2024-01-12 10:30:00",
"status":"Paid","taxrate":"0","items":{"item":[]},
"transactions":{"transaction":[{"id":"9","gateway":"banktransfer","date":"2024-01-12 10:30:00","amountin":"50.00"}]}}`
	srv, _ := newTestServer(t, map[string]string{"GetInvoice": body})

	inv, err := newTestClient(srv.URL).GetInvoice(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, inv.PaidDate)
	assert.Equal(t, "2024-01-12", inv.PaidDate.Format("2006-01-02"))
	assert.True(t, inv.IsPaid())
	require.Len(t, inv.Transactions, 1)
	assert.Equal(t, "banktransfer", inv.LastGateway())
}

func TestClient_GetInvoice_NoEncontrada(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{"GetInvoice": `{"result":"error","message":"Invoice ID Not Found"}`})

	_, err := newTestClient(srv.URL).GetInvoice(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestClient_GetInvoice_IDInvalido(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1").GetInvoice(context.Background(), 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestClient_GetInvoice_ImportesIlegibles(t *testing.T) {
	tests := []struct {
		name  string
		old   string
		new   string
		campo string
	}{
		{"importe de línea", `"amount": "100.00"`, `"amount": "1O0.00"`, "item 1 amount"},
		{"importe de línea vacío", `"amount": "100.00"`, `"amount": ""`, "item 1 amount"},
		{"tasa", `"taxrate": "21.00"`, `"taxrate": "21%"`, "taxrate"},
		{"total", `"total": "121.17"`, `"total": "n/a"`, "total"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := strings.Replace(invoiceJSON, tt.old, tt.new, 1)
			require.NotEqual(t, invoiceJSON, body)
			srv, _ := newTestServer(t, map[string]string{"GetInvoice": body})

			inv, err := newTestClient(srv.URL).GetInvoice(context.Background(), 77)
			require.Error(t, err)
			assert.Nil(t, inv)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
			assert.Contains(t, err.Error(), tt.campo)
		})
	}
}

func TestClient_GetInvoice_TasaVaciaEsCero(t *testing.T) {
	body := strings.Replace(invoiceJSON, `"taxrate": "21.00"`, `"taxrate": ""`, 1)
	srv, _ := newTestServer(t, map[string]string{"GetInvoice": body})

	inv, err := newTestClient(srv.URL).GetInvoice(context.Background(), 77)
	require.NoError(t, err)
	assert.True(t, inv.TaxRate.IsZero())
}

func TestClient_GetClient(t *testing.T) {
	body := `{"result":"success","client":{"id":12,"firstname":"Jan","lastname":"Jansen","companyname":"Acme BV",
"email":"jan@acme.test","countrycode":"nl","tax_id":"NL123456789B01","status":"Active","currency_code":"EUR",
"customfields":[{"id":3,"value":"NL91ABNA0417164300"},{"id":"4","value":""}]}}`
	srv, forms := newTestServer(t, map[string]string{"GetClientsDetails": body})

	client, err := newTestClient(srv.URL).GetClient(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, int64(12), client.ID)
	assert.Equal(t, "NL", client.CountryCode)
	assert.Equal(t, "Acme BV", client.CompanyName)
	assert.True(t, client.HasTaxID())
	assert.Equal(t, "NL91ABNA0417164300", client.CustomField("3"))
	assert.Equal(t, "12", (*forms)[0].Get("clientid"))
}

func TestClient_GetClient_Latin1(t *testing.T) {
	body, err := charmap.ISO8859_1.NewEncoder().String(`{"result":"success","client":{"id":8,"firstname":"José","countrycode":"ES"}}`)
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=ISO-8859-1")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := newTestClient(srv.URL).GetClient(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, "José", client.FirstName)
}

func TestClient_GetPaymentMethods(t *testing.T) {
	body := `{"result":"success","totalresults":2,"paymentmethods":{"paymentmethod":[
{"module":"paypal","displayname":"PayPal"},{"module":"banktransfer","displayname":"Bank Transfer"}]}}`
	srv, _ := newTestServer(t, map[string]string{"GetPaymentMethods": body})

	methods, err := newTestClient(srv.URL).GetPaymentMethods(context.Background())
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.Equal(t, "banktransfer", methods[1].Module)
	assert.Equal(t, "Bank Transfer", methods[1].DisplayName)
}

func TestClient_UpdateInvoicePaymentMethod(t *testing.T) {
	srv, forms := newTestServer(t, map[string]string{"UpdateInvoice": `{"result":"success","invoiceid":"77"}`})

	err := newTestClient(srv.URL).UpdateInvoicePaymentMethod(context.Background(), 77, "banktransfer")
	require.NoError(t, err)
	assert.Equal(t, "banktransfer", (*forms)[0].Get("paymentmethod"))
}

func TestClient_ErrorDeAutenticacion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"result":"error","message":"Authentication Failed"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := newTestClient(srv.URL).GetPaymentMethods(context.Background())
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestClient_RespuestaIlegible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	t.Cleanup(srv.Close)

	_, err := newTestClient(srv.URL).GetInvoice(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestConfig_Validate(t *testing.T) {
	assert.True(t, errors.Is(whmcs.Config{}.Validate(), domain.ErrConfiguration))
	assert.NoError(t, whmcs.Config{URL: "https://billing.test", Identifier: "a", Secret: "b"}.Validate())
}
