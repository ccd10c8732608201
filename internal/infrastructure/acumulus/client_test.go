package acumulus_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/acumulus-sync/internal/domain"
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
	"github.com/jhoicas/acumulus-sync/internal/infrastructure/acumulus"
)

type recordedCall struct {
	Path      string
	XMLString string
}

// newTestServer responde siempre con body y guarda las peticiones recibidas.
func newTestServer(t *testing.T, body string) (*httptest.Server, *[]recordedCall) {
	t.Helper()
	var calls []recordedCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		calls = append(calls, recordedCall{Path: r.URL.Path, XMLString: r.PostForm.Get("xmlstring")})
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(endpoint string) *acumulus.Client {
	cfg := testConfig()
	cfg.Endpoint = endpoint
	cfg.Timeout = 2 * time.Second
	return acumulus.NewClient(cfg, upperTemplater{}, zerolog.Nop())
}

func TestClient_SubmitInvoice_Exito(t *testing.T) {
	srv, calls := newTestServer(t, `<?xml version="1.0"?>
<myxml>
  <invoice><invoicenumber>20230012</invoicenumber><token>TOKEN123</token><entryid>9876</entryid></invoice>
  <errors><count_errors>0</count_errors></errors>
  <warnings><count_warnings>0</count_warnings></warnings>
  <status>0</status>
</myxml>`)

	resp, err := newTestClient(srv.URL).SubmitInvoice(context.Background(), testSubmission(t, nil))
	require.NoError(t, err)
	assert.Equal(t, entity.LedgerStatusSuccess, resp.Status)
	assert.Equal(t, "TOKEN123", resp.Token)
	assert.Equal(t, int64(9876), resp.EntryID)
	assert.Empty(t, resp.Errors)

	require.Len(t, *calls, 1)
	assert.Equal(t, "/invoices/invoice_add.php", (*calls)[0].Path)
	assert.Contains(t, (*calls)[0].XMLString, "<contractcode>C123</contractcode>")
}

func TestClient_SubmitInvoice_RechazoNoEsErrorDeTransporte(t *testing.T) {
	srv, _ := newTestServer(t, `<myxml>
  <errors>
    <error><code>403</code><codetag>AAC37EAA</codetag><message>Forbidden - Insufficient credential level</message></error>
    <count_errors>1</count_errors>
  </errors>
  <warnings><count_warnings>0</count_warnings></warnings>
  <status>1</status>
</myxml>`)

	resp, err := newTestClient(srv.URL).SubmitInvoice(context.Background(), testSubmission(t, nil))
	require.NoError(t, err)
	assert.Equal(t, entity.LedgerStatusErrors, resp.Status)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "403 (AAC37EAA): Forbidden - Insufficient credential level", resp.Errors[0].String())
}

func TestClient_Avisos(t *testing.T) {
	srv, _ := newTestServer(t, `<myxml>
  <invoice><token>T</token><entryid>1</entryid></invoice>
  <warnings><warning><code>W</code><message>cuenta por defecto</message></warning></warnings>
  <status>2</status>
</myxml>`)

	resp, err := newTestClient(srv.URL).SubmitInvoice(context.Background(), testSubmission(t, nil))
	require.NoError(t, err)
	assert.True(t, resp.Status.Accepted())
	assert.Equal(t, []string{"W: cuenta por defecto"}, resp.WarningMessages())
}

func TestClient_RespuestasInvalidasSonErrorDeTransporte(t *testing.T) {
	cases := map[string]string{
		"xml roto":           `<myxml><status>0</sta`,
		"sin status":         `<myxml><invoice/></myxml>`,
		"status desconocido": `<myxml><status>7</status></myxml>`,
		"html":               `<html><body>502</body></html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv, _ := newTestServer(t, body)
			_, err := newTestClient(srv.URL).GetPaymentStatus(context.Background(), "T")
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrTransport))
		})
	}
}

func TestClient_HTTPErrorEsTransporte(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetPaymentStatus(context.Background(), "T")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Endpoint = srv.URL
	cfg.Timeout = 50 * time.Millisecond
	_, err := acumulus.NewClient(cfg, nil, zerolog.Nop()).GetPaymentStatus(context.Background(), "T")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
}

func TestClient_EstadoDePago(t *testing.T) {
	srv, calls := newTestServer(t, `<myxml><invoice><token>T</token><paymentstatus>1</paymentstatus><paymentdate></paymentdate></invoice><status>0</status></myxml>`)
	c := newTestClient(srv.URL)

	resp, err := c.GetPaymentStatus(context.Background(), "T")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusDue, resp.PaymentStatus)

	_, err = c.SetPaymentStatus(context.Background(), "T", entity.PaymentStatusPaid, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = c.UpdateEntryAccount(context.Background(), 55, "999")
	require.NoError(t, err)

	require.Len(t, *calls, 3)
	assert.Equal(t, "/invoices/invoice_paymentstatus_get.php", (*calls)[0].Path)
	assert.Equal(t, "/invoices/invoice_paymentstatus_set.php", (*calls)[1].Path)
	assert.True(t, strings.Contains((*calls)[1].XMLString, "<paymentdate>2024-02-01</paymentdate>"))
	assert.Equal(t, "/entry/entry_update.php", (*calls)[2].Path)
	assert.Contains(t, (*calls)[2].XMLString, "<entryid>55</entryid>")
}
