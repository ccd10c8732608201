package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/acumulus-sync/internal/application/billing"
	"github.com/jhoicas/acumulus-sync/internal/application/dto"
	"github.com/jhoicas/acumulus-sync/internal/domain"
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
	apphttp "github.com/jhoicas/acumulus-sync/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/acumulus-sync/pkg/jwt"
)

// fakeSyncer registra las llamadas y devuelve err si está definido.
type fakeSyncer struct {
	err         error
	calls       []string
	paymentDate *time.Time
	token       *entity.LedgerToken
}

func (f *fakeSyncer) result(op string, id int64, outcome string) (*billing.SyncResult, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s:%d", op, id))
	if f.err != nil {
		return nil, f.err
	}
	return &billing.SyncResult{
		InvoiceID:    id,
		Op:           op,
		Outcome:      outcome,
		State:        entity.SyncStateSent,
		Token:        "TOK",
		EntryID:      9,
		RemoteStatus: entity.LedgerStatusWarnings,
		Warnings:     []string{"W1: aviso"},
		Summary: &entity.InvoiceTaxSummary{
			VatType: entity.VatTypeNational,
			TaxRate: decimal.NewFromInt(21),
		},
	}, nil
}

func (f *fakeSyncer) SendInvoice(_ context.Context, id int64) (*billing.SyncResult, error) {
	return f.result(entity.SyncOpSendInvoice, id, entity.SyncOutcomeSent)
}

func (f *fakeSyncer) UpdateInvoice(_ context.Context, id int64, date *time.Time) (*billing.SyncResult, error) {
	f.paymentDate = date
	return f.result(entity.SyncOpUpdateInvoice, id, entity.SyncOutcomePaid)
}

func (f *fakeSyncer) CancelInvoice(_ context.Context, id int64) (*billing.SyncResult, error) {
	return f.result(entity.SyncOpCancelInvoice, id, entity.SyncOutcomeCredited)
}

func (f *fakeSyncer) State(_ context.Context, id int64) (entity.SyncState, *entity.LedgerToken, error) {
	f.calls = append(f.calls, fmt.Sprintf("state:%d", id))
	if f.err != nil {
		return "", nil, f.err
	}
	if f.token == nil {
		return entity.SyncStateUnsent, nil, nil
	}
	return entity.SyncStateSent, f.token, nil
}

type fakeEvents struct{ events []*entity.SyncEvent }

func (f *fakeEvents) ListByInvoice(_ context.Context, id int64) ([]*entity.SyncEvent, error) {
	if f == nil {
		return nil, nil
	}
	return f.events, nil
}

func buildHookApp(syncer *fakeSyncer, events *fakeEvents) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Hooks:     apphttp.NewHookHandler(syncer, events, zerolog.Nop()),
		JWTSecret: testJWTSecret,
		JWTIssuer: testIssuer,
		AppName:   "acumulus-sync",
	})
	return app
}

func doHook(t *testing.T, app *fiber.App, method, path, body string, auth bool) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", bearer(t, pkgjwt.ScopeHooks))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestHealth_Publico(t *testing.T) {
	resp := doHook(t, buildHookApp(&fakeSyncer{}, nil), http.MethodGet, "/health", "", false)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHooks_RequierenToken(t *testing.T) {
	syncer := &fakeSyncer{}
	resp := doHook(t, buildHookApp(syncer, nil), http.MethodPost, "/api/hooks/invoices/77/created", "", false)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, syncer.calls)
}

func TestHooks_Created(t *testing.T) {
	syncer := &fakeSyncer{}
	resp := doHook(t, buildHookApp(syncer, nil), http.MethodPost, "/api/hooks/invoices/77/created", "", true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.SyncResultResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(77), body.InvoiceID)
	assert.Equal(t, entity.SyncOutcomeSent, body.Outcome)
	assert.Equal(t, "TOK", body.Token)
	assert.Equal(t, "warning(s)", body.RemoteStatus)
	assert.Equal(t, []string{"W1: aviso"}, body.Warnings)
	require.NotNil(t, body.Summary)
	assert.Equal(t, 1, body.Summary.VatType)
	assert.Equal(t, []string{"sendInvoice:77"}, syncer.calls)
}

func TestHooks_PaidConFecha(t *testing.T) {
	syncer := &fakeSyncer{}
	resp := doHook(t, buildHookApp(syncer, nil), http.MethodPost, "/api/hooks/invoices/77/paid", `{"payment_date":"2024-03-20"}`, true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, syncer.paymentDate)
	assert.Equal(t, "2024-03-20", syncer.paymentDate.Format("2006-01-02"))
}

func TestHooks_PaidSinCuerpo(t *testing.T) {
	syncer := &fakeSyncer{}
	resp := doHook(t, buildHookApp(syncer, nil), http.MethodPost, "/api/hooks/invoices/77/paid", "", true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, syncer.paymentDate)
}

func TestHooks_PaidFechaInvalida(t *testing.T) {
	syncer := &fakeSyncer{}
	resp := doHook(t, buildHookApp(syncer, nil), http.MethodPost, "/api/hooks/invoices/77/paid", `{"payment_date":"20/03/2024"}`, true)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, syncer.calls)
}

func TestHooks_Cancelled(t *testing.T) {
	syncer := &fakeSyncer{}
	resp := doHook(t, buildHookApp(syncer, nil), http.MethodPost, "/api/hooks/invoices/77/cancelled", "", true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"cancelInvoice:77"}, syncer.calls)
}

func TestHooks_IDInvalido(t *testing.T) {
	for _, id := range []string{"abc", "0", "-3"} {
		syncer := &fakeSyncer{}
		resp := doHook(t, buildHookApp(syncer, nil), http.MethodPost, "/api/hooks/invoices/"+id+"/created", "", true)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, id)
		assert.Empty(t, syncer.calls)
	}
}

func TestHooks_MapeoDeErrores(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"negocio", domain.NewSyncError("sendInvoice", 77, domain.ErrBusiness, nil, "E1: rechazada"), http.StatusUnprocessableEntity, "LEDGER_REJECTED"},
		{"transporte", domain.NewSyncError("sendInvoice", 77, domain.ErrTransport, fmt.Errorf("timeout")), http.StatusBadGateway, "LEDGER_UNAVAILABLE"},
		{"configuración", domain.NewSyncError("sendInvoice", 77, domain.ErrConfiguration, fmt.Errorf("x")), http.StatusInternalServerError, "CONFIGURATION"},
		{"persistencia", domain.NewSyncError("sendInvoice", 77, domain.ErrPersistence, fmt.Errorf("x")), http.StatusInternalServerError, "PERSISTENCE"},
		{"no encontrada", domain.NewSyncError("sendInvoice", 77, domain.ErrNotFound, fmt.Errorf("x")), http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doHook(t, buildHookApp(&fakeSyncer{err: tt.err}, nil), http.MethodPost, "/api/hooks/invoices/77/created", "", true)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestHooks_RechazoIncluyeMensajes(t *testing.T) {
	err := domain.NewSyncError("sendInvoice", 77, domain.ErrBusiness, nil, "403 (AAC37EAA): Forbidden")
	resp := doHook(t, buildHookApp(&fakeSyncer{err: err}, nil), http.MethodPost, "/api/hooks/invoices/77/created", "", true)
	defer resp.Body.Close()

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"403 (AAC37EAA): Forbidden"}, body.Messages)
}

func TestState_ConTokenYEventos(t *testing.T) {
	credited := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	syncer := &fakeSyncer{token: &entity.LedgerToken{InvoiceID: 77, Token: "TOK", EntryID: 9, CreditedAt: &credited}}
	events := &fakeEvents{events: []*entity.SyncEvent{
		{ID: "e1", InvoiceID: 77, Operation: entity.SyncOpSendInvoice, Outcome: entity.SyncOutcomeSent, Total: decimal.RequireFromString("121.17")},
	}}

	resp := doHook(t, buildHookApp(syncer, events), http.MethodGet, "/api/invoices/77/sync", "", true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.SyncStateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "TOK", body.Token)
	assert.NotNil(t, body.CreditedAt)
	require.Len(t, body.Events, 1)
	assert.True(t, decimal.RequireFromString("121.17").Equal(body.Events[0].Total))
}
