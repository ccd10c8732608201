package acumulus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/acumulus-sync/internal/application/billing"
	"github.com/jhoicas/acumulus-sync/internal/domain"
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
)

var _ billing.LedgerTransport = (*Client)(nil)

// Client implementa LedgerTransport sobre el API XML de Acumulus.
// Cada llamada es un POST de formulario con xmlstring=<myxml> y timeout acotado.
// Sin reintentos.
type Client struct {
	cfg        Config
	builder    *XMLBuilder
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient construye el cliente. templater resuelve los textos de la factura.
func NewClient(cfg Config, templater billing.Templater, log zerolog.Logger) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:        cfg,
		builder:    NewXMLBuilder(cfg, templater),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With().Str("component", "acumulus").Logger(),
	}
}

// SubmitInvoice envía una factura o nota de crédito (invoice_add).
func (c *Client) SubmitInvoice(ctx context.Context, sub *billing.InvoiceSubmission) (*billing.LedgerResponse, error) {
	payload, err := c.builder.Invoice(sub)
	if err != nil {
		return nil, err
	}
	return c.call(ctx, pathInvoiceAdd, payload)
}

// SetPaymentStatus marca la entrada del token como pagada o pendiente.
func (c *Client) SetPaymentStatus(ctx context.Context, token string, status entity.PaymentStatus, paymentDate time.Time) (*billing.LedgerResponse, error) {
	payload, err := c.builder.PaymentStatusSet(token, status, paymentDate)
	if err != nil {
		return nil, err
	}
	return c.call(ctx, pathPaymentStatusSet, payload)
}

// GetPaymentStatus consulta el estado de pago de la entrada del token.
func (c *Client) GetPaymentStatus(ctx context.Context, token string) (*billing.LedgerResponse, error) {
	payload, err := c.builder.PaymentStatusGet(token)
	if err != nil {
		return nil, err
	}
	return c.call(ctx, pathPaymentStatusGet, payload)
}

// UpdateEntryAccount cambia la cuenta bancaria de una entrada.
func (c *Client) UpdateEntryAccount(ctx context.Context, entryID int64, accountNumber string) (*billing.LedgerResponse, error) {
	payload, err := c.builder.EntryUpdate(entryID, accountNumber)
	if err != nil {
		return nil, err
	}
	return c.call(ctx, pathEntryUpdate, payload)
}

// call hace el POST y parsea la respuesta. Los errores devueltos envuelven domain.ErrTransport.
func (c *Client) call(ctx context.Context, path string, payload []byte) (*billing.LedgerResponse, error) {
	endpoint := c.cfg.Endpoint + path
	form := url.Values{"xmlstring": {string(payload)}}

	c.log.Debug().Str("endpoint", path).Str("request", c.mask(string(payload))).Msg("petición a acumulus")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: crear request %s: %v", domain.ErrTransport, path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s timeout o cancelación: %v", domain.ErrTransport, path, ctx.Err())
		}
		return nil, fmt.Errorf("%w: llamada HTTP %s fallida: %v", domain.ErrTransport, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: leer respuesta %s: %v", domain.ErrTransport, path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s respondió HTTP %d", domain.ErrTransport, path, resp.StatusCode)
	}

	c.log.Debug().Str("endpoint", path).Str("response", c.mask(string(raw))).Msg("respuesta de acumulus")

	out, err := parseResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrTransport, path, err)
	}
	return out, nil
}

// mask oculta credenciales antes de escribir en el log.
func (c *Client) mask(s string) string {
	for _, secret := range c.cfg.secrets() {
		if secret != "" {
			s = strings.ReplaceAll(s, secret, "***")
		}
	}
	return s
}
