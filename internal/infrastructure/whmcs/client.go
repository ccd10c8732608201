package whmcs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/acumulus-sync/internal/application/billing"
	"github.com/jhoicas/acumulus-sync/internal/domain"
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
)

var _ billing.BillingSystem = (*Client)(nil)

const (
	apiPath              = "/includes/api.php"
	defaultTimeout       = 15 * time.Second
	maxResponseBodyBytes = 1 << 20
)

// Config credenciales del API externo de WHMCS.
// Se autentica con Identifier/Secret; AccessKey es opcional (acceso fuera de la lista blanca de IPs).
type Config struct {
	URL        string
	Identifier string
	Secret     string
	AccessKey  string
	Timeout    time.Duration
}

// Validate comprueba que la configuración permite llamar al API.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.URL) == "":
		return fmt.Errorf("%w: whmcs url vacía", domain.ErrConfiguration)
	case c.Identifier == "" || c.Secret == "":
		return fmt.Errorf("%w: whmcs identifier/secret vacíos", domain.ErrConfiguration)
	}
	return nil
}

// Client implementa BillingSystem sobre el API JSON de WHMCS.
type Client struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient construye el cliente.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		endpoint:   strings.TrimRight(cfg.URL, "/") + apiPath,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With().Str("component", "whmcs").Logger(),
	}
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// GetInvoice obtiene la factura con sus líneas y transacciones.
func (c *Client) GetInvoice(ctx context.Context, invoiceID int64) (*entity.Invoice, error) {
	if invoiceID <= 0 {
		return nil, fmt.Errorf("%w: invoice id %d", domain.ErrInvalidInput, invoiceID)
	}
	var resp invoiceResponse
	if err := c.call(ctx, "GetInvoice", url.Values{"invoiceid": {strconv.FormatInt(invoiceID, 10)}}, &resp); err != nil {
		return nil, err
	}
	return resp.toEntity()
}

// GetClient obtiene los datos del cliente, incluidos los campos personalizados.
func (c *Client) GetClient(ctx context.Context, clientID int64) (*entity.Client, error) {
	if clientID <= 0 {
		return nil, fmt.Errorf("%w: client id %d", domain.ErrInvalidInput, clientID)
	}
	var resp clientResponse
	params := url.Values{"clientid": {strconv.FormatInt(clientID, 10)}, "stats": {"false"}}
	if err := c.call(ctx, "GetClientsDetails", params, &resp); err != nil {
		return nil, err
	}
	if resp.Client.ID.Int64() == 0 && resp.Client.UserID.Int64() == 0 {
		return nil, fmt.Errorf("%w: whmcs client %d", domain.ErrNotFound, clientID)
	}
	return resp.Client.toEntity(), nil
}

// GetPaymentMethods lista las pasarelas activas.
func (c *Client) GetPaymentMethods(ctx context.Context) ([]billing.PaymentMethod, error) {
	var resp paymentMethodsResponse
	if err := c.call(ctx, "GetPaymentMethods", url.Values{}, &resp); err != nil {
		return nil, err
	}
	out := make([]billing.PaymentMethod, 0, len(resp.PaymentMethods.PaymentMethod))
	for _, m := range resp.PaymentMethods.PaymentMethod {
		out = append(out, billing.PaymentMethod{Module: m.Module.String(), DisplayName: m.DisplayName.String()})
	}
	return out, nil
}

// UpdateInvoicePaymentMethod cambia la pasarela de la factura.
func (c *Client) UpdateInvoicePaymentMethod(ctx context.Context, invoiceID int64, method string) error {
	if invoiceID <= 0 || method == "" {
		return fmt.Errorf("%w: invoice %d método %q", domain.ErrInvalidInput, invoiceID, method)
	}
	params := url.Values{"invoiceid": {strconv.FormatInt(invoiceID, 10)}, "paymentmethod": {method}}
	var resp apiResult
	return c.call(ctx, "UpdateInvoice", params, &resp)
}

// ── Transporte ───────────────────────────────────────────────────────────────

// call hace el POST al API y decodifica el JSON en out.
// result=error con "not found" se traduce a domain.ErrNotFound.
func (c *Client) call(ctx context.Context, action string, params url.Values, out interface{ result() apiResult }) error {
	form := url.Values{}
	for k, v := range params {
		form[k] = v
	}
	form.Set("action", action)
	form.Set("identifier", c.cfg.Identifier)
	form.Set("secret", c.cfg.Secret)
	form.Set("responsetype", "json")
	if c.cfg.AccessKey != "" {
		form.Set("accesskey", c.cfg.AccessKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return fmt.Errorf("whmcs: crear request %s: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("whmcs: %s timeout o cancelación: %w", action, ctx.Err())
		}
		return fmt.Errorf("whmcs: llamada HTTP %s fallida: %w", action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(decodeBody(resp.Body, resp.Header.Get("Content-Type")))
	if err != nil {
		return fmt.Errorf("whmcs: leer respuesta %s: %w", action, err)
	}
	c.log.Debug().Str("action", action).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("respuesta de whmcs")

	// WHMCS responde 403 o 400 con cuerpo JSON cuando falla la autenticación; se intenta parsear igual.
	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("whmcs: %s respondió HTTP %d", action, resp.StatusCode)
		}
		return fmt.Errorf("whmcs: deserializar respuesta %s: %w", action, err)
	}
	res := out.result()
	if !strings.EqualFold(res.Result, "success") {
		msg := res.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		if strings.Contains(strings.ToLower(msg), "not found") {
			return fmt.Errorf("%w: whmcs %s: %s", domain.ErrNotFound, action, msg)
		}
		if strings.Contains(strings.ToLower(msg), "authentication") {
			return fmt.Errorf("%w: whmcs %s: %s", domain.ErrUnauthorized, action, msg)
		}
		return fmt.Errorf("whmcs: %s: %s", action, msg)
	}
	return nil
}

// decodeBody limita el cuerpo y lo convierte a UTF-8 si WHMCS responde en ISO-8859-1.
func decodeBody(body io.Reader, contentType string) io.Reader {
	limited := io.LimitReader(body, maxResponseBodyBytes)
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return limited
	}
	switch strings.ToLower(params["charset"]) {
	case "iso-8859-1", "latin1", "latin-1":
		return transform.NewReader(limited, charmap.ISO8859_1.NewDecoder())
	case "windows-1252", "cp1252":
		return transform.NewReader(limited, charmap.Windows1252.NewDecoder())
	}
	return limited
}

func (r apiResult) result() apiResult { return r }
