package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/acumulus-sync/internal/domain"
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
	"github.com/jhoicas/acumulus-sync/internal/domain/repository"
	"github.com/jhoicas/acumulus-sync/internal/domain/vat"
)

// SyncResult resultado de una operación aceptada (o saltada) por el controlador.
type SyncResult struct {
	InvoiceID    int64
	Op           string
	Outcome      string
	State        entity.SyncState
	Token        string
	EntryID      int64
	RemoteStatus entity.LedgerStatus
	Warnings     []string
	Summary      *entity.InvoiceTaxSummary
}

// LedgerSync mantiene cada factura sincronizada con una única entrada del libro remoto:
//
//	Unsent → Sent (envío) → Sent pagada (pago) → Credited (anulación con nota de crédito)
//
// Es síncrono: una factura se procesa completa antes de la siguiente. Los fallos
// no se reintentan; se registran y se devuelven como *domain.SyncError.
type LedgerSync struct {
	billing    BillingSystem
	config     ConfigProvider
	ledger     LedgerTransport
	tokens     repository.LedgerTokenRepository
	events     repository.SyncEventRepository // opcional
	aggregator *vat.Aggregator
	log        zerolog.Logger
	now        func() time.Time
}

// NewLedgerSync construye el controlador. events puede ser nil.
func NewLedgerSync(
	billing BillingSystem,
	config ConfigProvider,
	ledger LedgerTransport,
	tokens repository.LedgerTokenRepository,
	events repository.SyncEventRepository,
	aggregator *vat.Aggregator,
	log zerolog.Logger,
) *LedgerSync {
	if aggregator == nil {
		aggregator = vat.NewAggregator(nil, nil)
	}
	return &LedgerSync{
		billing:    billing,
		config:     config,
		ledger:     ledger,
		tokens:     tokens,
		events:     events,
		aggregator: aggregator,
		log:        log.With().Str("component", "ledger_sync").Logger(),
		now:        time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (s *LedgerSync) WithClock(now func() time.Time) *LedgerSync {
	s.now = now
	return s
}

// SendInvoice envía la factura completa al libro (Unsent → Sent).
// Reenviar una factura con token crea una entrada remota nueva (invoice_add) y
// reemplaza el token guardado: localmente sigue habiendo un único registro.
func (s *LedgerSync) SendInvoice(ctx context.Context, invoiceID int64) (*SyncResult, error) {
	cfg, err := s.loadConfig(ctx, entity.SyncOpSendInvoice, invoiceID)
	if err != nil {
		return nil, err
	}
	inv, client, err := s.loadInvoice(ctx, entity.SyncOpSendInvoice, invoiceID)
	if err != nil {
		return nil, err
	}
	return s.send(ctx, cfg, inv, client)
}

// UpdateInvoice registra el pago de la factura en el libro. Sin token envía la
// factura completa. paymentDate nil => fecha de pago de la factura, o hoy.
func (s *LedgerSync) UpdateInvoice(ctx context.Context, invoiceID int64, paymentDate *time.Time) (*SyncResult, error) {
	const op = entity.SyncOpUpdateInvoice
	cfg, err := s.loadConfig(ctx, op, invoiceID)
	if err != nil {
		return nil, err
	}
	inv, client, err := s.loadInvoice(ctx, op, invoiceID)
	if err != nil {
		return nil, err
	}
	tok, err := s.findToken(ctx, op, invoiceID)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		s.log.Info().Int64("invoice_id", invoiceID).Str("op", op).Msg("factura aún no enviada, enviando completa")
		return s.send(ctx, cfg, inv, client)
	}
	return s.markPaid(ctx, cfg, inv, tok, s.paymentDate(inv, paymentDate))
}

// CancelInvoice emite la nota de crédito de una factura anulada. Solo aplica con
// numeración secuencial del libro; sin ella es un no-op remoto.
func (s *LedgerSync) CancelInvoice(ctx context.Context, invoiceID int64) (*SyncResult, error) {
	const op = entity.SyncOpCancelInvoice
	cfg, err := s.loadConfig(ctx, op, invoiceID)
	if err != nil {
		return nil, err
	}
	logger := s.log.With().Int64("invoice_id", invoiceID).Str("op", op).Logger()

	if !cfg.SequentialNumbering {
		logger.Info().Msg("sin numeración secuencial del libro: no se crea nota de crédito")
		return s.skipped(ctx, op, invoiceID, entity.SyncStateCancelled, "sequential numbering disabled"), nil
	}

	inv, client, err := s.loadInvoice(ctx, op, invoiceID)
	if err != nil {
		return nil, err
	}
	tok, err := s.findToken(ctx, op, invoiceID)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		logger.Info().Msg("no se crea nota de crédito: la factura nunca se envió")
		return s.skipped(ctx, op, invoiceID, entity.SyncStateUnsent, "invoice was never sent"), nil
	}
	if tok.CreditedAt != nil {
		logger.Info().Time("credited_at", *tok.CreditedAt).Msg("nota de crédito ya enviada, saltando")
		return s.skipped(ctx, op, invoiceID, entity.SyncStateCredited, "already credited"), nil
	}

	// El libro exige la entrada pagada antes de acreditarla.
	status, err := s.ledger.GetPaymentStatus(ctx, tok.Token)
	if err := s.checkResponse(ctx, op, inv, status, err); err != nil {
		return nil, err
	}
	today := s.today()
	if status.PaymentStatus != entity.PaymentStatusPaid {
		logger.Info().Str("payment_status", status.PaymentStatus.Code()).Msg("entrada sin pagar, marcando como pagada antes de acreditar")
		if _, err := s.markPaid(ctx, cfg, inv, tok, today); err != nil {
			return nil, err
		}
	}

	credit := s.aggregator.Annotate(vat.Invert(inv), client, cfg)
	resp, err := s.ledger.SubmitInvoice(ctx, &InvoiceSubmission{
		Invoice:     credit,
		Client:      client,
		Config:      cfg,
		Credit:      true,
		PaymentDate: today,
	})
	if err := s.checkResponse(ctx, op, credit, resp, err); err != nil {
		return nil, err
	}
	if err := s.tokens.UpsertCredit(ctx, invoiceID, resp.Token, resp.EntryID); err != nil {
		return nil, s.persistenceFailure(ctx, op, credit, resp, err)
	}

	res := s.accepted(op, credit, resp, entity.SyncOutcomeCredited, entity.SyncStateCredited)
	s.record(ctx, op, credit, res.Outcome, resp, res.Warnings)
	return res, nil
}

// Preview clasifica y anota la factura sin enviarla.
func (s *LedgerSync) Preview(ctx context.Context, invoiceID int64) (*entity.Invoice, error) {
	const op = "preview"
	cfg, err := s.loadConfig(ctx, op, invoiceID)
	if err != nil {
		return nil, err
	}
	inv, client, err := s.loadInvoice(ctx, op, invoiceID)
	if err != nil {
		return nil, err
	}
	return s.aggregator.Annotate(inv, client, cfg), nil
}

// State deriva el estado de sincronización local de la factura.
func (s *LedgerSync) State(ctx context.Context, invoiceID int64) (entity.SyncState, *entity.LedgerToken, error) {
	const op = "state"
	inv, err := s.billing.GetInvoice(ctx, invoiceID)
	if err != nil {
		return "", nil, domain.NewSyncError(op, invoiceID, sourceKind(err), err)
	}
	tok, err := s.findToken(ctx, op, invoiceID)
	if err != nil {
		return "", nil, err
	}
	return entity.DeriveSyncState(inv, tok), tok, nil
}

// ── helpers privados ─────────────────────────────────────────────────────────

func (s *LedgerSync) send(ctx context.Context, cfg *entity.SyncConfig, inv *entity.Invoice, client *entity.Client) (*SyncResult, error) {
	const op = entity.SyncOpSendInvoice
	annotated := s.aggregator.Annotate(inv, client, cfg)
	resp, err := s.ledger.SubmitInvoice(ctx, &InvoiceSubmission{Invoice: annotated, Client: client, Config: cfg})
	if err := s.checkResponse(ctx, op, annotated, resp, err); err != nil {
		return nil, err
	}
	if err := s.tokens.Upsert(ctx, inv.ID, resp.Token, resp.EntryID); err != nil {
		return nil, s.persistenceFailure(ctx, op, annotated, resp, err)
	}
	res := s.accepted(op, annotated, resp, entity.SyncOutcomeSent, entity.SyncStateSent)
	s.record(ctx, op, annotated, res.Outcome, resp, res.Warnings)
	return res, nil
}

// markPaid marca la entrada del token como pagada. Antes sincroniza el método
// de pago si está configurado; ese paso es de mejor esfuerzo.
func (s *LedgerSync) markPaid(ctx context.Context, cfg *entity.SyncConfig, inv *entity.Invoice, tok *entity.LedgerToken, date time.Time) (*SyncResult, error) {
	const op = entity.SyncOpUpdateInvoice
	var warnings []string
	if cfg.UseLastPaymentMethod {
		if last := inv.LastGateway(); last != "" && last != inv.PaymentMethod {
			warnings = s.syncPaymentMethod(ctx, cfg, inv, tok, last)
		}
	}

	resp, err := s.ledger.SetPaymentStatus(ctx, tok.Token, entity.PaymentStatusPaid, date)
	if err := s.checkResponse(ctx, op, inv, resp, err); err != nil {
		return nil, err
	}
	res := s.accepted(op, inv, resp, entity.SyncOutcomePaid, entity.DeriveSyncState(inv, tok))
	res.Token, res.EntryID = tok.Token, tok.EntryID
	res.Warnings = append(warnings, res.Warnings...)
	s.record(ctx, op, inv, res.Outcome, resp, res.Warnings)
	return res, nil
}

// syncPaymentMethod actualiza la cuenta de la entrada remota y el método de pago
// de la factura origen. No transaccional: un fallo no deshace el otro.
func (s *LedgerSync) syncPaymentMethod(ctx context.Context, cfg *entity.SyncConfig, inv *entity.Invoice, tok *entity.LedgerToken, gateway string) []string {
	const op = entity.SyncOpUpdateAccount
	logger := s.log.With().Int64("invoice_id", inv.ID).Str("op", op).Str("gateway", gateway).Logger()
	var warnings []string

	if tok.EntryID != 0 {
		resp, err := s.ledger.UpdateEntryAccount(ctx, tok.EntryID, cfg.AccountNumber(gateway))
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("no se pudo actualizar la cuenta de la entrada remota")
			warnings = append(warnings, fmt.Sprintf("entry account update failed: %v", err))
		case !resp.Status.Accepted():
			logger.Warn().Str("remote_status", resp.Status.String()).Strs("messages", resp.ErrorMessages()).Msg("el libro rechazó el cambio de cuenta")
			warnings = append(warnings, resp.ErrorMessages()...)
		default:
			logger.Info().Int64("entry_id", tok.EntryID).Msg("cuenta de la entrada remota actualizada")
			warnings = append(warnings, resp.WarningMessages()...)
		}
	}

	if err := s.billing.UpdateInvoicePaymentMethod(ctx, inv.ID, gateway); err != nil {
		logger.Warn().Err(err).Msg("no se pudo actualizar el método de pago en el sistema de facturación")
		warnings = append(warnings, fmt.Sprintf("billing payment method update failed: %v", err))
	} else {
		logger.Info().Msg("método de pago actualizado en el sistema de facturación")
	}
	return warnings
}

// checkResponse traduce fallo de transporte o rechazo de negocio a SyncError.
func (s *LedgerSync) checkResponse(ctx context.Context, op string, inv *entity.Invoice, resp *LedgerResponse, err error) error {
	logger := s.log.With().Int64("invoice_id", inv.ID).Str("op", op).Logger()
	if err == nil && resp == nil {
		err = errors.New("respuesta vacía del libro")
	}
	if err != nil {
		logger.Error().Err(err).Msg("fallo de transporte con el libro, estado local sin cambios")
		s.record(ctx, op, inv, entity.SyncOutcomeFailed, nil, []string{err.Error()})
		return domain.NewSyncError(op, inv.ID, domain.ErrTransport, err)
	}
	if resp.Status == entity.LedgerStatusErrors {
		msgs := resp.ErrorMessages()
		logger.Error().Str("remote_status", resp.Status.String()).Strs("messages", msgs).Msg("el libro rechazó la petición")
		s.record(ctx, op, inv, entity.SyncOutcomeFailed, resp, msgs)
		return domain.NewSyncError(op, inv.ID, domain.ErrBusiness, nil, msgs...)
	}
	if resp.Status == entity.LedgerStatusWarnings {
		logger.Warn().Str("remote_status", resp.Status.String()).Strs("messages", resp.WarningMessages()).Msg("aceptado con avisos")
	}
	return nil
}

// persistenceFailure el libro ya tiene la entrada pero el token no se pudo guardar.
func (s *LedgerSync) persistenceFailure(ctx context.Context, op string, inv *entity.Invoice, resp *LedgerResponse, err error) error {
	msg := fmt.Sprintf("remote entry %d (token %s) accepted but not stored locally", resp.EntryID, resp.Token)
	s.log.Error().Err(err).
		Int64("invoice_id", inv.ID).
		Str("op", op).
		Str("remote_status", resp.Status.String()).
		Int64("entry_id", resp.EntryID).
		Msg("inconsistencia: entrada remota creada pero token no persistido")
	s.record(ctx, op, inv, entity.SyncOutcomeFailed, resp, []string{msg})
	return domain.NewSyncError(op, inv.ID, domain.ErrPersistence, err, msg)
}

func (s *LedgerSync) accepted(op string, inv *entity.Invoice, resp *LedgerResponse, outcome string, state entity.SyncState) *SyncResult {
	s.log.Info().
		Int64("invoice_id", inv.ID).
		Str("op", op).
		Str("remote_status", resp.Status.String()).
		Int64("entry_id", resp.EntryID).
		Msg(strings.ToLower(outcome))
	return &SyncResult{
		InvoiceID:    inv.ID,
		Op:           op,
		Outcome:      outcome,
		State:        state,
		Token:        resp.Token,
		EntryID:      resp.EntryID,
		RemoteStatus: resp.Status,
		Warnings:     resp.WarningMessages(),
		Summary:      inv.Summary,
	}
}

func (s *LedgerSync) skipped(ctx context.Context, op string, invoiceID int64, state entity.SyncState, reason string) *SyncResult {
	s.record(ctx, op, &entity.Invoice{ID: invoiceID}, entity.SyncOutcomeSkipped, nil, []string{reason})
	return &SyncResult{InvoiceID: invoiceID, Op: op, Outcome: entity.SyncOutcomeSkipped, State: state, RemoteStatus: entity.LedgerStatusUnspecified}
}

func (s *LedgerSync) loadConfig(ctx context.Context, op string, invoiceID int64) (*entity.SyncConfig, error) {
	cfg, err := s.config.GetConfig(ctx)
	if err != nil {
		s.log.Error().Err(err).Int64("invoice_id", invoiceID).Str("op", op).Msg("configuración inválida")
		return nil, domain.NewSyncError(op, invoiceID, domain.ErrConfiguration, err)
	}
	return cfg, nil
}

func (s *LedgerSync) loadInvoice(ctx context.Context, op string, invoiceID int64) (*entity.Invoice, *entity.Client, error) {
	inv, err := s.billing.GetInvoice(ctx, invoiceID)
	if err != nil {
		s.log.Error().Err(err).Int64("invoice_id", invoiceID).Str("op", op).Msg("no se pudo obtener la factura")
		return nil, nil, domain.NewSyncError(op, invoiceID, sourceKind(err), err)
	}
	client, err := s.billing.GetClient(ctx, inv.ClientID)
	if err != nil {
		s.log.Error().Err(err).Int64("invoice_id", invoiceID).Int64("client_id", inv.ClientID).Str("op", op).Msg("no se pudo obtener el cliente")
		return nil, nil, domain.NewSyncError(op, invoiceID, sourceKind(err), err)
	}
	return inv, client, nil
}

func (s *LedgerSync) findToken(ctx context.Context, op string, invoiceID int64) (*entity.LedgerToken, error) {
	tok, err := s.tokens.Find(ctx, invoiceID)
	if err != nil {
		s.log.Error().Err(err).Int64("invoice_id", invoiceID).Str("op", op).Msg("no se pudo leer el token")
		return nil, domain.NewSyncError(op, invoiceID, domain.ErrPersistence, err)
	}
	return tok, nil
}

// record añade un evento de auditoría; un fallo solo se registra en el log.
func (s *LedgerSync) record(ctx context.Context, op string, inv *entity.Invoice, outcome string, resp *LedgerResponse, messages []string) {
	if s.events == nil {
		return
	}
	ev := &entity.SyncEvent{
		ID:        uuid.New().String(),
		InvoiceID: inv.ID,
		Operation: op,
		Outcome:   outcome,
		Total:     invoiceTotal(inv),
		Messages:  strings.Join(messages, "; "),
		CreatedAt: s.now(),
	}
	if resp != nil {
		ev.RemoteStatus = resp.Status.String()
	}
	if err := s.events.Record(ctx, ev); err != nil {
		s.log.Warn().Err(err).Int64("invoice_id", inv.ID).Str("op", op).Msg("no se pudo registrar el evento de sincronización")
	}
}

func (s *LedgerSync) paymentDate(inv *entity.Invoice, override *time.Time) time.Time {
	switch {
	case override != nil:
		return *override
	case inv.PaidDate != nil:
		return *inv.PaidDate
	default:
		return s.today()
	}
}

func (s *LedgerSync) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// invoiceTotal total con IVA de la factura anotada, o el total de origen.
func invoiceTotal(inv *entity.Invoice) decimal.Decimal {
	if inv.Summary == nil {
		return inv.Total
	}
	_, rounded := vat.Totals(inv.Items)
	untaxed := decimal.Zero
	for _, it := range inv.Items {
		// En modo exclusivo las líneas sin IVA no suman en el precio con IVA.
		if !it.Taxed && it.Tax.PriceInclRounded.IsZero() {
			untaxed = untaxed.Add(it.Tax.PriceExclRounded)
		}
	}
	return rounded.Add(untaxed)
}

// sourceKind clasifica un fallo del sistema de facturación.
func sourceKind(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.ErrNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return domain.ErrInvalidInput
	default:
		return domain.ErrTransport
	}
}
