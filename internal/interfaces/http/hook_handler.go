package http

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/acumulus-sync/internal/application/billing"
	"github.com/jhoicas/acumulus-sync/internal/application/dto"
	"github.com/jhoicas/acumulus-sync/internal/domain"
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
)

// invoiceSyncer contrato que necesita el handler; lo implementa *billing.LedgerSync.
type invoiceSyncer interface {
	SendInvoice(ctx context.Context, invoiceID int64) (*billing.SyncResult, error)
	UpdateInvoice(ctx context.Context, invoiceID int64, paymentDate *time.Time) (*billing.SyncResult, error)
	CancelInvoice(ctx context.Context, invoiceID int64) (*billing.SyncResult, error)
	State(ctx context.Context, invoiceID int64) (entity.SyncState, *entity.LedgerToken, error)
}

// eventLister lectura del log de sincronización.
type eventLister interface {
	ListByInvoice(ctx context.Context, invoiceID int64) ([]*entity.SyncEvent, error)
}

// HookHandler recibe los eventos de factura del sistema de facturación.
type HookHandler struct {
	sync   invoiceSyncer
	events eventLister // opcional
	log    zerolog.Logger
}

// NewHookHandler construye el handler. events puede ser nil.
func NewHookHandler(sync invoiceSyncer, events eventLister, log zerolog.Logger) *HookHandler {
	return &HookHandler{sync: sync, events: events, log: log.With().Str("component", "hooks").Logger()}
}

// Created envía la factura recién creada.
// POST /api/hooks/invoices/:id/created
func (h *HookHandler) Created(c *fiber.Ctx) error {
	id, err := invoiceID(c)
	if err != nil {
		return badID(c)
	}
	res, err := h.sync.SendInvoice(c.UserContext(), id)
	return h.respond(c, res, err)
}

// Paid registra el pago. Cuerpo opcional {"payment_date":"YYYY-MM-DD"}.
// POST /api/hooks/invoices/:id/paid
func (h *HookHandler) Paid(c *fiber.Ctx) error {
	id, err := invoiceID(c)
	if err != nil {
		return badID(c)
	}
	var in dto.PaidHookRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	date, err := in.ParsePaymentDate()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "payment_date debe ser YYYY-MM-DD"})
	}
	res, err := h.sync.UpdateInvoice(c.UserContext(), id, date)
	return h.respond(c, res, err)
}

// Cancelled anula la factura (nota de crédito con numeración secuencial).
// POST /api/hooks/invoices/:id/cancelled
func (h *HookHandler) Cancelled(c *fiber.Ctx) error {
	id, err := invoiceID(c)
	if err != nil {
		return badID(c)
	}
	res, err := h.sync.CancelInvoice(c.UserContext(), id)
	return h.respond(c, res, err)
}

// State estado local, token y log de sincronización de la factura.
// GET /api/invoices/:id/sync
func (h *HookHandler) State(c *fiber.Ctx) error {
	id, err := invoiceID(c)
	if err != nil {
		return badID(c)
	}
	state, tok, err := h.sync.State(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	var events []*entity.SyncEvent
	if h.events != nil {
		if events, err = h.events.ListByInvoice(c.UserContext(), id); err != nil {
			return h.fail(c, domain.NewSyncError("state", id, domain.ErrPersistence, err))
		}
	}
	return c.JSON(dto.NewSyncStateResponse(id, state, tok, events))
}

// ── helpers privados ─────────────────────────────────────────────────────────

func (h *HookHandler) respond(c *fiber.Ctx, res *billing.SyncResult, err error) error {
	if err != nil {
		return h.fail(c, err)
	}
	h.log.Info().
		Int64("invoice_id", res.InvoiceID).
		Str("op", res.Op).
		Str("outcome", res.Outcome).
		Str("subject", GetSubject(c)).
		Msg("webhook procesado")
	return c.Status(fiber.StatusOK).JSON(dto.NewSyncResultResponse(res))
}

// fail traduce el tipo de error de sincronización a código HTTP.
func (h *HookHandler) fail(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrBusiness):
		status, code = fiber.StatusUnprocessableEntity, "LEDGER_REJECTED"
	case errors.Is(err, domain.ErrTransport):
		status, code = fiber.StatusBadGateway, "LEDGER_UNAVAILABLE"
	case errors.Is(err, domain.ErrConfiguration):
		code = "CONFIGURATION"
	case errors.Is(err, domain.ErrPersistence):
		code = "PERSISTENCE"
	}
	var messages []string
	var syncErr *domain.SyncError
	if errors.As(err, &syncErr) {
		messages = syncErr.Messages
	}
	h.log.Warn().Err(err).Int("status", status).Str("path", c.Path()).Msg("webhook fallido")
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error(), Messages: messages})
}

func invoiceID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return id, nil
}

func badID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id de factura inválido"})
}
