package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
	"github.com/jhoicas/acumulus-sync/internal/domain/repository"
)

var _ repository.LedgerTokenRepository = (*LedgerTokenRepo)(nil)

// LedgerTokenRepo implementación de LedgerTokenRepository (usable con pool o tx).
// Las escrituras son un único INSERT ... ON CONFLICT, atómico por factura.
type LedgerTokenRepo struct {
	q Querier
}

// NewLedgerTokenRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerTokenRepository(q Querier) *LedgerTokenRepo {
	return &LedgerTokenRepo{q: q}
}

// Find obtiene el token de la factura; (nil, nil) si no existe.
func (r *LedgerTokenRepo) Find(ctx context.Context, invoiceID int64) (*entity.LedgerToken, error) {
	query := `
		SELECT invoice_id, token, entry_id, created_at, updated_at, credited_at
		FROM acumulus_tokens WHERE invoice_id = $1`
	var t entity.LedgerToken
	err := r.q.QueryRow(ctx, query, invoiceID).Scan(
		&t.InvoiceID, &t.Token, &t.EntryID, &t.CreatedAt, &t.UpdatedAt, &t.CreditedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get acumulus token: %w", err)
	}
	return &t, nil
}

// Upsert inserta o reemplaza token y entry_id; conserva created_at y credited_at.
func (r *LedgerTokenRepo) Upsert(ctx context.Context, invoiceID int64, token string, entryID int64) error {
	query := `
		INSERT INTO acumulus_tokens (invoice_id, token, entry_id, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (invoice_id) DO UPDATE
		SET token = EXCLUDED.token, entry_id = EXCLUDED.entry_id, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, invoiceID, token, entryID); err != nil {
		return fmt.Errorf("upsert acumulus token: %w", err)
	}
	return nil
}

// UpsertCredit guarda el token de la nota de crédito y marca credited_at.
func (r *LedgerTokenRepo) UpsertCredit(ctx context.Context, invoiceID int64, token string, entryID int64) error {
	query := `
		INSERT INTO acumulus_tokens (invoice_id, token, entry_id, created_at, updated_at, credited_at)
		VALUES ($1, $2, $3, now(), now(), now())
		ON CONFLICT (invoice_id) DO UPDATE
		SET token = EXCLUDED.token, entry_id = EXCLUDED.entry_id, updated_at = now(), credited_at = now()`
	if _, err := r.q.Exec(ctx, query, invoiceID, token, entryID); err != nil {
		return fmt.Errorf("upsert acumulus credit token: %w", err)
	}
	return nil
}
