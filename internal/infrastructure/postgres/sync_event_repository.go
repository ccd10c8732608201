package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/acumulus-sync/internal/domain"
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
	"github.com/jhoicas/acumulus-sync/internal/domain/repository"
)

var _ repository.SyncEventRepository = (*SyncEventRepo)(nil)

// SyncEventRepo implementación de SyncEventRepository (solo inserciones).
type SyncEventRepo struct {
	q Querier
}

// NewSyncEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSyncEventRepository(q Querier) *SyncEventRepo {
	return &SyncEventRepo{q: q}
}

// Record persiste un evento. total se guarda como NUMERIC vía pgx-shopspring-decimal.
func (r *SyncEventRepo) Record(ctx context.Context, ev *entity.SyncEvent) error {
	query := `
		INSERT INTO sync_events (id, invoice_id, operation, outcome, remote_status, total, messages, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		ev.ID, ev.InvoiceID, ev.Operation, ev.Outcome, ev.RemoteStatus, ev.Total, ev.Messages, ev.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sync event %s duplicado", domain.ErrInvalidInput, ev.ID)
		}
		return fmt.Errorf("insert sync event: %w", err)
	}
	return nil
}

// ListByInvoice lista los eventos de la factura en orden cronológico.
func (r *SyncEventRepo) ListByInvoice(ctx context.Context, invoiceID int64) ([]*entity.SyncEvent, error) {
	query := `
		SELECT id::text, invoice_id, operation, outcome, remote_status, total, messages, created_at
		FROM sync_events WHERE invoice_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list sync events: %w", err)
	}
	defer rows.Close()

	var list []*entity.SyncEvent
	for rows.Next() {
		var ev entity.SyncEvent
		if err := rows.Scan(
			&ev.ID, &ev.InvoiceID, &ev.Operation, &ev.Outcome, &ev.RemoteStatus, &ev.Total, &ev.Messages, &ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sync event: %w", err)
		}
		list = append(list, &ev)
	}
	return list, rows.Err()
}
