package repository

import (
	"context"

	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
)

// SyncEventRepository log de auditoría de sincronizaciones (solo añadir).
type SyncEventRepository interface {
	Record(ctx context.Context, ev *entity.SyncEvent) error
	// ListByInvoice devuelve los eventos de la factura, del más antiguo al más reciente.
	ListByInvoice(ctx context.Context, invoiceID int64) ([]*entity.SyncEvent, error)
}
