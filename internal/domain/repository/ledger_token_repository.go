package repository

import (
	"context"

	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
)

// LedgerTokenRepository define el puerto de persistencia para LedgerToken.
// Un registro por factura como máximo.
type LedgerTokenRepository interface {
	// Find devuelve (nil, nil) si la factura aún no tiene token.
	Find(ctx context.Context, invoiceID int64) (*entity.LedgerToken, error)
	// Upsert inserta o reemplaza el token y la entrada de la factura.
	Upsert(ctx context.Context, invoiceID int64, token string, entryID int64) error
	// UpsertCredit reemplaza el token con el de la nota de crédito y marca credited_at.
	UpsertCredit(ctx context.Context, invoiceID int64, token string, entryID int64) error
}
