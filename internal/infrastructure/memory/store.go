package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
	"github.com/jhoicas/acumulus-sync/internal/domain/repository"
)

var (
	_ repository.LedgerTokenRepository = (*Store)(nil)
	_ repository.SyncEventRepository   = (*Store)(nil)
)

// Store implementación en memoria de los repositorios de tokens y eventos.
// Se usa en tests y en ejecuciones de prueba (--dry-run) sin base de datos.
type Store struct {
	mu sync.RWMutex

	tokens map[int64]*entity.LedgerToken
	events []*entity.SyncEvent

	now func() time.Time
}

// New construye un Store vacío.
func New() *Store {
	return &Store{
		tokens: make(map[int64]*entity.LedgerToken),
		events: make([]*entity.SyncEvent, 0),
		now:    time.Now,
	}
}

// ── LedgerTokenRepository ────────────────────────────────────────────────────

func (s *Store) Find(_ context.Context, invoiceID int64) (*entity.LedgerToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[invoiceID]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *Store) Upsert(_ context.Context, invoiceID int64, token string, entryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsertLocked(invoiceID, token, entryID)
	return nil
}

func (s *Store) UpsertCredit(_ context.Context, invoiceID int64, token string, entryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.upsertLocked(invoiceID, token, entryID)
	credited := t.UpdatedAt
	t.CreditedAt = &credited
	return nil
}

func (s *Store) upsertLocked(invoiceID int64, token string, entryID int64) *entity.LedgerToken {
	now := s.now()
	t, ok := s.tokens[invoiceID]
	if !ok {
		t = &entity.LedgerToken{InvoiceID: invoiceID, CreatedAt: now}
		s.tokens[invoiceID] = t
	}
	t.Token = token
	t.EntryID = entryID
	t.UpdatedAt = now
	return t
}

// Len número de tokens almacenados.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// ── SyncEventRepository ──────────────────────────────────────────────────────

func (s *Store) Record(_ context.Context, ev *entity.SyncEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *ev
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.events = append(s.events, &cp)
	return nil
}

func (s *Store) ListByInvoice(_ context.Context, invoiceID int64) ([]*entity.SyncEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entity.SyncEvent
	for _, ev := range s.events {
		if ev.InvoiceID == invoiceID {
			cp := *ev
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
