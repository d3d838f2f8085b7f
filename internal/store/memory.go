package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"supply_order_back_end/internal/models"
)

// MemoryStore garde tout en mémoire (développement local et tests)
type MemoryStore struct {
	mu        sync.RWMutex
	products  []models.Product
	employees []models.Employee
	rows      []models.LedgerRow
	audit     []models.AuditEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seed remplace le catalogue et la liste du personnel
func (m *MemoryStore) Seed(products []models.Product, employees []models.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append([]models.Product(nil), products...)
	m.employees = append([]models.Employee(nil), employees...)
}

func (m *MemoryStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Product(nil), m.products...), nil
}

func (m *MemoryStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateProduct(ctx context.Context, p models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.products {
		if existing.ID == p.ID {
			return ErrAlreadyExists
		}
	}
	m.products = append(m.products, p)
	return nil
}

func (m *MemoryStore) UpdateProduct(ctx context.Context, p models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == p.ID {
			m.products[i] = p
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Employee(nil), m.employees...), nil
}

func (m *MemoryStore) AppendRow(ctx context.Context, row models.LedgerRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, row)
	return nil
}

func (m *MemoryStore) ListRows(ctx context.Context) ([]models.LedgerRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.LedgerRow(nil), m.rows...), nil
}

func (m *MemoryStore) RowsByOrder(ctx context.Context, orderID string) ([]models.LedgerRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.LedgerRow
	for _, r := range m.rows {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) MarkReceived(ctx context.Context, orderID string, lineNo int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].OrderID == orderID && m.rows[i].LineNo == lineNo {
			received := at
			m.rows[i].Status = models.RowReceived
			m.rows[i].ReceivedAt = &received
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) RecordAudit(ctx context.Context, e models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, e)
	return nil
}

func (m *MemoryStore) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]models.AuditEntry(nil), m.audit...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
