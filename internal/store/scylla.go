package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"supply_order_back_end/internal/database"
	"supply_order_back_end/internal/models"
)

// ScyllaStore persiste catalogue, personnel, registre et audit dans ScyllaDB
type ScyllaStore struct {
	catalog *gocql.Session
	staff   *gocql.Session
	ledger  *gocql.Session
}

// NewScyllaStore récupère les sessions des trois keyspaces auprès du gestionnaire
func NewScyllaStore(m *database.ScyllaManager) (*ScyllaStore, error) {
	catalog, err := m.GetSession(database.KeyspaceCatalog)
	if err != nil {
		return nil, err
	}
	staff, err := m.GetSession(database.KeyspaceStaff)
	if err != nil {
		return nil, err
	}
	ledger, err := m.GetSession(database.KeyspaceLedger)
	if err != nil {
		return nil, err
	}
	return &ScyllaStore{catalog: catalog, staff: staff, ledger: ledger}, nil
}

func (s *ScyllaStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	iter := s.catalog.Query(database.StmtListProducts).WithContext(ctx).Iter()
	var products []models.Product
	for {
		p, ok := scanProduct(iter)
		if !ok {
			break
		}
		products = append(products, p)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture produits: %w", err)
	}
	return products, nil
}

func (s *ScyllaStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	iter := s.catalog.Query(database.StmtGetProduct, id).WithContext(ctx).Iter()
	p, ok := scanProduct(iter)
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture produit %s: %w", id, err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func scanProduct(iter *gocql.Iter) (models.Product, bool) {
	var p models.Product
	var updatedAt time.Time
	if !iter.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Unit, &p.Supplier, &p.StockStatus, &p.Image, &updatedAt) {
		return p, false
	}
	if !updatedAt.IsZero() {
		p.UpdatedAt = &updatedAt
	}
	return p, true
}

func productArgs(p models.Product) []interface{} {
	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}
	return []interface{}{p.ID, p.Name, p.Category, p.Price, p.Unit, p.Supplier, p.StockStatus, p.Image, updatedAt}
}

func (s *ScyllaStore) CreateProduct(ctx context.Context, p models.Product) error {
	applied, err := s.catalog.Query(database.StmtInsertProductIfAbsent, productArgs(p)...).
		WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return fmt.Errorf("création produit %s: %w", p.ID, err)
	}
	if !applied {
		return ErrAlreadyExists
	}
	return nil
}

func (s *ScyllaStore) UpdateProduct(ctx context.Context, p models.Product) error {
	if _, err := s.GetProduct(ctx, p.ID); err != nil {
		return err
	}
	if err := s.catalog.Query(database.StmtInsertProduct, productArgs(p)...).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("mise à jour produit %s: %w", p.ID, err)
	}
	return nil
}

func (s *ScyllaStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	iter := s.staff.Query(database.StmtListEmployees).WithContext(ctx).Iter()
	var employees []models.Employee
	var e models.Employee
	for iter.Scan(&e.ID, &e.Name, &e.Factory, &e.CodeName) {
		employees = append(employees, e)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture personnel: %w", err)
	}
	return employees, nil
}

func (s *ScyllaStore) AppendRow(ctx context.Context, row models.LedgerRow) error {
	var receivedAt time.Time
	if row.ReceivedAt != nil {
		receivedAt = *row.ReceivedAt
	}
	err := s.ledger.Query(database.StmtInsertLine,
		row.OrderID, row.LineNo, row.Timestamp, row.Orderer, row.Supplier, row.ProductName,
		row.Quantity, row.Unit, row.IsUrgent, string(row.Status), row.ReceivedQuantity, receivedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("ajout ligne %s/%d: %w", row.OrderID, row.LineNo, err)
	}
	return nil
}

func (s *ScyllaStore) ListRows(ctx context.Context) ([]models.LedgerRow, error) {
	return s.scanRows(s.ledger.Query(database.StmtListLines).WithContext(ctx).Iter())
}

func (s *ScyllaStore) RowsByOrder(ctx context.Context, orderID string) ([]models.LedgerRow, error) {
	return s.scanRows(s.ledger.Query(database.StmtLinesByOrder, orderID).WithContext(ctx).Iter())
}

func (s *ScyllaStore) scanRows(iter *gocql.Iter) ([]models.LedgerRow, error) {
	var rows []models.LedgerRow
	for {
		var r models.LedgerRow
		var status string
		var receivedAt time.Time
		if !iter.Scan(&r.OrderID, &r.LineNo, &r.Timestamp, &r.Orderer, &r.Supplier, &r.ProductName,
			&r.Quantity, &r.Unit, &r.IsUrgent, &status, &r.ReceivedQuantity, &receivedAt) {
			break
		}
		r.Status = models.RowStatus(status)
		if !receivedAt.IsZero() {
			r.ReceivedAt = &receivedAt
		}
		rows = append(rows, r)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture registre: %w", err)
	}
	return rows, nil
}

func (s *ScyllaStore) MarkReceived(ctx context.Context, orderID string, lineNo int, at time.Time) error {
	applied, err := s.ledger.Query(database.StmtMarkReceived, string(models.RowReceived), at, orderID, lineNo).
		WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return fmt.Errorf("réception %s/%d: %w", orderID, lineNo, err)
	}
	if !applied {
		return ErrNotFound
	}
	return nil
}

func (s *ScyllaStore) RecordAudit(ctx context.Context, e models.AuditEntry) error {
	id, err := gocql.ParseUUID(e.ID)
	if err != nil {
		id = gocql.TimeUUID()
	}
	return s.catalog.Query(database.StmtInsertAudit,
		database.AuditBucket, e.Timestamp, id, e.Actor, e.Action, e.Resource, e.ResourceID,
		e.OldValue, e.NewValue, e.IPAddress,
	).WithContext(ctx).Exec()
}

func (s *ScyllaStore) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	iter := s.catalog.Query(database.StmtListAudit, database.AuditBucket, limit).WithContext(ctx).Iter()
	var entries []models.AuditEntry
	var e models.AuditEntry
	var id gocql.UUID
	for iter.Scan(&e.Timestamp, &id, &e.Actor, &e.Action, &e.Resource, &e.ResourceID, &e.OldValue, &e.NewValue, &e.IPAddress) {
		e.ID = id.String()
		entries = append(entries, e)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture audit: %w", err)
	}
	return entries, nil
}
