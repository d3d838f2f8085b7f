package ordering

import (
	"context"
	"errors"
	"sync"
	"time"

	"supply_order_back_end/internal/models"
	"supply_order_back_end/internal/store"
	"supply_order_back_end/internal/utils"
)

var submitTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

const submitBase = "ORD-1714554000000"

var (
	productX = models.Product{ID: "x", Name: "軍手", Price: 100, Unit: "双", Supplier: "A"}
	productY = models.Product{ID: "y", Name: "切削油", Price: 50, Unit: "缶", Supplier: "B"}
	productZ = models.Product{ID: "z", Name: "ウエス", Price: 10, Unit: "袋", Supplier: "A"}

	requester = models.Employee{ID: "1001", Name: "佐藤", Factory: "第一工場"}
)

func line(p models.Product, qty int) models.CartLine {
	return models.CartLine{Product: p, Quantity: qty}
}

func seededStore() *store.MemoryStore {
	m := store.NewMemoryStore()
	m.Seed([]models.Product{productX, productY, productZ}, []models.Employee{requester})
	return m
}

func newTestService(m *store.MemoryStore, r Renderer) *Service {
	s := NewService(m, m, m, r)
	s.Now = func() time.Time { return submitTime }
	return s
}

// fakeRenderer produit un document texte ; failOn fait échouer un identifiant donné
type fakeRenderer struct {
	mu       sync.Mutex
	rendered []string
	failOn   string
}

func (f *fakeRenderer) Render(ctx context.Context, doc utils.OrderDocument) (*utils.RenderedDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc.OrderID == f.failOn {
		return nil, errors.New("chrome indisponible")
	}
	f.rendered = append(f.rendered, doc.OrderID)
	return &utils.RenderedDocument{
		Data:        []byte(doc.OrderID),
		ContentType: "text/html; charset=utf-8",
		FileName:    doc.OrderID + ".html",
	}, nil
}

// flakyLedger échoue à partir de l'ajout numéro failAt (1-based)
type flakyLedger struct {
	*store.MemoryStore
	appended int
	failAt   int
}

func (f *flakyLedger) AppendRow(ctx context.Context, row models.LedgerRow) error {
	f.appended++
	if f.appended >= f.failAt {
		return errors.New("délai dépassé")
	}
	return f.MemoryStore.AppendRow(ctx, row)
}

// failingMark refuse toute mise à jour de ligne
type failingMark struct {
	*store.MemoryStore
}

func (f failingMark) MarkReceived(ctx context.Context, orderID string, lineNo int, at time.Time) error {
	return errors.New("registre injoignable")
}

type recordingPublisher struct {
	events []models.LedgerEvent
}

func (p *recordingPublisher) PublishLedgerEvent(ctx context.Context, ev models.LedgerEvent) error {
	p.events = append(p.events, ev)
	return nil
}

type denyLimiter struct{}

func (denyLimiter) Allow(ctx context.Context, key string) (bool, error) { return false, nil }

type recordingNotifier struct {
	sent []Notification
	err  error
}

func (n *recordingNotifier) NotifyOrder(ctx context.Context, msg Notification) error {
	n.sent = append(n.sent, msg)
	return n.err
}

type fakeArchive struct{}

func (fakeArchive) ArchiveDocument(ctx context.Context, orderID string, doc *utils.RenderedDocument) (string, error) {
	return "https://minio.local/orders/" + doc.FileName, nil
}

type fakeIndex struct {
	indexed []models.LedgerRow
	hits    []string
	err     error
}

func (f *fakeIndex) IndexRows(ctx context.Context, rows []models.LedgerRow) error {
	f.indexed = append(f.indexed, rows...)
	return nil
}

func (f *fakeIndex) SearchOrderIDs(ctx context.Context, query string) ([]string, error) {
	return f.hits, f.err
}

func ledgerRow(id string, lineNo int, at time.Time, supplier, orderer, name string, status models.RowStatus) models.LedgerRow {
	return models.LedgerRow{
		OrderID:     id,
		LineNo:      lineNo,
		Timestamp:   at,
		Orderer:     orderer,
		Supplier:    supplier,
		ProductName: name,
		Quantity:    1,
		Unit:        "個",
		Status:      status,
	}
}
