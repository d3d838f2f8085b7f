package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"supply_order_back_end/internal/models"
	"supply_order_back_end/internal/utils"
)

// SheetStore parle au script web qui expose le tableur (lectures GET ?type=, écritures POST {action})
type SheetStore struct {
	endpoint string
	client   *http.Client
}

// sheetResult est la réponse standard du script pour les écritures
type sheetResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewSheetStore(endpoint string, client *http.Client) *SheetStore {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &SheetStore{endpoint: endpoint, client: client}
}

func (s *SheetStore) fetch(ctx context.Context, kind string) ([]utils.Row, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("type", kind)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lecture %s: %w", kind, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lecture %s: statut %d", kind, resp.StatusCode)
	}

	var rows []utils.Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("décodage %s: %w", kind, err)
	}
	return rows, nil
}

func (s *SheetStore) post(ctx context.Context, action string, fields map[string]interface{}) error {
	payload := map[string]interface{}{"action": action}
	for k, v := range fields {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	// Le script n'accepte que text/plain (pas de pré-vol CORS)
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: statut %d", action, resp.StatusCode)
	}

	var result sheetResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("%s: réponse illisible: %w", action, err)
	}
	if !result.Success {
		if result.Message == "not found" {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %s", action, result.Message)
	}
	return nil
}

func (s *SheetStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.fetch(ctx, "products")
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(rows))
	for i, row := range rows {
		p := DecodeProduct(row)
		if p.ID == "" {
			p.ID = fmt.Sprintf("%d", i+1)
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *SheetStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func productFields(p models.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":          p.ID,
		"name":        p.Name,
		"category":    p.Category,
		"price":       p.Price,
		"unit":        p.Unit,
		"supplier":    p.Supplier,
		"stockStatus": p.StockStatus,
		"image":       p.Image,
	}
}

func (s *SheetStore) CreateProduct(ctx context.Context, p models.Product) error {
	return s.post(ctx, "registerProduct", productFields(p))
}

func (s *SheetStore) UpdateProduct(ctx context.Context, p models.Product) error {
	return s.post(ctx, "updateProduct", productFields(p))
}

func (s *SheetStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	rows, err := s.fetch(ctx, "employees")
	if err != nil {
		return nil, err
	}
	return DecodeEmployees(rows), nil
}

func (s *SheetStore) AppendRow(ctx context.Context, row models.LedgerRow) error {
	return s.post(ctx, "appendRow", map[string]interface{}{"row": EncodeLedgerRow(row)})
}

func (s *SheetStore) ListRows(ctx context.Context) ([]models.LedgerRow, error) {
	rows, err := s.fetch(ctx, "orders")
	if err != nil {
		return nil, err
	}
	return DecodeLedgerRows(rows), nil
}

func (s *SheetStore) RowsByOrder(ctx context.Context, orderID string) ([]models.LedgerRow, error) {
	rows, err := s.ListRows(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.LedgerRow
	for _, r := range rows {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *SheetStore) MarkReceived(ctx context.Context, orderID string, lineNo int, at time.Time) error {
	return s.post(ctx, "markReceived", map[string]interface{}{
		"orderId":    orderID,
		"lineNo":     lineNo,
		"receivedAt": at.Format(time.RFC3339),
	})
}

func (s *SheetStore) RecordAudit(ctx context.Context, e models.AuditEntry) error {
	return s.post(ctx, "recordHistory", map[string]interface{}{
		"actor":      e.Actor,
		"action":     e.Action,
		"resource":   e.Resource,
		"resourceId": e.ResourceID,
		"oldValue":   e.OldValue,
		"newValue":   e.NewValue,
		"timestamp":  e.Timestamp.Format(time.RFC3339),
	})
}

func (s *SheetStore) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	rows, err := s.fetch(ctx, "history")
	if err != nil {
		return nil, err
	}
	entries := make([]models.AuditEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, models.AuditEntry{
			ID:         utils.LookupString(r, "", "id"),
			Actor:      utils.LookupString(r, "", "actor", "updater", "更新者"),
			Action:     utils.LookupString(r, "", "action"),
			Resource:   utils.LookupString(r, "product", "resource"),
			ResourceID: utils.LookupString(r, "", "resourceId", "productId"),
			OldValue:   utils.LookupString(r, "", "oldValue"),
			NewValue:   utils.LookupString(r, "", "newValue"),
			Timestamp:  parseSheetTime(utils.LookupString(r, "", "timestamp", "日時")),
		})
	}
	// Le tableur ajoute en fin de feuille : les plus récents d'abord
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
