package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"supply_order_back_end/internal/models"
)

const (
	ProductIndex = "products"
	LedgerIndex  = "order_lines"
)

// Search indexe catalogue et registre dans Elasticsearch
type Search struct {
	client *elasticsearch.Client
}

func NewSearch(client *elasticsearch.Client) *Search {
	return &Search{client: client}
}

// IndexProducts (ré)indexe les produits du catalogue
func (s *Search) IndexProducts(ctx context.Context, products []models.Product) error {
	for _, p := range products {
		if err := s.index(ctx, ProductIndex, p.ID, p); err != nil {
			return err
		}
	}
	log.Printf("✅ %d produit(s) indexé(s) dans Elasticsearch", len(products))
	return nil
}

func (s *Search) IndexProduct(ctx context.Context, p models.Product) error {
	return s.index(ctx, ProductIndex, p.ID, p)
}

// IndexRows indexe les lignes du registre (une par produit commandé)
func (s *Search) IndexRows(ctx context.Context, rows []models.LedgerRow) error {
	for _, r := range rows {
		if err := s.index(ctx, LedgerIndex, r.OrderID+"#"+strconv.Itoa(r.LineNo), r); err != nil {
			return err
		}
	}
	return nil
}

// SearchProducts cherche par nom, catégorie, fournisseur ou identifiant
func (s *Search) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	hits, err := s.search(ctx, ProductIndex, query, []string{"name^3", "category", "supplier", "id"})
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(hits))
	for _, h := range hits {
		var p models.Product
		if err := json.Unmarshal(h, &p); err == nil {
			products = append(products, p)
		}
	}
	return products, nil
}

// SearchOrderIDs retourne les identifiants de commande dont une ligne correspond
func (s *Search) SearchOrderIDs(ctx context.Context, query string) ([]string, error) {
	hits, err := s.search(ctx, LedgerIndex, query, []string{"orderId", "supplier", "orderer", "productName"})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var ids []string
	for _, h := range hits {
		var r models.LedgerRow
		if err := json.Unmarshal(h, &r); err != nil || seen[r.OrderID] {
			continue
		}
		seen[r.OrderID] = true
		ids = append(ids, r.OrderID)
	}
	return ids, nil
}

func (s *Search) index(ctx context.Context, index, id string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("indexation %s/%s: %w", index, id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("indexation %s/%s: %s", index, id, res.Status())
	}
	return nil
}

func (s *Search) search(ctx context.Context, index, query string, fields []string) ([]json.RawMessage, error) {
	var buf bytes.Buffer
	q := map[string]interface{}{
		"size": 200,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":   query,
				"fields":  fields,
				"type":    "phrase_prefix",
				"lenient": true,
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %v", err)
	}

	req := esapi.SearchRequest{Index: []string{index}, Body: &buf}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %v", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, errors.New("index non trouvé ou vide")
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %v", err)
	}
	out := make([]json.RawMessage, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

// FilterProducts est la recherche de repli sans Elasticsearch :
// sous-chaîne insensible à la casse sur nom, identifiant, catégorie et fournisseur
func FilterProducts(products []models.Product, query string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products
	}
	var out []models.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.ID), q) ||
			strings.Contains(strings.ToLower(p.Category), q) ||
			strings.Contains(strings.ToLower(p.Supplier), q) {
			out = append(out, p)
		}
	}
	return out
}
