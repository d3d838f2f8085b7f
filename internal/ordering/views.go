package ordering

import (
	"encoding/json"
	"sort"
	"strings"

	"supply_order_back_end/internal/models"
)

// Onglets de l'historique
type HistoryTab string

const (
	TabAll      HistoryTab = "all"
	TabPending  HistoryTab = "pending"
	TabReceived HistoryTab = "received"
)

// ParseTab retourne l'onglet correspondant, TabAll par défaut
func ParseTab(s string) HistoryTab {
	switch HistoryTab(strings.ToLower(s)) {
	case TabPending:
		return TabPending
	case TabReceived:
		return TabReceived
	}
	return TabAll
}

// GroupRows regroupe les lignes par identifiant de commande, dans l'ordre de première apparition
func GroupRows(rows []models.LedgerRow) []models.OrderSummary {
	var summaries []models.OrderSummary
	index := make(map[string]int)

	for _, r := range rows {
		i, ok := index[r.OrderID]
		if !ok {
			i = len(summaries)
			index[r.OrderID] = i
			summaries = append(summaries, models.OrderSummary{
				ID:       r.OrderID,
				Date:     r.Timestamp,
				Supplier: r.Supplier,
				Orderer:  r.Orderer,
			})
		}
		summaries[i].Items = append(summaries[i].Items, r)
	}

	for i := range summaries {
		summaries[i].Status = DeriveStatus(summaries[i].Items)
	}
	return summaries
}

// History applique l'onglet ligne par ligne, regroupe, filtre par terme puis trie du plus récent au plus ancien
func History(rows []models.LedgerRow, tab HistoryTab, query string) []models.OrderSummary {
	filtered := make([]models.LedgerRow, 0, len(rows))
	for _, r := range rows {
		switch tab {
		case TabPending:
			if r.Status != models.RowPending {
				continue
			}
		case TabReceived:
			if r.Status != models.RowReceived {
				continue
			}
		}
		filtered = append(filtered, r)
	}

	var out []models.OrderSummary
	for _, s := range GroupRows(filtered) {
		if matchesHistory(s, query) {
			out = append(out, s)
		}
	}
	sortByDateDesc(out)
	return out
}

// PendingOrders est la vue de réception : seules les lignes en attente
func PendingOrders(rows []models.LedgerRow, query string) []models.OrderSummary {
	var pending []models.LedgerRow
	for _, r := range rows {
		if r.Status == models.RowPending {
			pending = append(pending, r)
		}
	}

	var out []models.OrderSummary
	for _, s := range GroupRows(pending) {
		if matchesPending(s, query) {
			out = append(out, s)
		}
	}
	sortByDateDesc(out)
	return out
}

// ParseScan extrait l'identifiant de commande d'un texte scanné.
// Un objet JSON avec un champ id (texte ou nombre) donne cet id ; tout autre texte est renvoyé tel quel.
func ParseScan(text string) string {
	text = strings.TrimSpace(text)
	var payload map[string]interface{}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return text
	}
	var id string
	switch v := payload["id"].(type) {
	case string:
		id = strings.TrimSpace(v)
	case json.Number:
		id = v.String()
	}
	if id == "" {
		return text
	}
	return id
}

func matchesHistory(s models.OrderSummary, query string) bool {
	if matchesPending(s, query) {
		return true
	}
	q := strings.ToLower(strings.TrimSpace(query))
	for _, item := range s.Items {
		if strings.Contains(strings.ToLower(item.ProductName), q) {
			return true
		}
	}
	return false
}

func matchesPending(s models.OrderSummary, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(searchKey(s.ID), searchKey(q)) ||
		strings.Contains(strings.ToLower(s.Supplier), q) ||
		strings.Contains(strings.ToLower(s.Orderer), q)
}

func sortByDateDesc(summaries []models.OrderSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Date.After(summaries[j].Date)
	})
}
