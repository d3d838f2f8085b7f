package ordering

import (
	"context"
	"fmt"
	"time"

	"supply_order_back_end/internal/models"
	"supply_order_back_end/internal/store"
)

// ReceiveResult décrit l'effet d'une réception sur une commande
type ReceiveResult struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	OrderID string             `json:"orderId"`
	Changed int                `json:"changed"`
	Status  models.OrderStatus `json:"status"`
	Rows    []models.LedgerRow `json:"items"`
}

// Receive passe en Received les lignes en attente de la commande.
// names == nil vise toutes les lignes en attente ; sinon seuls les noms de produit listés
// (égalité exacte). Les lignes sont mises à jour une par une, sans atomicité.
// Retourne ErrOrderNotFound si aucune ligne ne porte cet identifiant et
// ErrNothingToReceive si aucune ligne n'a changé.
func Receive(ctx context.Context, ledger store.LedgerStore, orderID string, names []string, now time.Time) (ReceiveResult, error) {
	result := ReceiveResult{OrderID: orderID}

	rows, err := ledger.RowsByOrder(ctx, orderID)
	if err != nil {
		return result, err
	}
	if len(rows) == 0 {
		result.Message = ErrOrderNotFound.Error()
		return result, ErrOrderNotFound
	}

	var wanted map[string]bool
	if names != nil {
		wanted = make(map[string]bool, len(names))
		for _, n := range names {
			wanted[n] = true
		}
	}

	for i := range rows {
		row := &rows[i]
		if row.Status == models.RowReceived {
			continue
		}
		if wanted != nil && !wanted[row.ProductName] {
			continue
		}
		if err := ledger.MarkReceived(ctx, row.OrderID, row.LineNo, now); err != nil {
			result.Status = DeriveStatus(rows)
			result.Rows = rows
			result.Message = fmt.Sprintf("réception interrompue après %d ligne(s)", result.Changed)
			return result, fmt.Errorf("réception %s ligne %d: %w", orderID, row.LineNo, err)
		}
		at := now
		row.Status = models.RowReceived
		row.ReceivedAt = &at
		result.Changed++
	}

	result.Rows = rows
	result.Status = DeriveStatus(rows)
	if result.Changed == 0 {
		result.Message = ErrNothingToReceive.Error()
		return result, ErrNothingToReceive
	}

	result.Success = true
	result.Message = fmt.Sprintf("%d ligne(s) réceptionnée(s)", result.Changed)
	return result, nil
}
