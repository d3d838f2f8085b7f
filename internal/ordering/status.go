package ordering

import "supply_order_back_end/internal/models"

// DeriveStatus calcule le statut agrégé d'une commande à partir de ses lignes.
// Toujours recalculé, jamais stocké.
func DeriveStatus(rows []models.LedgerRow) models.OrderStatus {
	received := 0
	for _, r := range rows {
		if r.Status == models.RowReceived {
			received++
		}
	}
	switch {
	case len(rows) > 0 && received == len(rows):
		return models.OrderReceived
	case received == 0:
		return models.OrderPending
	default:
		return models.OrderPartial
	}
}
