package models

import "time"

// RowStatus est le statut d'une ligne du registre. Seule la transition Pending → Received existe.
type RowStatus string

const (
	RowPending  RowStatus = "Pending"
	RowReceived RowStatus = "Received"
)

// OrderStatus est le statut agrégé d'une commande, recalculé à chaque lecture
type OrderStatus string

const (
	OrderPending  OrderStatus = "Pending"
	OrderPartial  OrderStatus = "Partial"
	OrderReceived OrderStatus = "Received"
)

// OrderGroup regroupe les lignes du panier destinées à un même fournisseur
type OrderGroup struct {
	ID       string     `json:"id"`
	Supplier string     `json:"supplier"`
	Lines    []CartLine `json:"lines"`
	Subtotal float64    `json:"subtotal"`
}

// ItemCount retourne le nombre total d'unités du groupe
func (g OrderGroup) ItemCount() int {
	n := 0
	for _, l := range g.Lines {
		n += l.Quantity
	}
	return n
}

// LedgerRow est une ligne persistée du registre des commandes (une par produit commandé)
type LedgerRow struct {
	OrderID          string     `json:"orderId"`
	LineNo           int        `json:"lineNo"`
	Timestamp        time.Time  `json:"date"`
	Orderer          string     `json:"orderer"`
	Supplier         string     `json:"supplier"`
	ProductName      string     `json:"productName"`
	Quantity         int        `json:"quantity"`
	Unit             string     `json:"unit"`
	IsUrgent         bool       `json:"isUrgent"`
	Status           RowStatus  `json:"status"`
	ReceivedQuantity int        `json:"receivedQuantity"`
	ReceivedAt       *time.Time `json:"receivedAt,omitempty"`
}

// OrderSummary est la vue groupée (historique / réception) d'un identifiant de commande
type OrderSummary struct {
	ID       string      `json:"id"`
	Date     time.Time   `json:"date"`
	Supplier string      `json:"supplier"`
	Orderer  string      `json:"orderer"`
	Status   OrderStatus `json:"status"`
	Items    []LedgerRow `json:"items"`
}

// CodePayload est le contenu JSON encodé dans le QR code du bon de commande
type CodePayload struct {
	ID          string  `json:"id"`
	RequesterID string  `json:"requesterId"`
	Total       float64 `json:"total"`
	ItemCount   int     `json:"itemCount"`
	Date        string  `json:"date"`
	Supplier    string  `json:"supplier"`
}
