package models

import "time"

// Types d'événements publiés sur le canal du registre
const (
	EventOrderSubmitted = "order.submitted"
	EventOrderReceived  = "order.received"
)

// LedgerEvent signale une modification du registre aux pages de réception ouvertes
type LedgerEvent struct {
	Type     string      `json:"type"`
	OrderID  string      `json:"orderId"`
	Supplier string      `json:"supplier,omitempty"`
	Status   OrderStatus `json:"status"`
	Changed  int         `json:"changed"`
	At       time.Time   `json:"at"`
}
