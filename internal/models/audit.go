package models

import "time"

// AuditEntry trace une modification du catalogue (l'"historique" des produits)
type AuditEntry struct {
	ID         string    `json:"id"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId,omitempty"`
	OldValue   string    `json:"oldValue,omitempty"`
	NewValue   string    `json:"newValue,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
