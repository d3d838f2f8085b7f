package utils

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"supply_order_back_end/internal/models"
)

// Actions d'audit
const (
	ActionProductCreate = "product.create"
	ActionProductUpdate = "product.update"
	ActionProductImage  = "product.image"
	ActionLoginSuccess  = "auth.login_success"
	ActionLoginFailed   = "auth.login_failed"
)

// Ressources d'audit
const (
	ResourceProduct = "product"
	ResourceAuth    = "auth"
)

// AuditRecorder persiste une entrée d'audit
type AuditRecorder interface {
	RecordAudit(ctx context.Context, e models.AuditEntry) error
}

// NewAuditEntry construit l'entrée à partir de la requête ; old/new sont sérialisés en JSON
func NewAuditEntry(c *gin.Context, action, resource, resourceID string, oldValue, newValue interface{}) models.AuditEntry {
	actor := c.GetString("admin_subject")
	if actor == "" {
		actor = "anonymous"
	}
	return models.AuditEntry{
		ID:         uuid.NewString(),
		Actor:      actor,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OldValue:   toJSON(oldValue),
		NewValue:   toJSON(newValue),
		IPAddress:  c.ClientIP(),
		Timestamp:  time.Now(),
	}
}

// LogAction enregistre l'action ; un échec est journalisé sans interrompre la requête
func LogAction(c *gin.Context, rec AuditRecorder, action, resource, resourceID string, oldValue, newValue interface{}) {
	entry := NewAuditEntry(c, action, resource, resourceID, oldValue, newValue)
	if err := rec.RecordAudit(c.Request.Context(), entry); err != nil {
		log.Printf("❌ Erreur enregistrement log audit: %v", err)
	}
}

func toJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
