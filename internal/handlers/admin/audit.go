package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"supply_order_back_end/internal/handlers"
	"supply_order_back_end/internal/models"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 500
)

// ListAudit GET /api/admin/audit?limit=
func (h *Handler) ListAudit(c *gin.Context) {
	if h.Audit == nil {
		handlers.Fail(c, http.StatusServiceUnavailable, "Journal d'audit indisponible")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAuditLimit)))
	if err != nil || limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	entries, err := h.Audit.ListAudit(c.Request.Context(), limit)
	if err != nil {
		handlers.FailErr(c, err)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "logs": entries, "count": len(entries)})
}
