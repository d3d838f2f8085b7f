package admin

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"supply_order_back_end/internal/handlers"
	"supply_order_back_end/internal/models"
	"supply_order_back_end/internal/store"
	"supply_order_back_end/internal/utils"
)

// ImageUploader range une image produit et retourne son URL
type ImageUploader interface {
	UploadImage(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
}

// ProductIndexer tient l'index de recherche à jour après une écriture
type ProductIndexer interface {
	IndexProduct(ctx context.Context, p models.Product) error
}

type Handler struct {
	Products     store.ProductStore
	Audit        store.AuditStore
	Images       ImageUploader
	Search       ProductIndexer
	JWTSecret    string
	PasswordHash string
	Now          func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) audit(c *gin.Context, action, resource, resourceID string, oldValue, newValue interface{}) {
	if h.Audit == nil {
		return
	}
	utils.LogAction(c, h.Audit, action, resource, resourceID, oldValue, newValue)
}

// Login POST /api/admin/login
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Mot de passe requis")
		return
	}
	if h.PasswordHash == "" || h.JWTSecret == "" {
		handlers.Fail(c, http.StatusServiceUnavailable, "Administration non configurée")
		return
	}

	ok, err := utils.VerifyPassword(input.Password, h.PasswordHash)
	if err != nil {
		log.Printf("❌ ADMIN_PASSWORD_HASH illisible: %v", err)
	}
	if !ok {
		h.audit(c, utils.ActionLoginFailed, utils.ResourceAuth, input.Username, nil, nil)
		handlers.Fail(c, http.StatusUnauthorized, "Identifiants invalides")
		return
	}

	subject := input.Username
	if subject == "" {
		subject = "admin"
	}
	token, err := utils.GenerateAdminJWT(h.JWTSecret, subject, h.now())
	if err != nil {
		log.Printf("❌ Erreur génération token: %v", err)
		handlers.Fail(c, http.StatusInternalServerError, "Erreur génération token")
		return
	}

	c.Set("admin_subject", subject)
	h.audit(c, utils.ActionLoginSuccess, utils.ResourceAuth, subject, nil, nil)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      token,
		"expires_in": int(utils.AdminTokenTTL.Seconds()),
	})
}
