package admin

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"supply_order_back_end/internal/handlers"
	"supply_order_back_end/internal/models"
	"supply_order_back_end/internal/store"
	"supply_order_back_end/internal/utils"
)

// MaxImageSize est la taille maximale d'une image produit
const MaxImageSize = 5 << 20

// productInput est le formulaire d'enregistrement et de modification d'un produit
type productInput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price"`
	Unit        string   `json:"unit"`
	Supplier    string   `json:"supplier"`
	StockStatus string   `json:"stockStatus"`
	Image       string   `json:"image"`
}

func (in productInput) validate() string {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return "Le nom du produit est requis"
	case in.Price == nil:
		return "Le prix est requis"
	case *in.Price < 0:
		return "Le prix doit être positif"
	case strings.TrimSpace(in.Supplier) == "":
		return "Le fournisseur est requis"
	}
	return ""
}

func (in productInput) product(id string) models.Product {
	p := models.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.TrimSpace(in.Category),
		Price:       *in.Price,
		Unit:        strings.TrimSpace(in.Unit),
		Supplier:    strings.TrimSpace(in.Supplier),
		StockStatus: in.StockStatus,
		Image:       utils.NormalizeDriveImage(in.Image),
	}
	if p.Category == "" {
		p.Category = models.AdminCategory
	}
	if p.Unit == "" {
		p.Unit = models.DefaultUnit
	}
	if p.StockStatus == "" {
		p.StockStatus = models.DefaultStockStatus
	}
	return p
}

func (h *Handler) reindex(c *gin.Context, p models.Product) {
	if h.Search == nil {
		return
	}
	if err := h.Search.IndexProduct(c.Request.Context(), p); err != nil {
		log.Printf("⚠️ Indexation du produit %s échouée: %v", p.ID, err)
	}
}

// CreateProduct POST /api/admin/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}
	if msg := input.validate(); msg != "" {
		handlers.Fail(c, http.StatusBadRequest, msg)
		return
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.NewString()
	}
	p := input.product(id)
	now := h.now()
	p.UpdatedAt = &now

	if err := h.Products.CreateProduct(c.Request.Context(), p); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			handlers.Fail(c, http.StatusConflict, "Un produit avec cet identifiant existe déjà")
			return
		}
		handlers.FailErr(c, err)
		return
	}

	log.Printf("📦 Produit enregistré: %s (%s)", p.Name, p.ID)
	h.audit(c, utils.ActionProductCreate, utils.ResourceProduct, p.ID, nil, p)
	h.reindex(c, p)

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Produit enregistré", "product": p})
}

// UpdateProduct PUT /api/admin/products/:id
// Remplace tous les champs modifiables et trace l'ancienne et la nouvelle valeur.
func (h *Handler) UpdateProduct(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}
	if msg := input.validate(); msg != "" {
		handlers.Fail(c, http.StatusBadRequest, msg)
		return
	}

	old, err := h.Products.GetProduct(ctx, id)
	if err != nil {
		handlers.FailErr(c, err)
		return
	}

	p := input.product(id)
	if input.Category == "" {
		p.Category = old.Category
	}
	if input.Image == "" {
		p.Image = old.Image
	}
	now := h.now()
	p.UpdatedAt = &now

	if err := h.Products.UpdateProduct(ctx, p); err != nil {
		handlers.FailErr(c, err)
		return
	}

	h.audit(c, utils.ActionProductUpdate, utils.ResourceProduct, id, old, p)
	h.reindex(c, p)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Produit mis à jour", "product": p})
}

// UploadImage POST /api/admin/products/image
// Accepte un fichier multipart "image" ou un JSON {"image": "data:image/...;base64,..."}.
func (h *Handler) UploadImage(c *gin.Context) {
	if h.Images == nil {
		handlers.Fail(c, http.StatusServiceUnavailable, "Stockage d'images non configuré")
		return
	}
	ctx := c.Request.Context()

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			handlers.Fail(c, http.StatusBadRequest, "Aucun fichier reçu")
			return
		}
		if fileHeader.Size > MaxImageSize {
			handlers.Fail(c, http.StatusRequestEntityTooLarge, "Image trop volumineuse (5 Mo max)")
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			handlers.Fail(c, http.StatusInternalServerError, "Erreur ouverture fichier")
			return
		}
		defer file.Close()

		url, err := h.Images.UploadImage(ctx, fileHeader.Filename, file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			log.Printf("❌ Erreur upload MinIO: %v", err)
			handlers.Fail(c, http.StatusBadGateway, "Erreur upload image")
			return
		}
		h.audit(c, utils.ActionProductImage, utils.ResourceProduct, "", nil, url)
		c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
		return
	}

	var input struct {
		Image    string `json:"image" binding:"required"`
		FileName string `json:"fileName"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Aucune image reçue")
		return
	}
	data, contentType, err := decodeDataURL(input.Image)
	if err != nil {
		handlers.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(data) > MaxImageSize {
		handlers.Fail(c, http.StatusRequestEntityTooLarge, "Image trop volumineuse (5 Mo max)")
		return
	}
	name := input.FileName
	if name == "" {
		name = "image" + extensionFor(contentType)
	}

	url, err := h.Images.UploadImage(ctx, name, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		log.Printf("❌ Erreur upload MinIO: %v", err)
		handlers.Fail(c, http.StatusBadGateway, "Erreur upload image")
		return
	}
	h.audit(c, utils.ActionProductImage, utils.ResourceProduct, "", nil, url)
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}

// decodeDataURL décode "data:<type>;base64,<données>" ; une chaîne base64 nue est acceptée
func decodeDataURL(raw string) ([]byte, string, error) {
	contentType := "application/octet-stream"
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		header, body, ok := strings.Cut(raw, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, "", errors.New("Format d'image invalide")
		}
		contentType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		payload = body
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", errors.New("Image base64 invalide")
	}
	return data, contentType, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ""
}
