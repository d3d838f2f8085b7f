package carts

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"supply_order_back_end/internal/cart"
	"supply_order_back_end/internal/handlers"
	"supply_order_back_end/internal/ordering"
	"supply_order_back_end/internal/store"
)

type Handler struct {
	Carts    cart.Store
	Products store.ProductStore
	Orders   *ordering.Service
	Watch    Watcher // nil sans Redis
	Origins  []string
}

func respond(c *gin.Context, status int, ct *cart.Cart, message string) {
	body := gin.H{"success": true, "cart": ct, "totals": ct.Totals()}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// mutate charge le panier, applique fn puis sauvegarde
func (h *Handler) mutate(c *gin.Context, message string, fn func(ct *cart.Cart) error) {
	ctx := c.Request.Context()
	ct, err := h.Carts.Load(ctx, c.Param("cartId"))
	if err != nil {
		handlers.FailErr(c, err)
		return
	}
	if err := fn(ct); err != nil {
		handlers.FailErr(c, err)
		return
	}
	if err := h.Carts.Save(ctx, ct); err != nil {
		handlers.FailErr(c, err)
		return
	}
	respond(c, http.StatusOK, ct, message)
}

// CreateCart POST /api/carts
func (h *Handler) CreateCart(c *gin.Context) {
	ct, err := h.Carts.Create(c.Request.Context())
	if err != nil {
		handlers.FailErr(c, err)
		return
	}
	respond(c, http.StatusCreated, ct, "Panier créé")
}

// GetCart GET /api/carts/:cartId
func (h *Handler) GetCart(c *gin.Context) {
	ct, err := h.Carts.Load(c.Request.Context(), c.Param("cartId"))
	if err != nil {
		handlers.FailErr(c, err)
		return
	}
	respond(c, http.StatusOK, ct, "")
}

// AddItem POST /api/carts/:cartId/items
func (h *Handler) AddItem(c *gin.Context) {
	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"omitempty,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	product, err := h.Products.GetProduct(c.Request.Context(), input.ProductID)
	if errors.Is(err, store.ErrNotFound) {
		handlers.Fail(c, http.StatusNotFound, "Produit introuvable")
		return
	}
	if err != nil {
		handlers.FailErr(c, err)
		return
	}

	h.mutate(c, "Produit ajouté au panier", func(ct *cart.Cart) error {
		return ct.Add(*product, input.Quantity)
	})
}

// UpdateItem PATCH /api/carts/:cartId/items/:productId
// Corps : {"delta": n} ou {"quantity": n} ; la ligne disparaît à 0.
func (h *Handler) UpdateItem(c *gin.Context) {
	var input struct {
		Delta    *int `json:"delta"`
		Quantity *int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || (input.Delta == nil) == (input.Quantity == nil) {
		handlers.Fail(c, http.StatusBadRequest, "Indiquer soit delta, soit quantity")
		return
	}

	productID := c.Param("productId")
	h.mutate(c, "Quantité mise à jour", func(ct *cart.Cart) error {
		if input.Delta != nil {
			return ct.UpdateQuantity(productID, *input.Delta)
		}
		return ct.SetQuantity(productID, *input.Quantity)
	})
}

// ToggleUrgency POST /api/carts/:cartId/items/:productId/urgency
func (h *Handler) ToggleUrgency(c *gin.Context) {
	productID := c.Param("productId")
	h.mutate(c, "Urgence modifiée", func(ct *cart.Cart) error {
		return ct.ToggleUrgency(productID)
	})
}

// RemoveItem DELETE /api/carts/:cartId/items/:productId
func (h *Handler) RemoveItem(c *gin.Context) {
	productID := c.Param("productId")
	h.mutate(c, "Produit supprimé du panier", func(ct *cart.Cart) error {
		return ct.Remove(productID)
	})
}

// ClearCart DELETE /api/carts/:cartId
func (h *Handler) ClearCart(c *gin.Context) {
	h.mutate(c, "Panier vidé", func(ct *cart.Cart) error {
		ct.Clear()
		return nil
	})
}

// Checkout POST /api/carts/:cartId/checkout
// Le panier n'est vidé que si toutes les commandes ont été enregistrées.
func (h *Handler) Checkout(c *gin.Context) {
	var input struct {
		RequesterID string `json:"requesterId"`
		Legacy      bool   `json:"legacy"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}

	ctx := c.Request.Context()
	ct, err := h.Carts.Load(ctx, c.Param("cartId"))
	if err != nil {
		handlers.FailErr(c, err)
		return
	}

	req := ordering.SubmitRequest{RequesterID: input.RequesterID, Legacy: input.Legacy}
	for _, line := range ct.Lines {
		req.Items = append(req.Items, ordering.SubmitItem{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			IsUrgent:  line.IsUrgent,
		})
	}

	result, err := h.Orders.Submit(ctx, req)
	if err != nil {
		c.JSON(handlers.ErrorStatus(c, err, &result.Message), result)
		return
	}

	// Commandes déjà enregistrées : un panier non vidé est seulement journalisé
	ct.Clear()
	if err := h.Carts.Save(ctx, ct); err != nil {
		log.Printf("⚠️ Panier %s non vidé après envoi: %v", ct.ID, err)
	}
	c.JSON(http.StatusCreated, result)
}
