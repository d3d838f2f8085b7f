package orders

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"supply_order_back_end/internal/handlers"
	"supply_order_back_end/internal/models"
	"supply_order_back_end/internal/ordering"
)

// DocumentLocator retrouve le bon archivé d'une commande
type DocumentLocator interface {
	DocumentURL(ctx context.Context, orderID string) (string, error)
}

type Handler struct {
	Orders    *ordering.Service
	Documents DocumentLocator
	Events    EventSource
	Origins   []string
}

func summaries(list []models.OrderSummary) []models.OrderSummary {
	if list == nil {
		return []models.OrderSummary{}
	}
	return list
}

// SubmitOrder POST /api/orders
func (h *Handler) SubmitOrder(c *gin.Context) {
	var req ordering.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}

	result, err := h.Orders.Submit(c.Request.Context(), req)
	if err != nil {
		c.JSON(handlers.ErrorStatus(c, err, &result.Message), result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListOrders GET /api/orders?tab=all|pending|received&q=
func (h *Handler) ListOrders(c *gin.Context) {
	list, err := h.Orders.History(c.Request.Context(), ordering.ParseTab(c.Query("tab")), c.Query("q"))
	if err != nil {
		handlers.FailErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": summaries(list)})
}

// PendingOrders GET /api/orders/pending?q=
func (h *Handler) PendingOrders(c *gin.Context) {
	list, err := h.Orders.Pending(c.Request.Context(), c.Query("q"))
	if err != nil {
		handlers.FailErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": summaries(list)})
}

// GetOrder GET /api/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.Orders.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.FailErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// ScanOrder POST /api/orders/scan {"code": "..."}
func (h *Handler) ScanOrder(c *gin.Context) {
	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Code manquant")
		return
	}

	list, err := h.Orders.Scan(c.Request.Context(), input.Code)
	if err != nil {
		handlers.FailErr(c, err)
		return
	}
	if len(list) == 0 {
		handlers.Fail(c, http.StatusNotFound, ordering.ErrOrderNotFound.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orderId": ordering.ParseScan(input.Code), "orders": list})
}

// ReceiveOrder POST /api/orders/:id/receive
// Sans corps ou sans "items" : toutes les lignes en attente ; sinon seuls les produits listés.
func (h *Handler) ReceiveOrder(c *gin.Context) {
	var input struct {
		Items []string `json:"items"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}

	result, err := h.Orders.Receive(c.Request.Context(), c.Param("id"), input.Items)
	if err != nil {
		c.JSON(handlers.ErrorStatus(c, err, &result.Message), result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// OrderQRCode GET /api/orders/:id/qrcode (PNG, ou JSON avec ?format=json)
func (h *Handler) OrderQRCode(c *gin.Context) {
	payload, png, err := h.Orders.CodeFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.FailErr(c, err)
		return
	}
	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, gin.H{"success": true, "payload": payload})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// OrderDocument GET /api/orders/:id/document
// Redirige vers le bon archivé s'il existe, sinon le régénère.
func (h *Handler) OrderDocument(c *gin.Context) {
	ctx := c.Request.Context()
	orderID := c.Param("id")

	if h.Documents != nil {
		if url, err := h.Documents.DocumentURL(ctx, orderID); err == nil {
			c.Redirect(http.StatusFound, url)
			return
		}
	}

	prepared, err := h.Orders.RebuildDocument(ctx, orderID)
	if err != nil {
		handlers.FailErr(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+prepared.Document.FileName+`"`)
	c.Data(http.StatusOK, prepared.Document.ContentType, prepared.Document.Data)
}
