package catalog

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"supply_order_back_end/internal/handlers"
	"supply_order_back_end/internal/models"
	"supply_order_back_end/internal/services"
	"supply_order_back_end/internal/store"
)

// Longueur minimale d'un code employé avant recherche
const minEmployeeCode = 3

// ProductSearcher est la recherche indexée (Elasticsearch)
type ProductSearcher interface {
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)
}

type Handler struct {
	Products  store.ProductStore
	Employees store.EmployeeStore
	Search    ProductSearcher
}

// ListProducts GET /api/products
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.Products.ListProducts(c.Request.Context())
	if err != nil {
		handlers.FailErr(c, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products, "count": len(products)})
}

// SearchProducts GET /api/products/search?q=
func (h *Handler) SearchProducts(c *gin.Context) {
	ctx := c.Request.Context()
	query := strings.TrimSpace(c.Query("q"))

	if query != "" && h.Search != nil {
		products, err := h.Search.SearchProducts(ctx, query)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"success": true, "products": products, "count": len(products), "source": "elastic"})
			return
		}
		log.Printf("⚠️ Recherche Elastic indisponible, filtrage en mémoire: %v", err)
	}

	all, err := h.Products.ListProducts(ctx)
	if err != nil {
		handlers.FailErr(c, err)
		return
	}
	products := services.FilterProducts(all, query)
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products, "count": len(products), "source": "memory"})
}

// ListEmployees GET /api/employees
func (h *Handler) ListEmployees(c *gin.Context) {
	employees, err := h.Employees.ListEmployees(c.Request.Context())
	if err != nil {
		handlers.FailErr(c, err)
		return
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "employees": employees})
}

// GetEmployee GET /api/employees/:code
func (h *Handler) GetEmployee(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if utf8.RuneCountInString(code) < minEmployeeCode {
		handlers.Fail(c, http.StatusBadRequest, "Code employé trop court")
		return
	}

	employee, err := store.FindEmployee(c.Request.Context(), h.Employees, code)
	if errors.Is(err, store.ErrNotFound) {
		handlers.Fail(c, http.StatusNotFound, "Employé introuvable")
		return
	}
	if err != nil {
		handlers.FailErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"employee":    employee,
		"displayName": employee.DisplayName(),
	})
}
