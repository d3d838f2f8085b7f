package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supply_order_back_end/internal/models"
	"supply_order_back_end/internal/store"
)

type stubSearch struct {
	products []models.Product
	err      error
}

func (s stubSearch) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	return s.products, s.err
}

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/products", h.ListProducts)
	r.GET("/api/products/search", h.SearchProducts)
	r.GET("/api/employees", h.ListEmployees)
	r.GET("/api/employees/:code", h.GetEmployee)
	return r
}

func newHandler() *Handler {
	m := store.NewMemoryStore()
	m.Seed(
		[]models.Product{
			{ID: "1", Name: "軍手", Supplier: "山田商店", Price: 120},
			{ID: "2", Name: "切削油", Supplier: "東邦化学", Price: 4200},
		},
		[]models.Employee{{ID: "1001", Name: "佐藤", Factory: "第一工場"}},
	)
	return &Handler{Products: m, Employees: m}
}

func get(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestListProducts(t *testing.T) {
	w, body := get(t, setupRouter(newHandler()), "/api/products")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["count"])
}

func TestSearchProducts_MemoryFallback(t *testing.T) {
	h := newHandler()
	h.Search = stubSearch{err: errors.New("elastic indisponible")}

	w, body := get(t, setupRouter(h), "/api/products/search?q=東邦")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "memory", body["source"])
	assert.Equal(t, float64(1), body["count"])
}

func TestSearchProducts_Elastic(t *testing.T) {
	h := newHandler()
	h.Search = stubSearch{products: []models.Product{{ID: "2", Name: "切削油"}}}

	_, body := get(t, setupRouter(h), "/api/products/search?q=油")

	assert.Equal(t, "elastic", body["source"])
	assert.Equal(t, float64(1), body["count"])
}

func TestGetEmployee(t *testing.T) {
	r := setupRouter(newHandler())

	w, body := get(t, r, "/api/employees/1001")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1001 佐藤", body["displayName"])

	w, _ = get(t, r, "/api/employees/10")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = get(t, r, "/api/employees/9999")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestListEmployees(t *testing.T) {
	_, body := get(t, setupRouter(newHandler()), "/api/employees")
	assert.Len(t, body["employees"], 1)
}
