package carts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supply_order_back_end/internal/cart"
	"supply_order_back_end/internal/handlers"
	"supply_order_back_end/internal/models"
	"supply_order_back_end/internal/ordering"
	"supply_order_back_end/internal/store"
	"supply_order_back_end/internal/utils"
)

type testEnv struct {
	router  *gin.Engine
	handler *Handler
	ledger  *store.MemoryStore
}

func setup(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := store.NewMemoryStore()
	m.Seed(
		[]models.Product{
			{ID: "1", Name: "軍手", Supplier: "山田商店", Price: 120, Unit: "双"},
			{ID: "2", Name: "切削油", Supplier: "東邦化学", Price: 4200, Unit: "缶"},
		},
		[]models.Employee{{ID: "1001", Name: "佐藤"}},
	)
	svc := ordering.NewService(m, m, m, utils.HTMLRenderer{})

	h := &Handler{Carts: cart.NewRedisStore(client, time.Hour), Products: m, Orders: svc}
	r := gin.New()
	r.POST("/api/carts", h.CreateCart)
	r.GET("/api/carts/:cartId", h.GetCart)
	r.DELETE("/api/carts/:cartId", h.ClearCart)
	r.POST("/api/carts/:cartId/items", h.AddItem)
	r.PATCH("/api/carts/:cartId/items/:productId", h.UpdateItem)
	r.POST("/api/carts/:cartId/items/:productId/urgency", h.ToggleUrgency)
	r.DELETE("/api/carts/:cartId/items/:productId", h.RemoveItem)
	r.POST("/api/carts/:cartId/checkout", h.Checkout)
	return testEnv{router: r, handler: h, ledger: m}
}

func (e testEnv) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w.Code, out
}

func (e testEnv) newCart(t *testing.T) string {
	t.Helper()
	code, body := e.do(t, http.MethodPost, "/api/carts", nil)
	require.Equal(t, http.StatusCreated, code)
	return body["cart"].(map[string]interface{})["id"].(string)
}

func totals(body map[string]interface{}) map[string]interface{} {
	return body["totals"].(map[string]interface{})
}

func TestCartLifecycle(t *testing.T) {
	e := setup(t)
	id := e.newCart(t)
	base := "/api/carts/" + id

	code, body := e.do(t, http.MethodPost, base+"/items", gin.H{"productId": "1"})
	require.Equal(t, http.StatusOK, code)
	code, body = e.do(t, http.MethodPost, base+"/items", gin.H{"productId": "1", "quantity": 2})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), totals(body)["itemCount"])

	code, body = e.do(t, http.MethodPatch, base+"/items/1", gin.H{"delta": -1})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(240), totals(body)["total"])

	code, _ = e.do(t, http.MethodPost, base+"/items/1/urgency", nil)
	require.Equal(t, http.StatusOK, code)

	code, body = e.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, code)
	items := body["cart"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, true, items[0].(map[string]interface{})["isUrgent"])

	code, body = e.do(t, http.MethodDelete, base+"/items/1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), totals(body)["count"])
}

func TestCartErrors(t *testing.T) {
	e := setup(t)
	id := e.newCart(t)
	base := "/api/carts/" + id

	code, _ := e.do(t, http.MethodGet, "/api/carts/inconnu", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = e.do(t, http.MethodPost, base+"/items", gin.H{"productId": "404"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = e.do(t, http.MethodPatch, base+"/items/1", gin.H{"delta": 1, "quantity": 2})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(t, http.MethodPatch, base+"/items/1", gin.H{"delta": 1})
	assert.Equal(t, http.StatusNotFound, code)

	code, body := e.do(t, http.MethodPost, base+"/checkout", gin.H{"requesterId": "1001"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
}

func TestCheckout(t *testing.T) {
	e := setup(t)
	id := e.newCart(t)
	base := "/api/carts/" + id

	e.do(t, http.MethodPost, base+"/items", gin.H{"productId": "1", "quantity": 2})
	e.do(t, http.MethodPost, base+"/items", gin.H{"productId": "2"})

	code, body := e.do(t, http.MethodPost, base+"/checkout", gin.H{"requesterId": "9999"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = e.do(t, http.MethodPost, base+"/checkout", gin.H{"requesterId": "1001"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["orders"], 2)
	assert.Equal(t, float64(2), body["rowsWritten"])

	rows, err := e.ledger.ListRows(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, body = e.do(t, http.MethodGet, base, nil)
	assert.Equal(t, float64(0), totals(body)["count"], "panier vidé après envoi")
}

func TestCheckout_LegacyMixedSuppliersKeepsCart(t *testing.T) {
	e := setup(t)
	id := e.newCart(t)
	base := "/api/carts/" + id

	e.do(t, http.MethodPost, base+"/items", gin.H{"productId": "1"})
	e.do(t, http.MethodPost, base+"/items", gin.H{"productId": "2"})

	code, _ := e.do(t, http.MethodPost, base+"/checkout", gin.H{"requesterId": "1001", "legacy": true})
	assert.Equal(t, http.StatusBadRequest, code)

	_, body := e.do(t, http.MethodGet, base, nil)
	assert.Equal(t, float64(2), totals(body)["count"])
}

type quotaLedger struct {
	*store.MemoryStore
}

func (quotaLedger) AppendRow(ctx context.Context, row models.LedgerRow) error {
	return errors.New(`append: POST "https://script.google.com/macros/s/SECRET/exec": 429 quota exceeded`)
}

func TestCheckout_LedgerFailureKeepsCart(t *testing.T) {
	e := setup(t)
	e.handler.Orders = ordering.NewService(e.ledger, e.ledger, quotaLedger{e.ledger}, utils.HTMLRenderer{})
	id := e.newCart(t)
	base := "/api/carts/" + id

	e.do(t, http.MethodPost, base+"/items", gin.H{"productId": "1"})

	code, body := e.do(t, http.MethodPost, base+"/checkout", gin.H{"requesterId": "1001"})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, handlers.TransportMessage, body["message"])
	assert.Equal(t, float64(0), body["rowsWritten"])

	_, body = e.do(t, http.MethodGet, base, nil)
	assert.Equal(t, float64(1), totals(body)["count"])
}
