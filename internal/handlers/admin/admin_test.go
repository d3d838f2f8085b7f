package admin

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"supply_order_back_end/internal/models"
	"supply_order_back_end/internal/store"
	"supply_order_back_end/internal/utils"
)

const testSecret = "test-secret"

type fakeUploader struct {
	name        string
	contentType string
	data        []byte
	err         error
}

func (f *fakeUploader) UploadImage(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.name, f.contentType, f.data = filename, contentType, data
	return "https://minio.local/products/" + filename, nil
}

type recordingIndexer struct {
	indexed []models.Product
}

func (r *recordingIndexer) IndexProduct(ctx context.Context, p models.Product) error {
	r.indexed = append(r.indexed, p)
	return nil
}

type testEnv struct {
	router  *gin.Engine
	handler *Handler
	store   *store.MemoryStore
	index   *recordingIndexer
}

func setup(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	m := store.NewMemoryStore()
	m.Seed([]models.Product{
		{ID: "p1", Name: "軍手", Category: "消耗品", Supplier: "山田商店", Price: 120, Unit: "双", Image: "https://img/gunte.png"},
	}, nil)

	idx := &recordingIndexer{}
	h := &Handler{
		Products:     m,
		Audit:        m,
		Search:       idx,
		JWTSecret:    testSecret,
		PasswordHash: string(hash),
	}

	r := gin.New()
	r.POST("/api/admin/login", h.Login)
	r.POST("/api/admin/products", h.CreateProduct)
	r.PUT("/api/admin/products/:id", h.UpdateProduct)
	r.POST("/api/admin/products/image", h.UploadImage)
	r.GET("/api/admin/audit", h.ListAudit)
	return testEnv{router: r, handler: h, store: m, index: idx}
}

func (e testEnv) serve(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func (e testEnv) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return e.serve(t, req)
}

func (e testEnv) auditActions(t *testing.T) []string {
	t.Helper()
	entries, err := e.store.ListAudit(context.Background(), 0)
	require.NoError(t, err)
	var out []string
	for _, entry := range entries {
		out = append(out, entry.Action)
	}
	return out
}

func TestLogin(t *testing.T) {
	e := setup(t)

	code, body := e.do(t, http.MethodPost, "/api/admin/login", gin.H{"username": "kanri", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(utils.AdminTokenTTL.Seconds()), body["expires_in"])

	claims, err := utils.ParseJWT(testSecret, body["token"].(string))
	require.NoError(t, err)
	sub, _ := claims.GetSubject()
	assert.Equal(t, "kanri", sub)
	assert.Equal(t, "admin", claims["role"])

	assert.Contains(t, e.auditActions(t), utils.ActionLoginSuccess)
}

func TestLogin_Rejected(t *testing.T) {
	e := setup(t)

	code, body := e.do(t, http.MethodPost, "/api/admin/login", gin.H{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Nil(t, body["token"])
	assert.Equal(t, []string{utils.ActionLoginFailed}, e.auditActions(t))

	code, _ = e.do(t, http.MethodPost, "/api/admin/login", gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	e.handler.PasswordHash = ""
	code, _ = e.do(t, http.MethodPost, "/api/admin/login", gin.H{"password": "correct-horse"})
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestCreateProduct(t *testing.T) {
	e := setup(t)

	code, body := e.do(t, http.MethodPost, "/api/admin/products", gin.H{
		"name":     " 切削油 ",
		"price":    4200,
		"supplier": "東邦化学",
		"image":    "https://drive.google.com/file/d/abc123/view?usp=sharing",
	})
	require.Equal(t, http.StatusCreated, code, body)

	p := body["product"].(map[string]interface{})
	id := p["id"].(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, "切削油", p["name"])
	assert.Equal(t, models.AdminCategory, p["category"])
	assert.Equal(t, models.DefaultUnit, p["unit"])
	assert.Equal(t, "https://lh3.googleusercontent.com/d/abc123", p["image"])

	stored, err := e.store.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 4200.0, stored.Price)
	require.Len(t, e.index.indexed, 1)
	assert.Equal(t, id, e.index.indexed[0].ID)
	assert.Equal(t, []string{utils.ActionProductCreate}, e.auditActions(t))

	code, _ = e.do(t, http.MethodPost, "/api/admin/products", gin.H{"id": "p1", "name": "重複", "price": 1, "supplier": "X"})
	assert.Equal(t, http.StatusConflict, code)
}

func TestCreateProduct_Validation(t *testing.T) {
	e := setup(t)

	cases := []gin.H{
		{"price": 10, "supplier": "X"},
		{"name": "A", "supplier": "X"},
		{"name": "A", "price": -1, "supplier": "X"},
		{"name": "A", "price": 0},
	}
	for _, in := range cases {
		code, body := e.do(t, http.MethodPost, "/api/admin/products", in)
		assert.Equal(t, http.StatusBadRequest, code, in)
		assert.Equal(t, false, body["success"])
	}
	assert.Empty(t, e.index.indexed)
}

func TestUpdateProduct(t *testing.T) {
	e := setup(t)

	code, body := e.do(t, http.MethodPut, "/api/admin/products/p1", gin.H{
		"name":     "軍手（厚手）",
		"price":    150,
		"supplier": "山田商店",
		"unit":     "双",
	})
	require.Equal(t, http.StatusOK, code, body)

	stored, err := e.store.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "軍手（厚手）", stored.Name)
	assert.Equal(t, 150.0, stored.Price)
	assert.Equal(t, "消耗品", stored.Category)
	assert.Equal(t, "https://img/gunte.png", stored.Image)
	require.NotNil(t, stored.UpdatedAt)

	entries, err := e.store.ListAudit(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, utils.ActionProductUpdate, entries[0].Action)
	assert.Contains(t, entries[0].OldValue, "軍手")
	assert.Contains(t, entries[0].NewValue, "厚手")

	code, _ = e.do(t, http.MethodPut, "/api/admin/products/nope", gin.H{"name": "A", "price": 1, "supplier": "X"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUploadImage_Multipart(t *testing.T) {
	e := setup(t)
	up := &fakeUploader{}
	e.handler.Images = up

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "gunte.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	code, body := e.serve(t, req)

	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "https://minio.local/products/gunte.png", body["url"])
	assert.Equal(t, "\x89PNG fake", string(up.data))
	assert.Equal(t, []string{utils.ActionProductImage}, e.auditActions(t))
}

func TestUploadImage_DataURL(t *testing.T) {
	e := setup(t)
	up := &fakeUploader{}
	e.handler.Images = up

	raw := []byte{0xff, 0xd8, 0xff, 0xe0}
	code, body := e.do(t, http.MethodPost, "/api/admin/products/image", gin.H{
		"image": "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw),
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "image.jpg", up.name)
	assert.Equal(t, "image/jpeg", up.contentType)
	assert.Equal(t, raw, up.data)

	code, _ = e.do(t, http.MethodPost, "/api/admin/products/image", gin.H{"image": "data:image/png,pas-base64"})
	assert.Equal(t, http.StatusBadRequest, code)

	big := base64.StdEncoding.EncodeToString(make([]byte, MaxImageSize+1))
	code, _ = e.do(t, http.MethodPost, "/api/admin/products/image", gin.H{"image": big})
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)

	up.err = errors.New("minio indisponible")
	code, _ = e.do(t, http.MethodPost, "/api/admin/products/image", gin.H{"image": base64.StdEncoding.EncodeToString(raw)})
	assert.Equal(t, http.StatusBadGateway, code)
}

func TestUploadImage_NotConfigured(t *testing.T) {
	e := setup(t)
	code, _ := e.do(t, http.MethodPost, "/api/admin/products/image", gin.H{"image": "AAAA"})
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestListAudit(t *testing.T) {
	e := setup(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, e.store.RecordAudit(context.Background(), models.AuditEntry{
			ID:        string(rune('a' + i)),
			Action:    utils.ActionProductUpdate,
			Timestamp: time.Date(2024, 5, 1, 9, i, 0, 0, time.UTC),
		}))
	}

	code, body := e.do(t, http.MethodGet, "/api/admin/audit?limit=2", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["count"])
	logs := body["logs"].([]interface{})
	assert.Equal(t, "c", logs[0].(map[string]interface{})["id"])

	_, body = e.do(t, http.MethodGet, "/api/admin/audit?limit=abc", nil)
	assert.Equal(t, float64(3), body["count"])

	e.handler.Audit = nil
	code, _ = e.do(t, http.MethodGet, "/api/admin/audit", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
