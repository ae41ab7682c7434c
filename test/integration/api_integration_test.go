package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"product-catalog/internal/handler"
	"product-catalog/internal/model"
	"product-catalog/internal/repository"
	"product-catalog/internal/router"
	"product-catalog/internal/service"
	"product-catalog/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalogueProducts = []model.Product{
	{ID: "1", Title: "iPhone 9", Description: "An apple mobile", Price: 549, Category: "smartphones", Stock: 94},
	{ID: "2", Title: "Phone stand", Description: "Desk stand", Price: 45, Category: "accessories", Stock: 10},
	{ID: "3", Title: "Mascara", Description: "Lengthening", Price: 9.99, Category: "beauty", Stock: 5},
}

func setupTestServer(t *testing.T, kv storage.KV, catalogue *FakeCatalogue) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	store := repository.NewLocalProductStore(kv, "addedProducts", logger)
	store.Load(context.Background())

	remote := repository.NewRemoteProductRepository(repository.RemoteConfig{
		BaseURL: catalogue.URL,
		Timeout: 5 * time.Second,
	}, nil, logger)

	productHandler := handler.NewProductHandler(service.NewProductService(store, remote, logger), logger)
	wizardHandler := handler.NewWizardHandler(service.NewWizardService(store, remote, logger), logger)

	return router.New(productHandler, wizardHandler, logger)
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

var widgetForm = map[string]any{
	"title":       "New Widget",
	"description": "Shiny",
	"price":       "19.5",
	"category":    "tools",
	"stock":       2,
}

func TestProductAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	catalogue := NewFakeCatalogue(t, catalogueProducts)
	kv := testDB.OpenKV(t)
	server := setupTestServer(t, kv, catalogue)

	t.Run("GET /health", func(t *testing.T) {
		w := do(t, server, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("GET /api/products lists the catalogue", func(t *testing.T) {
		w := do(t, server, http.MethodGet, "/api/products", nil)
		require.Equal(t, http.StatusOK, w.Code)

		list := decode[model.ProductList](t, w)
		assert.Len(t, list.Products, 3)
		assert.Equal(t, 0, list.LocalCount)
		assert.Equal(t, 3, list.RemoteCount)
	})

	t.Run("Search applies the title predicate after the remote search", func(t *testing.T) {
		// The catalogue also matches descriptions; the list keeps title matches only.
		w := do(t, server, http.MethodGet, "/api/products?q=apple", nil)
		require.Equal(t, http.StatusOK, w.Code)

		list := decode[model.ProductList](t, w)
		assert.Empty(t, list.Products)
	})

	t.Run("Invalid filters are rejected", func(t *testing.T) {
		w := do(t, server, http.MethodGet, "/api/products?price=free", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = do(t, server, http.MethodGet, "/api/products?startDate=2026-10-15&endDate=2026-10-01", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown route", func(t *testing.T) {
		w := do(t, server, http.MethodDelete, "/api/products", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestWizardAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)

	t.Run("Create flow persists and lists the product first", func(t *testing.T) {
		catalogue := NewFakeCatalogue(t, catalogueProducts)
		kv := testDB.OpenKV(t)
		server := setupTestServer(t, kv, catalogue)

		w := do(t, server, http.MethodPost, "/api/wizard", nil)
		require.Equal(t, http.StatusCreated, w.Code)
		session := decode[service.Session](t, w)

		w = do(t, server, http.MethodGet, "/api/wizard/"+session.ID+"/review", nil)
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, model.ErrCodeNoDraft, decode[model.ErrorResponse](t, w).Error)

		w = do(t, server, http.MethodPost, "/api/wizard/"+session.ID+"/submit", map[string]any{
			"form":      map[string]any{"title": "", "price": "abc"},
			"startDate": "2026-10-01",
			"endDate":   "2026-10-15",
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		fields := decode[model.ErrorResponse](t, w).Fields
		assert.Equal(t, "Title is required", fields["title"])
		assert.Equal(t, "Price must be a number", fields["price"])

		w = do(t, server, http.MethodPost, "/api/wizard/"+session.ID+"/submit", map[string]any{
			"form":      widgetForm,
			"startDate": "2026-10-01",
			"endDate":   "2026-10-15",
		})
		require.Equal(t, http.StatusOK, w.Code)
		reviewing := decode[service.Session](t, w)
		require.NotNil(t, reviewing.Draft)
		assert.Equal(t, 19.5, reviewing.Draft.Price)

		w = do(t, server, http.MethodPost, "/api/wizard/"+session.ID+"/confirm", map[string]any{"form": widgetForm})
		require.Equal(t, http.StatusCreated, w.Code)
		var created struct {
			Product model.Product `json:"product"`
			Message string        `json:"message"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.Equal(t, model.ProductID("101"), created.Product.ID)
		assert.Equal(t, "Product created with ID: 101", created.Message)

		requests := catalogue.Created()
		require.Len(t, requests, 1)
		assert.Equal(t, "2026-10-01", requests[0].CreatedFromStartDate)
		assert.Equal(t, "2026-10-15", requests[0].CreatedFromEndDate)

		w = do(t, server, http.MethodGet, "/api/wizard/"+session.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, "finished session is closed")

		// A fresh server on the same storage simulates a reload.
		reloaded := setupTestServer(t, testDB.OpenKV(t), catalogue)
		w = do(t, reloaded, http.MethodGet, "/api/products", nil)
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[model.ProductList](t, w)
		require.Len(t, list.Products, 4)
		assert.Equal(t, model.ProductID("101"), list.Products[0].ID)
		assert.Equal(t, 1, list.LocalCount)

		w = do(t, reloaded, http.MethodGet, "/api/products?price=below-50", nil)
		list = decode[model.ProductList](t, w)
		assert.Equal(t, 1, list.LocalCount)
		assert.Equal(t, model.ProductID("101"), list.Products[0].ID)
	})

	t.Run("Creation failure keeps the draft for retry", func(t *testing.T) {
		catalogue := NewFakeCatalogue(t, catalogueProducts)
		catalogue.FailAdds(true)
		server := setupTestServer(t, storage.NewMemoryKV(), catalogue)

		session := decode[service.Session](t, do(t, server, http.MethodPost, "/api/wizard", nil))
		w := do(t, server, http.MethodPost, "/api/wizard/"+session.ID+"/submit", map[string]any{"form": widgetForm})
		require.Equal(t, http.StatusOK, w.Code)

		w = do(t, server, http.MethodPost, "/api/wizard/"+session.ID+"/confirm", map[string]any{"form": widgetForm})
		require.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "Catalogue is read-only", decode[model.ErrorResponse](t, w).Message)

		w = do(t, server, http.MethodGet, "/api/wizard/"+session.ID+"/review", nil)
		require.Equal(t, http.StatusOK, w.Code)
		review := decode[service.Session](t, w)
		assert.Equal(t, "Catalogue is read-only", review.Message)

		catalogue.FailAdds(false)
		w = do(t, server, http.MethodPost, "/api/wizard/"+session.ID+"/confirm", map[string]any{"form": widgetForm})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Cancel leaves data unchanged", func(t *testing.T) {
		catalogue := NewFakeCatalogue(t, catalogueProducts)
		server := setupTestServer(t, storage.NewMemoryKV(), catalogue)

		session := decode[service.Session](t, do(t, server, http.MethodPost, "/api/wizard", nil))
		do(t, server, http.MethodPost, "/api/wizard/"+session.ID+"/submit", map[string]any{"form": widgetForm})

		w := do(t, server, http.MethodPost, "/api/wizard/"+session.ID+"/cancel", nil)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Empty(t, catalogue.Created())
		w = do(t, server, http.MethodGet, "/api/products/local", nil)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}
