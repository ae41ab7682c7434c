package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/model"
	"product-catalog/internal/storage"

	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Config    config.DatabaseConfig
}

// SetupTestDB starts a PostgreSQL test container.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}

	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	return &TestDB{
		Container: postgresContainer,
		Config: config.DatabaseConfig{
			Host:            host,
			Port:            port.Int(),
			User:            "testuser",
			Password:        "testpass",
			Database:        "testdb",
			MaxConnections:  10,
			MinConnections:  2,
			MaxConnLifetime: 300,
		},
	}
}

// OpenKV opens a postgres-backed KV on the test database.
func (db *TestDB) OpenKV(t *testing.T) storage.KV {
	t.Helper()

	kv, err := storage.OpenPostgres(context.Background(), db.Config, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open postgres storage: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

// FakeCatalogue is an in-memory dummyjson-compatible product API.
type FakeCatalogue struct {
	*httptest.Server

	mu       sync.Mutex
	products []model.Product
	nextID   int
	failAdd  bool
	created  []model.CreateProductRequest
}

// NewFakeCatalogue starts a fake catalogue seeded with products.
func NewFakeCatalogue(t *testing.T, products []model.Product) *FakeCatalogue {
	t.Helper()

	f := &FakeCatalogue{products: products, nextID: 101}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", f.list)
	mux.HandleFunc("GET /products/search", f.search)
	mux.HandleFunc("POST /products/add", f.add)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// FailAdds makes every create request fail with a server message.
func (f *FakeCatalogue) FailAdds(fail bool) {
	f.mu.Lock()
	f.failAdd = fail
	f.mu.Unlock()
}

// Created returns the create requests received so far.
func (f *FakeCatalogue) Created() []model.CreateProductRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.CreateProductRequest{}, f.created...)
}

func (f *FakeCatalogue) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeProducts(w, f.products)
}

func (f *FakeCatalogue) search(w http.ResponseWriter, r *http.Request) {
	term := strings.ToLower(r.URL.Query().Get("q"))

	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.Product
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Title), term) || strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}
	writeProducts(w, out)
}

func (f *FakeCatalogue) add(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"message":"bad body"}`, http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.created = append(f.created, req)
	if f.failAdd {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"Catalogue is read-only"}`))
		return
	}

	// Like the hosted API, created products are echoed back but not listed.
	id := f.nextID
	f.nextID++
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(model.Product{
		ID:          model.ProductID(strconv.Itoa(id)),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	})
}

func writeProducts(w http.ResponseWriter, products []model.Product) {
	if products == nil {
		products = []model.Product{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"products": products,
		"total":    len(products),
	})
}
