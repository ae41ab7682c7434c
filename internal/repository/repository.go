package repository

import (
	"context"

	"product-catalog/internal/model"
)

// LocalProductStore holds the products added through the wizard. The
// in-memory list is authoritative for the session and is mirrored to storage
// after every change.
type LocalProductStore interface {
	// Load replaces the in-memory list with the persisted one. Missing or
	// unreadable storage yields an empty list; the failure is logged, not returned.
	Load(ctx context.Context) []model.Product

	// List returns a copy of the in-memory list, most recently added first.
	List() []model.Product

	// Add inserts p at the front unless a product with the same ID exists, then
	// persists the full list. It reports whether p was inserted.
	Add(ctx context.Context, p model.Product) bool

	// Persist replaces the list and writes it to storage. Write failures are
	// logged and swallowed.
	Persist(ctx context.Context, list []model.Product)
}

// RemoteProductSource is the hosted product API.
type RemoteProductSource interface {
	// Search lists products, narrowed by term when it is not blank.
	Search(ctx context.Context, term string) ([]model.Product, error)

	// Create submits a new product and returns the created record.
	Create(ctx context.Context, req model.CreateProductRequest) (*model.Product, error)
}
