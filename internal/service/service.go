package service

import (
	"context"

	"product-catalog/internal/model"
	"product-catalog/internal/wizard"
)

// ProductService defines operations for the visible product list.
type ProductService interface {
	// Visible fetches remote products for the filter's search term and
	// reconciles them with the locally added ones.
	Visible(ctx context.Context, filter model.FilterState) (*model.ProductList, error)

	// Added returns the locally added products, newest first.
	Added(ctx context.Context) []model.Product
}

// WizardService defines operations on add-product wizard sessions.
type WizardService interface {
	// Start opens a new session in the drafting step.
	Start(ctx context.Context) *Session

	// Get returns a snapshot of a session.
	Get(ctx context.Context, id string) (*Session, error)

	// Review returns the confirmation view, or model.ErrNoDraft when the
	// session carries no draft.
	Review(ctx context.Context, id string) (*Session, error)

	// Submit validates the form and moves the session to reviewing.
	Submit(ctx context.Context, id string, form model.ProductForm, r model.DateRange) (*Session, error)

	// Confirm creates the product remotely and stores it locally.
	Confirm(ctx context.Context, id string, form model.ProductForm) (*model.Product, error)

	// Cancel discards the session without changing data.
	Cancel(ctx context.Context, id string) error
}

// Session is a snapshot of a wizard session.
type Session struct {
	ID      string            `json:"id"`
	Step    wizard.Step       `json:"step"`
	Draft   *model.Draft      `json:"draft,omitempty"`
	Errors  model.FieldErrors `json:"fields,omitempty"`
	Message string            `json:"message,omitempty"`
}
