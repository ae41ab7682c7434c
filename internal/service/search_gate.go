package service

import (
	"context"
	"errors"
	"sync"

	"product-catalog/internal/model"
)

// ErrSuperseded is returned for a search whose result arrived after a newer
// search was started.
var ErrSuperseded = errors.New("search superseded by a newer one")

// SearchGate delivers only the result of the most recent search. Starting a
// search cancels the one in flight.
type SearchGate struct {
	products ProductService

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewSearchGate wraps products.
func NewSearchGate(products ProductService) *SearchGate {
	return &SearchGate{products: products}
}

// Search runs ProductService.Visible for filter.
func (g *SearchGate) Search(ctx context.Context, filter model.FilterState) (*model.ProductList, error) {
	g.mu.Lock()
	if g.cancel != nil {
		g.cancel()
	}
	g.seq++
	seq := g.seq
	ctx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.mu.Unlock()

	list, err := g.products.Visible(ctx, filter)

	g.mu.Lock()
	defer g.mu.Unlock()
	cancel()
	if seq != g.seq {
		return nil, ErrSuperseded
	}
	g.cancel = nil
	return list, err
}

// Stop cancels the search in flight, if any.
func (g *SearchGate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.seq++
}
