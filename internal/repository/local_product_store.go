package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"product-catalog/internal/model"
	"product-catalog/internal/storage"

	"github.com/rs/zerolog"
)

// localProductStore implements LocalProductStore on top of a storage.KV.
type localProductStore struct {
	kv     storage.KV
	key    string
	logger zerolog.Logger

	mu       sync.Mutex
	products []model.Product
}

// NewLocalProductStore creates a store that keeps its list under key in kv.
// The store starts empty; call Load to read what was persisted.
func NewLocalProductStore(kv storage.KV, key string, logger zerolog.Logger) LocalProductStore {
	return &localProductStore{
		kv:       kv,
		key:      key,
		logger:   logger.With().Str("repository", "local-product").Str("key", key).Logger(),
		products: []model.Product{},
	}
}

// Load reads the persisted list.
func (s *localProductStore) Load(ctx context.Context) []model.Product {
	products := s.read(ctx)

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()

	s.logger.Info().Int("count", len(products)).Msg("local products loaded")
	return clone(products)
}

func (s *localProductStore) read(ctx context.Context) []model.Product {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("failed to read local products, starting empty")
		}
		return []model.Product{}
	}

	if len(data) == 0 {
		return []model.Product{}
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		s.logger.Warn().Err(err).Msg("failed to parse local products, starting empty")
		return []model.Product{}
	}

	if products == nil {
		return []model.Product{}
	}
	return dedupe(products)
}

// List returns a copy of the in-memory list.
func (s *localProductStore) List() []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	return clone(s.products)
}

// Add inserts p at the front when its ID is new.
func (s *localProductStore) Add(ctx context.Context, p model.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if existing.ID == p.ID {
			s.logger.Debug().Str("product_id", string(p.ID)).Msg("product already stored, skipping")
			return false
		}
	}

	s.products = append([]model.Product{p}, s.products...)
	s.logger.Info().
		Str("product_id", string(p.ID)).
		Int("count", len(s.products)).
		Msg("product added to local store")

	// Persist under the lock so concurrent adds are written in order.
	s.write(ctx, s.products)
	return true
}

// Persist replaces the in-memory list with a deduplicated copy of list and
// writes it to storage.
func (s *localProductStore) Persist(ctx context.Context, list []model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = dedupe(clone(list))
	s.write(ctx, s.products)
}

func (s *localProductStore) write(ctx context.Context, list []model.Product) {
	if list == nil {
		list = []model.Product{}
	}

	data, err := json.Marshal(list)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode local products")
		return
	}

	if err := s.kv.Put(ctx, s.key, data); err != nil {
		s.logger.Warn().Err(err).Int("count", len(list)).Msg("failed to persist local products")
		return
	}

	s.logger.Debug().Int("count", len(list)).Msg("local products persisted")
}

// dedupe drops later records that repeat an earlier ID, in case the stored
// list was edited by hand.
func dedupe(products []model.Product) []model.Product {
	seen := make(map[model.ProductID]struct{}, len(products))
	out := products[:0]
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func clone(products []model.Product) []model.Product {
	return append([]model.Product{}, products...)
}
