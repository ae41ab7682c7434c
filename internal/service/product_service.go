package service

import (
	"context"
	"errors"
	"strings"

	"product-catalog/internal/catalog"
	"product-catalog/internal/model"
	"product-catalog/internal/repository"

	"github.com/rs/zerolog"
)

// fetchErrorMessage is shown when the remote failure carries no message.
const fetchErrorMessage = "Error fetching products"

// productService implements ProductService.
type productService struct {
	store  repository.LocalProductStore
	remote repository.RemoteProductSource
	logger zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(store repository.LocalProductStore, remote repository.RemoteProductSource, logger zerolog.Logger) ProductService {
	return &productService{
		store:  store,
		remote: remote,
		logger: logger.With().Str("service", "product").Logger(),
	}
}

// Visible fetches remote products for the filter's search term and merges
// them behind the local ones. A remote failure degrades to the local list
// with RemoteError set; only a cancelled ctx is returned as an error.
func (s *productService) Visible(ctx context.Context, filter model.FilterState) (*model.ProductList, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Bucket == "" {
		filter.Bucket = model.BucketAll
	}

	local := s.store.List()
	list := &model.ProductList{Filter: filter}

	remote, err := s.remote.Search(ctx, filter.Search)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Warn().Err(err).Str("search", filter.Search).Msg("remote products unavailable, showing local only")
		list.RemoteError = remoteMessage(err, fetchErrorMessage)
		remote = nil
	}

	list.Products = catalog.BuildVisibleList(local, remote, filter)
	list.LocalCount = catalog.Split(local, filter)
	list.RemoteCount = len(list.Products) - list.LocalCount

	s.logger.Debug().
		Str("search", filter.Search).
		Str("bucket", string(filter.Bucket)).
		Int("local", list.LocalCount).
		Int("remote", list.RemoteCount).
		Msg("built visible product list")

	return list, nil
}

// Added returns the locally added products.
func (s *productService) Added(ctx context.Context) []model.Product {
	return s.store.List()
}

// remoteMessage returns the server supplied message of a remote failure, or
// fallback.
func remoteMessage(err error, fallback string) string {
	var remoteErr *repository.RemoteError
	if errors.As(err, &remoteErr) && remoteErr.Message != "" {
		return remoteErr.Message
	}
	return fallback
}
