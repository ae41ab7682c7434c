package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"product-catalog/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxErrorBody bounds how much of an error response is read for its message.
const maxErrorBody = 64 * 1024

// RemoteError is returned when the product API answers with a non-2xx status.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote product API returned %d: %s", e.StatusCode, e.Message)
}

// RemoteConfig configures the HTTP product source.
type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
	// Limit is sent as the limit query parameter when positive.
	Limit int
}

// remoteProductRepository implements RemoteProductSource against a
// dummyjson-compatible API.
type remoteProductRepository struct {
	baseURL string
	limit   int
	client  *http.Client
	logger  zerolog.Logger
}

// NewRemoteProductRepository creates an HTTP-backed product source.
func NewRemoteProductRepository(cfg RemoteConfig, client *http.Client, logger zerolog.Logger) RemoteProductSource {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &remoteProductRepository{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limit:   cfg.Limit,
		client:  client,
		logger:  logger.With().Str("repository", "remote-product").Logger(),
	}
}

type productsEnvelope struct {
	Products []model.Product `json:"products"`
}

// Search issues GET /products or GET /products/search?q=<term>.
func (r *remoteProductRepository) Search(ctx context.Context, term string) ([]model.Product, error) {
	term = strings.TrimSpace(term)

	endpoint := r.baseURL + "/products"
	query := url.Values{}
	if term != "" {
		endpoint += "/search"
		query.Set("q", term)
	}
	if r.limit > 0 {
		query.Set("limit", strconv.Itoa(r.limit))
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error().Err(err).Str("term", term).Msg("failed to fetch products")
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := readRemoteError(resp, "Error fetching products")
		r.logger.Error().Err(remoteErr).Str("term", term).Msg("product search rejected")
		return nil, remoteErr
	}

	var envelope productsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		r.logger.Error().Err(err).Str("term", term).Msg("failed to decode products")
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	if envelope.Products == nil {
		envelope.Products = []model.Product{}
	}

	r.logger.Debug().
		Str("term", term).
		Int("count", len(envelope.Products)).
		Dur("duration", time.Since(start)).
		Msg("fetched remote products")

	return envelope.Products, nil
}

// Create issues POST /products/add.
func (r *remoteProductRepository) Create(ctx context.Context, in model.CreateProductRequest) (*model.Product, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/products/add", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error().Err(err).Str("title", in.Title).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := readRemoteError(resp, "Failed to create product")
		r.logger.Error().Err(remoteErr).Str("title", in.Title).Msg("product creation rejected")
		return nil, remoteErr
	}

	var created model.Product
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode created product")
		return nil, fmt.Errorf("failed to decode created product: %w", err)
	}

	if created.ID == "" {
		created.ID = model.ProductID("local-" + uuid.NewString())
		r.logger.Warn().Str("product_id", string(created.ID)).Msg("remote returned no id, synthesized one")
	}

	r.logger.Info().
		Str("product_id", string(created.ID)).
		Str("title", created.Title).
		Msg("product created")

	return &created, nil
}

// readRemoteError extracts {"message": "..."} from an error response, falling
// back to fallback when the body carries none.
func readRemoteError(resp *http.Response, fallback string) *RemoteError {
	remoteErr := &RemoteError{StatusCode: resp.StatusCode, Message: fallback}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return remoteErr
	}

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Message != "" {
		remoteErr.Message = payload.Message
	}
	return remoteErr
}
