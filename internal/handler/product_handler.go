package handler

import (
	"net/http"
	"time"

	"product-catalog/internal/model"
	"product-catalog/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles product list HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
	now     func() time.Time
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
		now:     time.Now,
	}
}

// List handles GET /api/products?q=&price=&startDate=&endDate= requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r, h.now())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	list, err := h.service.Visible(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// Added handles GET /api/products/local requests.
func (h *ProductHandler) Added(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Added(r.Context()))
}

func parseFilter(r *http.Request, now time.Time) (model.FilterState, error) {
	query := r.URL.Query()

	bucket, err := model.ParsePriceBucket(query.Get("price"))
	if err != nil {
		return model.FilterState{}, err
	}

	dateRange, err := model.ParseDateRange(query.Get("startDate"), query.Get("endDate"), now)
	if err != nil {
		return model.FilterState{}, err
	}

	return model.FilterState{
		Range:  dateRange,
		Search: query.Get("q"),
		Bucket: bucket,
	}, nil
}
