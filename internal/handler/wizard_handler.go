package handler

import (
	"fmt"
	"net/http"
	"time"

	"product-catalog/internal/model"
	"product-catalog/internal/service"
	"product-catalog/internal/wizard"

	"github.com/rs/zerolog"
)

type submitRequest struct {
	Form      model.ProductForm `json:"form"`
	StartDate string            `json:"startDate"`
	EndDate   string            `json:"endDate"`
}

type confirmRequest struct {
	Form model.ProductForm `json:"form"`
}

type createdResponse struct {
	Product *model.Product `json:"product"`
	Message string         `json:"message"`
}

// WizardHandler handles add-product wizard HTTP requests.
type WizardHandler struct {
	service service.WizardService
	logger  zerolog.Logger
	now     func() time.Time
}

// NewWizardHandler creates a new wizard handler.
func NewWizardHandler(service service.WizardService, logger zerolog.Logger) *WizardHandler {
	return &WizardHandler{
		service: service,
		logger:  logger.With().Str("handler", "wizard").Logger(),
		now:     time.Now,
	}
}

// Start handles POST /api/wizard requests.
func (h *WizardHandler) Start(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, h.service.Start(r.Context()))
}

// Get handles GET /api/wizard/{id} requests.
func (h *WizardHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Review handles GET /api/wizard/{id}/review requests.
func (h *WizardHandler) Review(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Review(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Submit handles POST /api/wizard/{id}/submit requests.
func (h *WizardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	dateRange, err := model.ParseDateRange(req.StartDate, req.EndDate, h.now())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	session, err := h.service.Submit(r.Context(), r.PathValue("id"), req.Form, dateRange)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Confirm handles POST /api/wizard/{id}/confirm requests.
func (h *WizardHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.service.Confirm(r.Context(), r.PathValue("id"), req.Form)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, createdResponse{
		Product: product,
		Message: fmt.Sprintf("Product created with ID: %s", product.ID),
	})
}

// Cancel handles POST /api/wizard/{id}/cancel requests.
func (h *WizardHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.service.Cancel(r.Context(), id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, service.Session{ID: id, Step: wizard.StepListing})
}
