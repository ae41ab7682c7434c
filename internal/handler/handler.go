package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"product-catalog/internal/middleware"
	"product-catalog/internal/model"

	"github.com/rs/zerolog"
)

// statusByCode maps domain error codes to HTTP status codes.
var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:       http.StatusBadRequest,
	model.ErrCodeInvalidFilter:     http.StatusBadRequest,
	model.ErrCodeInvalidDateRange:  http.StatusBadRequest,
	model.ErrCodeValidation:        http.StatusUnprocessableEntity,
	model.ErrCodeNoDraft:           http.StatusConflict,
	model.ErrCodeIllegalTransition: http.StatusConflict,
	model.ErrCodeCreationPending:   http.StatusConflict,
	model.ErrCodeSessionNotFound:   http.StatusNotFound,
	model.ErrCodeRemoteUnavailable: http.StatusBadGateway,
	model.ErrCodeCreateFailed:      http.StatusBadGateway,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already sent; an encode failure leaves a truncated body.
	_ = json.NewEncoder(w).Encode(data)
}

// writeError converts err to an ErrorResponse and writes it. Errors that are
// not domain errors are reported as 500 without their detail.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	status, resp := toErrorResponse(err)
	resp.CorrelationID = middleware.RequestIDFromContext(r.Context())

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("code", resp.Error).
		Int("status", status).
		Str("request_id", resp.CorrelationID).
		Msg("handler error")

	writeJSON(w, status, resp)
}

func toErrorResponse(err error) (int, *model.ErrorResponse) {
	var fieldErrs model.FieldErrors
	if errors.As(err, &fieldErrs) {
		return http.StatusUnprocessableEntity, &model.ErrorResponse{
			Error:   model.ErrCodeValidation,
			Message: "Please correct the highlighted fields",
			Fields:  fieldErrs,
		}
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status, ok := statusByCode[domainErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		return status, &model.ErrorResponse{Error: domainErr.Code, Message: domainErr.Message}
	}

	return http.StatusInternalServerError, &model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "internal server error",
	}
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "invalid request body")
	}
	return nil
}
