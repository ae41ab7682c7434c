package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string            `json:"error"`
	Message       string            `json:"message"`
	Fields        map[string]string `json:"fields,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeInvalidFilter     = "INVALID_FILTER"
	ErrCodeInvalidDateRange  = "INVALID_DATE_RANGE"
	ErrCodeNoDraft           = "NO_DRAFT"
	ErrCodeIllegalTransition = "ILLEGAL_TRANSITION"
	ErrCodeCreationPending   = "CREATION_PENDING"
	ErrCodeSessionNotFound   = "SESSION_NOT_FOUND"
	ErrCodeRemoteUnavailable = "REMOTE_UNAVAILABLE"
	ErrCodeCreateFailed      = "CREATE_FAILED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped or freshly built errors compare
// equal to the sentinels below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidDateRange  = NewDomainError(ErrCodeInvalidDateRange, "End date cannot be before start date")
	ErrNoDraft           = NewDomainError(ErrCodeNoDraft, "No product data found. Please go back and add a product.")
	ErrIllegalTransition = NewDomainError(ErrCodeIllegalTransition, "Action is not allowed in the current step")
	ErrCreationPending   = NewDomainError(ErrCodeCreationPending, "A product is already being created")
	ErrSessionNotFound   = NewDomainError(ErrCodeSessionNotFound, "Wizard session not found")
	ErrCreateFailed      = NewDomainError(ErrCodeCreateFailed, "Failed to create product")
)
