package apperror

import "net/http"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Kind   string `json:"kind,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// FromError builds the envelope for a hard-tier error without leaking causes
// of storage failures to clients.
func FromError(err error) *APIError {
	kind := KindOf(err)
	if kind == KindStorage {
		return &APIError{Detail: "Error de almacenamiento", Kind: kind.String()}
	}
	if kind == 0 {
		return &APIError{Detail: err.Error()}
	}
	return &APIError{Detail: err.Error(), Kind: kind.String()}
}

// HTTPStatus maps the kind of err to a response status. Errors without a kind
// are 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindShape:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTransport:
		return http.StatusBadGateway
	case KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
