package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"credit-control/internal/api/handler/dto"
	"credit-control/internal/domain/customer"
	"credit-control/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5/middleware"
)

func decodeJSON(r *http.Request, target interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}

// respondJSON writes the uniform success envelope. A nil data with an empty
// message still produces a well-formed envelope.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any, message string) {
	resp := dto.APIResponse{
		Success:   status < http.StatusBadRequest,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetReqID(r.Context()),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode JSON response", slog.Any("error", err))
	}
}

// respondError maps the error taxonomy onto HTTP statuses. Internal detail
// never leaks: 5xx responses carry a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "An unexpected internal server error occurred"

	var validationErr *apperrors.ValidationError

	switch {
	case errors.Is(err, customer.ErrNotFound), errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		message = "Customer not found"
	case errors.Is(err, customer.ErrDuplicateCode), errors.Is(err, apperrors.ErrAlreadyExists):
		status = http.StatusConflict
		message = "Customer code already exists"
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		message = validationErr.Error()
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidArgument):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "Authentication required"
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
		message = "Access denied"
	case errors.Is(err, apperrors.ErrResourceExhausted):
		status = http.StatusServiceUnavailable
		message = "Service temporarily unavailable, please retry"
	}

	respondJSON(w, r, status, nil, message)
}
