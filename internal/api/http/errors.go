package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"library-service-backend/internal/checkout"
	"library-service-backend/internal/domain"
	"library-service-backend/internal/logger"
	"library-service-backend/internal/security"
	"library-service-backend/internal/service"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps the service layer's typed errors onto stable HTTP codes.
// 401 vs 403 is decided here, not in the services.
func writeError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	var external *domain.ExternalServiceError

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "validation_error", Message: validation.Error()})
	case errors.Is(err, domain.ErrInvalidReturnDate):
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "invalid_return_date", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, security.ErrInvalidToken), errors.Is(err, security.ErrExpiredToken),
		errors.Is(err, security.ErrWrongTokenType):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "unauthenticated", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Code: "forbidden", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "not_found", Message: err.Error()})
	case errors.Is(err, domain.ErrOutOfStock):
		writeJSON(w, http.StatusConflict, errorResponse{Code: "out_of_stock", Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyReturned):
		writeJSON(w, http.StatusConflict, errorResponse{Code: "already_returned", Message: err.Error()})
	case errors.Is(err, domain.ErrPendingPaymentExists):
		writeJSON(w, http.StatusConflict, errorResponse{Code: "pending_payment_exists", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		writeJSON(w, http.StatusConflict, errorResponse{Code: "invalid_state", Message: err.Error()})
	case errors.Is(err, service.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Code: "email_taken", Message: err.Error()})
	case errors.Is(err, checkout.ErrBadSignature):
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_signature", Message: "webhook signature verification failed"})
	case errors.As(err, &external):
		// Processor failure text passes through; internals do not.
		writeJSON(w, http.StatusBadGateway, errorResponse{Code: "external_service_error", Message: external.Error()})
	default:
		logger.Error("Unhandled error in HTTP layer", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "internal_error", Message: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}
