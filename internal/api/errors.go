package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"scctower/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
// Anything unrecognized is a 500.
func httpStatusFromDomainError(err error) int {
	var validation *domain.ValidationError
	var unauthorized *domain.UnauthorizedError
	var unavailable *domain.UnavailableError
	var upstream *domain.UpstreamError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, httpStatusFromDomainError(err), map[string]string{"error": err.Error()})
}
