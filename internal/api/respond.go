package api

import (
	"encoding/json"
	"net/http"

	"github.com/spherical/text-extractor/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case domain.IsType(err, domain.ErrorTypeValidation):
		return http.StatusUnsupportedMediaType
	case domain.IsType(err, domain.ErrorTypeRead):
		return http.StatusBadRequest
	case domain.IsType(err, domain.ErrorTypeDecode), domain.IsType(err, domain.ErrorTypeRender):
		return http.StatusUnprocessableEntity
	case domain.IsType(err, domain.ErrorTypeProvider):
		return http.StatusBadGateway
	case domain.IsType(err, domain.ErrorTypeConfig):
		return http.StatusServiceUnavailable
	case domain.IsType(err, domain.ErrorTypeCancelled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
