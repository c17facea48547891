package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/SwopeYT/espybot-dashboard/internal/shared"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"detail":"Error encoding JSON response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write(body)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, errorBody{Detail: detail})
}

// statusFor maps sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrSessionRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrInvalidState), errors.Is(err, shared.ErrAuthFailed),
		errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrDiscordRequest):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
