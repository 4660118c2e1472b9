package api

import (
	"encoding/json"
	"net/http"

	"garminbridge/internal/domain"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classify maps the error taxonomy to an HTTP status and a stable code, so
// clients can tell "log in again" from "retry later" from "supply an MFA code".
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredential):
		return http.StatusUnauthorized, "INVALID_CREDENTIAL"
	case errors.Is(err, domain.ErrMFARequired):
		return http.StatusUnauthorized, "MFA_REQUIRED"
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return http.StatusUnauthorized, "AUTHENTICATION_FAILED"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, domain.ErrSessionCorrupt):
		return http.StatusUnauthorized, "SESSION_CORRUPT"
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, "SESSION_EXPIRED"
	case errors.Is(err, domain.ErrNoUsableData):
		return http.StatusBadGateway, "NO_USABLE_DATA"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func (api *API) writeError(w http.ResponseWriter, log *zap.SugaredLogger, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Errorw("request failed", "code", code, "error", err)
	} else {
		log.Infow("request rejected", "code", code, "error", err)
	}
	writeErrorCode(w, status, code, err.Error())
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Code: code, Message: message})
}
