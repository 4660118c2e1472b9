package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"garminbridge/internal/domain"
	"garminbridge/internal/metrics"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	MFACode  string `json:"mfa_code" validate:"omitempty,alphanum,max=16"`
}

type LoginResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (api *API) Login(w http.ResponseWriter, r *http.Request) {
	log := api.log.With("method", "Login")

	userID, err := api.identify(r)
	if err != nil {
		api.writeError(w, log, err)
		return
	}

	if !api.limiter.allow(userID) {
		log.Warnw("login rate limit exceeded", "user", userID)
		writeErrorCode(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many login attempts")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed request body")
		return
	}
	if err := api.validate.Struct(req); err != nil {
		log.Infow("login validation failed", "error", err)
		writeErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := api.provider.Login(r.Context(), domain.Credentials{
		Username: req.Username,
		Password: req.Password,
		MFACode:  req.MFACode,
	})
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		api.writeError(w, log, err)
		return
	}

	update := domain.SessionUpdate{Blob: &result.Blob, TouchLastSync: true}
	if result.DisplayName != "" {
		update.DisplayName = &result.DisplayName
	}
	if err := api.sessions.Upsert(r.Context(), userID, update); err != nil {
		log.Errorw("failed to persist session", "user", userID, "error", err)
		writeErrorCode(w, http.StatusInternalServerError, "STORAGE_FAILURE", "could not persist session")
		return
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	respondWithJSON(w, LoginResponse{Status: "success", Message: "Garmin connected successfully"})
}

func (api *API) GetToday(w http.ResponseWriter, r *http.Request) {
	log := api.log.With("method", "GetToday")

	userID, err := api.identify(r)
	if err != nil {
		api.writeError(w, log, err)
		return
	}

	session, err := api.sessions.Get(r.Context(), userID)
	if err != nil {
		api.writeError(w, log, err)
		return
	}

	report, err := api.provider.DailyReport(r.Context(), session, time.Now())
	if err != nil {
		metrics.Reports.WithLabelValues("error").Inc()
		api.writeError(w, log, err)
		return
	}

	update := domain.SessionUpdate{Blob: &report.Blob, TouchLastSync: true}
	if report.PersistDisplayName {
		update.DisplayName = &report.DisplayName
	}
	if err := api.sessions.Upsert(r.Context(), userID, update); err != nil {
		// A stale last_sync is acceptable; the report itself is still good.
		log.Warnw("failed to refresh stored session", "user", userID, "error", err)
	}

	metrics.Reports.WithLabelValues("ok").Inc()
	respondWithJSON(w, report.Bundle)
}

// identify resolves the bearer token to a verified user identifier.
func (api *API) identify(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", domain.ErrInvalidCredential
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", domain.ErrInvalidCredential
	}
	return api.verifier.Verify(r.Context(), token)
}
