package api

import (
	"encoding/json"
	"net/http"

	"garminbridge/internal/metrics"
	"garminbridge/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type API struct {
	log      *zap.SugaredLogger
	sessions ports.SessionRepository
	verifier ports.IdentityVerifier
	provider ports.MetricsProvider
	validate *validator.Validate
	limiter  *loginLimiter
}

func NewAPI(log *zap.SugaredLogger, sessions ports.SessionRepository, verifier ports.IdentityVerifier, provider ports.MetricsProvider) *API {
	return &API{
		log:      log,
		sessions: sessions,
		verifier: verifier,
		provider: provider,
		validate: validator.New(),
		// 10 login attempts per user per minute
		limiter: newLoginLimiter(rate.Limit(10.0/60.0), 10),
	}
}

func (api *API) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(api.LoggingMiddleware)

	// home endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respondWithJSON(w, "Garmin Bridge API")
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/garmin", func(r chi.Router) {
		r.Post("/login", api.Login)
		r.Get("/today", api.GetToday)
	})

	return r
}

func respondWithJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
