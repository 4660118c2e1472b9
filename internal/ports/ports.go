package ports

import (
	"context"
	"time"

	"garminbridge/internal/domain"
)

// SessionRepository stores at most one session per verified user identity.
// Get returns domain.ErrSessionNotFound when nothing is stored. Upsert merges
// only the supplied fields, leaving others untouched.
type SessionRepository interface {
	Get(ctx context.Context, userID string) (domain.Session, error)
	Upsert(ctx context.Context, userID string, update domain.SessionUpdate) error
}

// IdentityVerifier exchanges a bearer token for a stable user identifier.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// MetricsProvider is the Garmin-facing surface the API depends on.
type MetricsProvider interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.LoginResult, error)
	DailyReport(ctx context.Context, sess domain.Session, day time.Time) (domain.DailyReport, error)
}
