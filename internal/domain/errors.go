package domain

import "github.com/pkg/errors"

// Error taxonomy surfaced to callers. Handlers match these with errors.Is to
// pick a status code; anything wrapped around them keeps the classification.
var (
	// ErrInvalidCredential means the bearer token failed identity verification.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrAuthenticationFailed means Garmin rejected the username/password.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrMFARequired means Garmin demands a second factor and none was supplied.
	ErrMFARequired = errors.New("mfa code required")

	// ErrUpstreamUnavailable covers network and provider-side transport failures.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrSessionNotFound means no session is stored for the user.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionCorrupt means the stored blob could not be deserialized.
	ErrSessionCorrupt = errors.New("session corrupt")

	// ErrSessionExpired means a structurally valid session was rejected by the
	// provider on use.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoUsableData means both fetch passes produced an entirely empty bundle.
	ErrNoUsableData = errors.New("no usable data")
)
