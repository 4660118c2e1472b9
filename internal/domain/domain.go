package domain

import (
	"encoding/json"
	"time"
)

// Session holds everything we persist for a connected Garmin account.
// The blob is opaque serialized provider state; this service never looks
// inside it, it only hands it back to the Garmin client for reconstruction.
type Session struct {
	UserID      string    `bson:"_id"`
	Blob        string    `bson:"session_blob"`
	DisplayName string    `bson:"display_name,omitempty"`
	LastSync    time.Time `bson:"last_sync"`
}

// SessionUpdate carries a partial update for a stored session. Nil fields are
// left untouched by the store; TouchLastSync bumps last_sync using the store's
// own clock rather than ours.
type SessionUpdate struct {
	Blob          *string
	DisplayName   *string
	TouchLastSync bool
}

// Credentials are the inputs to the Garmin login exchange. MFACode is a short
// one-time code supplied synchronously when the account has MFA enabled.
type Credentials struct {
	Username string
	Password string
	MFACode  string
}

// LoginResult is the outcome of a successful credential exchange.
// DisplayName is best-effort and may be empty.
type LoginResult struct {
	Blob        string
	DisplayName string
}

// MetricBundle maps the four daily metric keys to raw provider JSON.
// A nil entry means that metric's fetch failed or the provider had no data;
// nil serializes as null so the payload always carries exactly four keys.
type MetricBundle struct {
	Summary   json.RawMessage `json:"summary"`
	Sleep     json.RawMessage `json:"sleep"`
	HeartRate json.RawMessage `json:"hr"`
	HRV       json.RawMessage `json:"hrv"`
}

// Empty reports whether no metric carries any data.
func (b MetricBundle) Empty() bool {
	return b.Summary == nil && b.Sleep == nil && b.HeartRate == nil && b.HRV == nil
}

// DailyReport is the resolved output for one user: the merged bundle plus the
// session state to write back. PersistDisplayName signals that DisplayName was
// freshly fetched from the provider and should be cached in the store.
type DailyReport struct {
	Bundle             MetricBundle
	Blob               string
	DisplayName        string
	PersistDisplayName bool
}
