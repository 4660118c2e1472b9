package garmin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"garminbridge/internal/domain"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger, _ := zap.NewDevelopment()
	client := NewClient(logger.Sugar(), Options{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	return client, server
}

func testSession(t *testing.T) *Session {
	t.Helper()
	sess, err := RestoreSession(currentBlob)
	assert.NoError(t, err)
	return sess
}

func TestLogin(t *testing.T) {
	sessionBody := `{"oauth2_token":{"access_token":"fresh","token_type":"Bearer"}}`

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
			MFACode  string `json:"mfaCode"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))

		switch {
		case creds.Username == "mfa@example.com" && creds.MFACode == "":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":"mfa-required"}`))
		case creds.Password != "hunter2":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":"invalid-credentials"}`))
		default:
			w.Write([]byte(sessionBody))
		}
	})

	client, _ := newTestClient(t, handler)
	ctx := context.Background()

	t.Run("success returns the provider blob verbatim", func(t *testing.T) {
		blob, sess, err := client.Login(ctx, domain.Credentials{Username: "user@example.com", Password: "hunter2"})
		assert.NoError(t, err)
		assert.Equal(t, sessionBody, blob)
		assert.Equal(t, "Bearer fresh", sess.authHeader())
	})

	t.Run("mfa code satisfies the challenge", func(t *testing.T) {
		_, _, err := client.Login(ctx, domain.Credentials{Username: "mfa@example.com", Password: "hunter2", MFACode: "123456"})
		assert.NoError(t, err)
	})

	t.Run("mfa demanded without a code", func(t *testing.T) {
		_, _, err := client.Login(ctx, domain.Credentials{Username: "mfa@example.com", Password: "hunter2"})
		assert.True(t, errors.Is(err, domain.ErrMFARequired))
	})

	t.Run("bad password", func(t *testing.T) {
		_, _, err := client.Login(ctx, domain.Credentials{Username: "user@example.com", Password: "wrong"})
		assert.True(t, errors.Is(err, domain.ErrAuthenticationFailed))
	})
}

func TestLogin_UpstreamFailures(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	client, server := newTestClient(t, handler)
	ctx := context.Background()

	_, _, err := client.Login(ctx, domain.Credentials{Username: "u", Password: "p"})
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))

	server.Close()
	_, _, err = client.Login(ctx, domain.Credentials{Username: "u", Password: "p"})
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
}

func TestDisplayName(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/userprofile-service/socialProfile" {
			assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
			w.Write([]byte(`{"displayName":"johndoe","fullName":"John Doe"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	client, _ := newTestClient(t, handler)

	name, err := client.DisplayName(context.Background(), testSession(t))
	assert.NoError(t, err)
	assert.Equal(t, "johndoe", name)
}

func TestFetchDaily(t *testing.T) {
	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/usersummary-service/usersummary/daily/johndoe":
			assert.Equal(t, "2024-03-10", r.URL.Query().Get("calendarDate"))
			w.Write([]byte(`{"totalSteps":4200}`))
		case "/wellness-service/wellness/dailySleepData/johndoe":
			w.Write([]byte(`{"dailySleepDTO":{"sleepTimeSeconds":25200}}`))
		case "/wellness-service/wellness/dailyHeartRate/johndoe":
			w.Write([]byte(`{"restingHeartRate":52}`))
		case "/hrv-service/hrv/2024-03-10":
			w.Write([]byte(`{"hrvSummary":{"weeklyAvg":48}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	client, _ := newTestClient(t, handler)

	bundle, err := client.FetchDaily(context.Background(), testSession(t), "johndoe", day)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"totalSteps":4200}`, string(bundle.Summary))
	assert.JSONEq(t, `{"dailySleepDTO":{"sleepTimeSeconds":25200}}`, string(bundle.Sleep))
	assert.JSONEq(t, `{"restingHeartRate":52}`, string(bundle.HeartRate))
	assert.JSONEq(t, `{"hrvSummary":{"weeklyAvg":48}}`, string(bundle.HRV))
}

func TestFetchDaily_PartialFailureIsolation(t *testing.T) {
	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/usersummary-service/usersummary/daily/johndoe":
			w.Write([]byte(`{"totalSteps":4200}`))
		case "/wellness-service/wellness/dailyHeartRate/johndoe":
			w.WriteHeader(http.StatusInternalServerError)
		case "/wellness-service/wellness/dailySleepData/johndoe":
			w.Write([]byte(`not even json`)) // body passed through opaquely either way
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	client, _ := newTestClient(t, handler)

	bundle, err := client.FetchDaily(context.Background(), testSession(t), "johndoe", day)
	assert.NoError(t, err)
	assert.NotNil(t, bundle.Summary)
	assert.Nil(t, bundle.HeartRate) // 500
	assert.Nil(t, bundle.HRV)       // 404 on both variants
	assert.NotNil(t, bundle.Sleep)
}

func TestFetchDaily_LegacyPathVariant(t *testing.T) {
	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only the legacy proxy-prefixed paths answer on this deployment.
		switch r.URL.Path {
		case "/modern/proxy/usersummary-service/usersummary/daily/johndoe":
			w.Write([]byte(`{"totalSteps":900}`))
		case "/modern/proxy/hrv-service/hrv/2024-03-10":
			w.Write([]byte(`{"hrvSummary":{}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	client, _ := newTestClient(t, handler)

	bundle, err := client.FetchDaily(context.Background(), testSession(t), "johndoe", day)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"totalSteps":900}`, string(bundle.Summary))
	assert.JSONEq(t, `{"hrvSummary":{}}`, string(bundle.HRV))
}

func TestFetchDaily_SessionExpired(t *testing.T) {
	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, _ := newTestClient(t, handler)

	_, err := client.FetchDaily(context.Background(), testSession(t), "johndoe", day)
	assert.True(t, errors.Is(err, domain.ErrSessionExpired), "expected ErrSessionExpired, got %v", err)
}

func TestFetchDaily_NoDisplayNameUsesDateScopedPaths(t *testing.T) {
	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wellness-service/wellness/dailySummaryChart/2024-03-10":
			w.Write([]byte(`[{"startGMT":"2024-03-10T00:00:00.0","steps":12}]`))
		case "/wellness-service/wellness/dailySleepData/2024-03-10":
			w.Write([]byte(`{"dailySleepDTO":{"id":1}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	client, _ := newTestClient(t, handler)

	bundle, err := client.FetchDaily(context.Background(), testSession(t), "", day)
	assert.NoError(t, err)
	assert.NotNil(t, bundle.Summary)
	assert.NotNil(t, bundle.Sleep)
}
