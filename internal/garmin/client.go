package garmin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"garminbridge/internal/domain"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://connectapi.garmin.com"

	// Garmin serves 403s to clients that do not look like the Connect web
	// app, so the client presents itself as one. This is transport
	// configuration; nothing downstream depends on these values.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	defaultReferer   = "https://connect.garmin.com/modern/dashboards/daily-summary"

	dateLayout = "2006-01-02"
)

var errNotFound = errors.New("not found")

// Options configures the Garmin client. Zero values fall back to production
// defaults; tests point BaseURL at an httptest server.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
	Referer    string
}

// Client issues authenticated requests against the Garmin Connect API.
type Client struct {
	log       *zap.SugaredLogger
	baseURL   string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker
	userAgent string
	referer   string
}

func NewClient(log *zap.SugaredLogger, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Referer == "" {
		opts.Referer = defaultReferer
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "garmin",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		log:       log,
		baseURL:   opts.BaseURL,
		http:      opts.HTTPClient,
		breaker:   breaker,
		userAgent: opts.UserAgent,
		referer:   opts.Referer,
	}
}

// Login exchanges credentials for an opaque session blob. The blob is the
// provider's serialized session verbatim; a restored Session is returned
// alongside it so callers can issue follow-up requests without re-parsing.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, *Session, error) {
	payload := map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	}
	if creds.MFACode != "" {
		payload["mfaCode"] = creds.MFACode
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to encode login payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to build login request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, errors.Wrap(domain.ErrUpstreamUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusPreconditionRequired:
		return "", nil, domain.ErrMFARequired
	case http.StatusUnauthorized, http.StatusForbidden:
		var failure struct {
			Code string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		if failure.Code == "mfa-required" {
			return "", nil, domain.ErrMFARequired
		}
		return "", nil, domain.ErrAuthenticationFailed
	default:
		return "", nil, errors.Wrapf(domain.ErrUpstreamUnavailable, "login returned status %d", resp.StatusCode)
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, errors.Wrap(domain.ErrUpstreamUnavailable, err.Error())
	}

	sess, err := RestoreSession(string(blob))
	if err != nil {
		return "", nil, errors.Wrap(domain.ErrUpstreamUnavailable, "login returned an unreadable session")
	}

	return string(blob), sess, nil
}

// DisplayName fetches the provider-side display name that scopes most metric
// endpoint paths.
func (c *Client) DisplayName(ctx context.Context, sess *Session) (string, error) {
	const path = "/userprofile-service/socialProfile"

	raw, err := c.get(ctx, sess, path, "/modern/proxy"+path)
	if err != nil {
		return "", err
	}

	var profile struct {
		DisplayName string `json:"displayName"`
	}
	if err := json.Unmarshal(raw, &profile); err != nil {
		return "", errors.Wrap(err, "failed to parse social profile")
	}

	return profile.DisplayName, nil
}

// get issues an authenticated GET, trying each path variant in order. A 404
// falls through to the next variant; 401/403 means the provider no longer
// honors the session.
func (c *Client) get(ctx context.Context, sess *Session, paths ...string) (json.RawMessage, error) {
	var lastErr error
	for _, path := range paths {
		raw, err := c.getOne(ctx, sess, path)
		if errors.Is(err, errNotFound) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		return raw, nil
	}
	return nil, lastErr
}

type getResult struct {
	raw      json.RawMessage
	notFound bool
	expired  bool
}

func (c *Client) getOne(ctx context.Context, sess *Session, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	c.decorate(req)
	req.Header.Set("Authorization", sess.authHeader())

	// Only transport errors and 5xx count as breaker failures; a 404 is a
	// routine answer for dates with no data and for retired path variants,
	// and a 401 says the session died, not the provider.
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, errors.Wrap(domain.ErrUpstreamUnavailable, err.Error())
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, errors.Wrap(domain.ErrUpstreamUnavailable, err.Error())
			}
			return getResult{raw: body}, nil
		case http.StatusNotFound:
			return getResult{notFound: true}, nil
		case http.StatusUnauthorized, http.StatusForbidden:
			return getResult{expired: true}, nil
		default:
			return nil, errors.Wrapf(domain.ErrUpstreamUnavailable, "%s returned status %d", path, resp.StatusCode)
		}
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Wrap(domain.ErrUpstreamUnavailable, err.Error())
	}
	if err != nil {
		return nil, err
	}

	res := result.(getResult)
	switch {
	case res.notFound:
		return nil, errNotFound
	case res.expired:
		return nil, domain.ErrSessionExpired
	default:
		return res.raw, nil
	}
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.referer)
	req.Header.Set("Accept", "application/json, text/plain, */*")
}
