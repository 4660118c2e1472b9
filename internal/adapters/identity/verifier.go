package identity

import (
	"context"
	"encoding/json"
	"net/http"

	"garminbridge/internal/domain"

	"github.com/pkg/errors"
)

// Verifier resolves bearer tokens to stable user identifiers through the
// identity service's introspection endpoint. It implements
// ports.IdentityVerifier; the backing service is swappable behind that port.
type Verifier struct {
	endpoint string
	http     *http.Client
}

func NewVerifier(endpoint string, client *http.Client) *Verifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &Verifier{endpoint: endpoint, http: client}
}

func (v *Verifier) Verify(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to build verify request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.http.Do(req)
	if err != nil {
		return "", errors.Wrap(domain.ErrUpstreamUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", domain.ErrInvalidCredential
	default:
		return "", errors.Wrapf(domain.ErrUpstreamUnavailable, "identity service returned status %d", resp.StatusCode)
	}

	var body struct {
		UID string `json:"uid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.Wrap(domain.ErrUpstreamUnavailable, "unreadable identity response")
	}
	if body.UID == "" {
		return "", domain.ErrInvalidCredential
	}

	return body.UID, nil
}
