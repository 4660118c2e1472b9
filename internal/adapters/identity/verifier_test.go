package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"garminbridge/internal/domain"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestVerify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer good-token":
			w.Write([]byte(`{"uid":"firebase-uid-1"}`))
		case "Bearer empty-uid":
			w.Write([]byte(`{"uid":""}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	verifier := NewVerifier(server.URL, server.Client())
	ctx := context.Background()

	uid, err := verifier.Verify(ctx, "good-token")
	assert.NoError(t, err)
	assert.Equal(t, "firebase-uid-1", uid)

	_, err = verifier.Verify(ctx, "bad-token")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredential))

	_, err = verifier.Verify(ctx, "empty-uid")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredential))
}

func TestVerify_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	verifier := NewVerifier(server.URL, server.Client())

	_, err := verifier.Verify(context.Background(), "any-token")
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
}
