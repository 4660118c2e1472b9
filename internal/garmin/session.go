package garmin

import (
	"encoding/json"
	"strings"

	"garminbridge/internal/domain"

	"github.com/pkg/errors"
)

// Session is reconstructed Garmin authentication state. The raw blob that
// produced it is kept verbatim so Dump returns exactly what was stored; this
// service never rewrites the blob's contents.
type Session struct {
	oauth2 oauth2Token
	raw    string
}

type oauth1Token struct {
	Token  string `json:"oauth_token"`
	Secret string `json:"oauth_token_secret"`
}

type oauth2Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresAt    int64  `json:"expires_at"`
}

// RestoreSession deserializes a stored session blob. Two formats are accepted:
// the current object form {"oauth1_token": ..., "oauth2_token": ...} and the
// legacy two-element array form [oauth1, oauth2] produced by earlier dumps.
// Anything unreadable is domain.ErrSessionCorrupt; a session the provider
// later rejects despite restoring cleanly surfaces as ErrSessionExpired on
// first use, not here.
func RestoreSession(blob string) (*Session, error) {
	trimmed := strings.TrimSpace(blob)
	if trimmed == "" {
		return nil, errors.Wrap(domain.ErrSessionCorrupt, "empty session blob")
	}

	var tok oauth2Token
	switch trimmed[0] {
	case '{':
		var doc struct {
			OAuth1 *oauth1Token `json:"oauth1_token"`
			OAuth2 *oauth2Token `json:"oauth2_token"`
		}
		if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
			return nil, errors.Wrap(domain.ErrSessionCorrupt, err.Error())
		}
		if doc.OAuth2 == nil || doc.OAuth2.AccessToken == "" {
			return nil, errors.Wrap(domain.ErrSessionCorrupt, "missing oauth2 token")
		}
		tok = *doc.OAuth2
	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &parts); err != nil {
			return nil, errors.Wrap(domain.ErrSessionCorrupt, err.Error())
		}
		if len(parts) != 2 {
			return nil, errors.Wrap(domain.ErrSessionCorrupt, "legacy session must hold two tokens")
		}
		if err := json.Unmarshal(parts[1], &tok); err != nil {
			return nil, errors.Wrap(domain.ErrSessionCorrupt, err.Error())
		}
		if tok.AccessToken == "" {
			return nil, errors.Wrap(domain.ErrSessionCorrupt, "missing oauth2 token")
		}
	default:
		return nil, errors.Wrap(domain.ErrSessionCorrupt, "unrecognized session format")
	}

	return &Session{oauth2: tok, raw: blob}, nil
}

// Dump re-serializes the session. The original bytes are returned unchanged.
func (s *Session) Dump() string {
	return s.raw
}

func (s *Session) authHeader() string {
	tokenType := s.oauth2.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return tokenType + " " + s.oauth2.AccessToken
}
