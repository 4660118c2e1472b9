package garmin

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"garminbridge/internal/domain"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Provider is the Garmin-facing implementation of ports.MetricsProvider. A
// fresh session context is reconstructed from the stored blob on every call;
// no session state is shared across requests.
type Provider struct {
	log    *zap.SugaredLogger
	client *Client
}

func NewProvider(log *zap.SugaredLogger, client *Client) *Provider {
	return &Provider{log: log, client: client}
}

// Login performs the credential exchange and then attempts, best-effort, to
// look up the account's display name for caching.
func (p *Provider) Login(ctx context.Context, creds domain.Credentials) (domain.LoginResult, error) {
	blob, sess, err := p.client.Login(ctx, creds)
	if err != nil {
		return domain.LoginResult{}, err
	}

	result := domain.LoginResult{Blob: blob}
	name, err := p.client.DisplayName(ctx, sess)
	if err != nil {
		p.log.Infow("display name lookup failed after login", "error", err)
		return result, nil
	}
	result.DisplayName = name
	return result, nil
}

// DailyReport reconstructs the session, resolves the display name (filling the
// cache signal when it had to be fetched), and produces the merged four-metric
// bundle for the given day. A blob-less session means the user never logged
// in; an unreadable blob fails before any remote call is made.
func (p *Provider) DailyReport(ctx context.Context, stored domain.Session, day time.Time) (domain.DailyReport, error) {
	if strings.TrimSpace(stored.Blob) == "" {
		return domain.DailyReport{}, domain.ErrSessionNotFound
	}

	sess, err := RestoreSession(stored.Blob)
	if err != nil {
		return domain.DailyReport{}, err
	}

	report := domain.DailyReport{DisplayName: stored.DisplayName}
	if report.DisplayName == "" {
		name, err := p.client.DisplayName(ctx, sess)
		if err != nil {
			// Display-name-scoped paths have date-only fallbacks, so the
			// request carries on without it.
			p.log.Infow("display name lookup failed", "user", stored.UserID, "error", err)
		} else if name != "" {
			report.DisplayName = name
			report.PersistDisplayName = true
		}
	}

	source := &boundSession{client: p.client, sess: sess, displayName: report.DisplayName}
	bundle, err := ResolveDaily(ctx, source, day)
	if err != nil {
		return domain.DailyReport{}, err
	}
	if bundle.Empty() {
		return domain.DailyReport{}, errors.Wrapf(domain.ErrNoUsableData, "no metrics for %s or the day before", day.Format(dateLayout))
	}

	report.Bundle = bundle
	report.Blob = sess.Dump()
	return report, nil
}

// boundSession ties a reconstructed session and its display name to the
// client, satisfying DailySource for one request.
type boundSession struct {
	client      *Client
	sess        *Session
	displayName string
}

func (b *boundSession) FetchDaily(ctx context.Context, day time.Time) (domain.MetricBundle, error) {
	return b.client.FetchDaily(ctx, b.sess, b.displayName, day)
}

func (b *boundSession) FetchSleep(ctx context.Context, day time.Time) (json.RawMessage, error) {
	return b.client.FetchSleep(ctx, b.sess, b.displayName, day)
}
