package garmin

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"garminbridge/internal/domain"
	"garminbridge/internal/metrics"

	"github.com/pkg/errors"
)

// FetchDaily issues the four metric requests for one calendar date
// concurrently. Each metric fails independently: anything short of a session
// rejection is recorded and mapped to a nil entry, never propagated. Retries
// are the transport's concern, not this layer's.
func (c *Client) FetchDaily(ctx context.Context, sess *Session, displayName string, day time.Time) (domain.MetricBundle, error) {
	date := day.Format(dateLayout)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		expired error
		bundle  domain.MetricBundle
	)

	fetch := func(metric string, dst *json.RawMessage, paths []string) {
		defer wg.Done()

		raw, err := c.get(ctx, sess, paths...)
		if err != nil {
			if errors.Is(err, domain.ErrSessionExpired) {
				mu.Lock()
				expired = err
				mu.Unlock()
				metrics.MetricFetches.WithLabelValues(metric, "expired").Inc()
				return
			}
			c.log.Infow("metric fetch failed", "metric", metric, "date", date, "error", err)
			metrics.MetricFetches.WithLabelValues(metric, "error").Inc()
			return
		}

		metrics.MetricFetches.WithLabelValues(metric, "ok").Inc()
		*dst = raw
	}

	wg.Add(4)
	go fetch("summary", &bundle.Summary, summaryPaths(displayName, date))
	go fetch("sleep", &bundle.Sleep, sleepPaths(displayName, date))
	go fetch("hr", &bundle.HeartRate, heartRatePaths(displayName, date))
	go fetch("hrv", &bundle.HRV, hrvPaths(date))
	wg.Wait()

	if expired != nil {
		return domain.MetricBundle{}, expired
	}
	return bundle, nil
}

// FetchSleep fetches only the sleep metric for one date; the resolver uses it
// for the lazy look-back pass.
func (c *Client) FetchSleep(ctx context.Context, sess *Session, displayName string, day time.Time) (json.RawMessage, error) {
	date := day.Format(dateLayout)

	raw, err := c.get(ctx, sess, sleepPaths(displayName, date)...)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			metrics.MetricFetches.WithLabelValues("sleep", "expired").Inc()
			return nil, err
		}
		c.log.Infow("metric fetch failed", "metric", "sleep", "date", date, "error", err)
		metrics.MetricFetches.WithLabelValues("sleep", "error").Inc()
		return nil, nil
	}

	metrics.MetricFetches.WithLabelValues("sleep", "ok").Inc()
	return raw, nil
}

// Path builders. Summary, sleep and heart rate are scoped by display name when
// one is known; HRV never is. Each primary path carries a legacy
// "/modern/proxy" variant that older deployments still answer on.

func summaryPaths(displayName, date string) []string {
	if displayName != "" {
		return withLegacyVariant("/usersummary-service/usersummary/daily/" + url.PathEscape(displayName) + "?calendarDate=" + date)
	}
	return withLegacyVariant("/wellness-service/wellness/dailySummaryChart/" + date)
}

func sleepPaths(displayName, date string) []string {
	if displayName != "" {
		return withLegacyVariant("/wellness-service/wellness/dailySleepData/" + url.PathEscape(displayName) + "?date=" + date)
	}
	return withLegacyVariant("/wellness-service/wellness/dailySleepData/" + date)
}

func heartRatePaths(displayName, date string) []string {
	if displayName != "" {
		return withLegacyVariant("/wellness-service/wellness/dailyHeartRate/" + url.PathEscape(displayName) + "?date=" + date)
	}
	return withLegacyVariant("/wellness-service/wellness/dailyHeartRate/" + date)
}

func hrvPaths(date string) []string {
	return withLegacyVariant("/hrv-service/hrv/" + date)
}

func withLegacyVariant(path string) []string {
	return []string{path, "/modern/proxy" + path}
}
