package garmin

import (
	"context"
	"encoding/json"
	"time"

	"garminbridge/internal/domain"
)

// DailySource supplies metric bundles to the resolver. The look-back pass is
// issued lazily, only when the current day's figures demand it.
type DailySource interface {
	FetchDaily(ctx context.Context, day time.Time) (domain.MetricBundle, error)
	FetchSleep(ctx context.Context, day time.Time) (json.RawMessage, error)
}

// ResolveDaily reconciles the provider's publish timing: activity data trickles
// in through the day (and not at all until the watch syncs), while "today's"
// sleep record always describes the previous night. Any positive step count
// means the current day has started publishing, since steps only accrue.
func ResolveDaily(ctx context.Context, src DailySource, today time.Time) (domain.MetricBundle, error) {
	current, err := src.FetchDaily(ctx, today)
	if err != nil {
		return domain.MetricBundle{}, err
	}
	yesterday := today.AddDate(0, 0, -1)

	if hasActivity(current) {
		// Today's sync has begun; only sleep needs the look-back.
		previousSleep, err := src.FetchSleep(ctx, yesterday)
		if err != nil {
			return domain.MetricBundle{}, err
		}
		current.Sleep = pickSleep(previousSleep, current.Sleep)
		return current, nil
	}

	previous, err := src.FetchDaily(ctx, yesterday)
	if err != nil {
		return domain.MetricBundle{}, err
	}
	if previous.Summary != nil {
		current.Summary = previous.Summary
	}
	if previous.HeartRate != nil {
		current.HeartRate = previous.HeartRate
	}
	if previous.HRV != nil {
		current.HRV = previous.HRV
	}
	current.Sleep = pickSleep(previous.Sleep, current.Sleep)
	return current, nil
}

// hasActivity reports whether the day's figures have started publishing. The
// step count is the authoritative signal; the provider's own "has data" flag
// stays wrong for most of the day.
func hasActivity(b domain.MetricBundle) bool {
	if b.Summary == nil {
		return false
	}
	var summary struct {
		TotalSteps *float64 `json:"totalSteps"`
	}
	if err := json.Unmarshal(b.Summary, &summary); err != nil {
		return false
	}
	return summary.TotalSteps != nil && *summary.TotalSteps > 0
}

// pickSleep prefers the previous night's record when it carries sleep detail,
// falls back to the current day's, else yields nothing. Sleep is a
// retrospective measurement, so the most recently completed night wins.
func pickSleep(previous, current json.RawMessage) json.RawMessage {
	if hasSleepDetail(previous) {
		return previous
	}
	if hasSleepDetail(current) {
		return current
	}
	return nil
}

func hasSleepDetail(raw json.RawMessage) bool {
	if raw == nil {
		return false
	}
	var body struct {
		DailySleepDTO json.RawMessage `json:"dailySleepDTO"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return false
	}
	return jsonTruthy(body.DailySleepDTO)
}

// jsonTruthy mirrors the loose truthiness the upstream payloads assume:
// absent, null, false, 0, "", {} and [] all count as empty.
func jsonTruthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case float64:
		return value != 0
	case string:
		return value != ""
	case []interface{}:
		return len(value) > 0
	case map[string]interface{}:
		return len(value) > 0
	default:
		return true
	}
}
