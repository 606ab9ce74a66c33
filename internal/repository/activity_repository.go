package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ops-analytics/internal/domain"
)

const activityKeyPrefix = "activity:users:"

// ActivityRepository tracks which subjects were active on which day using
// one HyperLogLog per calendar day.
type ActivityRepository interface {
	RecordActivity(ctx context.Context, subjectKey string, at time.Time) error
	DistinctActiveUsers(ctx context.Context, window domain.TimeWindow) (int64, error)
}

type activityRepository struct {
	client    redis.Cmdable
	location  *time.Location
	retention time.Duration
}

// NewActivityRepository builds the Redis-backed activity store. Day keys are
// cut in loc and expire after retention.
func NewActivityRepository(client redis.Cmdable, loc *time.Location, retention time.Duration) ActivityRepository {
	if loc == nil {
		loc = time.Local
	}
	return &activityRepository{client: client, location: loc, retention: retention}
}

func (r *activityRepository) RecordActivity(ctx context.Context, subjectKey string, at time.Time) error {
	key := activityDayKey(at.In(r.location))
	pipe := r.client.TxPipeline()
	pipe.PFAdd(ctx, key, subjectKey)
	if r.retention > 0 {
		pipe.Expire(ctx, key, r.retention)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// DistinctActiveUsers counts the union of all day sets touched by the window.
func (r *activityRepository) DistinctActiveUsers(ctx context.Context, window domain.TimeWindow) (int64, error) {
	keys := activityKeysForWindow(window, r.location)
	if len(keys) == 0 {
		return 0, nil
	}
	return r.client.PFCount(ctx, keys...).Result()
}

func activityDayKey(day time.Time) string {
	return activityKeyPrefix + day.Format("2006-01-02")
}

func activityKeysForWindow(window domain.TimeWindow, loc *time.Location) []string {
	if !window.From.Before(window.To) {
		return nil
	}
	from := window.From.In(loc)
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	keys := []string{}
	for day.Before(window.To) {
		keys = append(keys, activityDayKey(day))
		day = day.AddDate(0, 0, 1)
	}
	return keys
}
