package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	clickKeyPrefix = "kol:clicks:"
	clickTTL       = 400 * 24 * time.Hour
	// maxStatsDays bounds one MGET; longer windows are rejected.
	maxStatsDays = 366
)

// RedisClickStore keeps one daily counter per influencer.
type RedisClickStore struct {
	client *redis.Client
}

func NewRedisClickStore(client *redis.Client) *RedisClickStore {
	return &RedisClickStore{client: client}
}

func clickKey(influencerID string, day time.Time) string {
	return clickKeyPrefix + influencerID + ":" + day.UTC().Format("2006-01-02")
}

func (s *RedisClickStore) IncrClick(ctx context.Context, influencerID string, at time.Time) (int64, error) {
	key := clickKey(influencerID, at)
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.Expire(ctx, key, clickTTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("incr click counter: %w", err)
	}
	return incr.Val(), nil
}

// CountClicks sums the daily counters of every UTC day touched by [from, to].
func (s *RedisClickStore) CountClicks(ctx context.Context, influencerID string, from, to time.Time) (int64, error) {
	start := truncateDay(from)
	end := truncateDay(to)
	if end.Before(start) {
		return 0, nil
	}

	var keys []string
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		keys = append(keys, clickKey(influencerID, day))
		if len(keys) > maxStatsDays {
			return 0, fmt.Errorf("click window longer than %d days", maxStatsDays)
		}
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("read click counters: %w", err)
	}

	var total int64
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		total += n
	}
	return total, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
