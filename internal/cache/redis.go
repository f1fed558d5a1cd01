package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "qthfeeds:page:"

// RedisStore is the alternative backend for deployments that already run
// Redis. Expiry is enforced server-side with the key TTL, so Get never
// returns a stale entry.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func OpenRedis(addr string, ttl time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

type redisEntry struct {
	Status      int       `json:"status"`
	ContentType string    `json:"contentType"`
	Body        []byte    `json:"body"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

func (s *RedisStore) Get(url string) (*Entry, bool, error) {
	ctx := context.Background()
	bs, err := s.rdb.Get(ctx, redisKeyPrefix+url).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var re redisEntry
	if err := json.Unmarshal(bs, &re); err != nil {
		return nil, false, err
	}
	return &Entry{
		URL:         url,
		Status:      re.Status,
		ContentType: re.ContentType,
		Body:        re.Body,
		FetchedAt:   re.FetchedAt,
	}, true, nil
}

func (s *RedisStore) Set(e *Entry) error {
	bs, err := json.Marshal(redisEntry{
		Status:      e.Status,
		ContentType: e.ContentType,
		Body:        e.Body,
		FetchedAt:   e.FetchedAt,
	})
	if err != nil {
		return err
	}
	return s.rdb.Set(context.Background(), redisKeyPrefix+e.URL, bs, s.ttl).Err()
}

func (s *RedisStore) URLs() ([]string, error) {
	ctx := context.Background()
	var urls []string
	iter := s.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		urls = append(urls, iter.Val()[len(redisKeyPrefix):])
	}
	return urls, iter.Err()
}

func (s *RedisStore) Count() (int64, error) {
	urls, err := s.URLs()
	if err != nil {
		return 0, err
	}
	return int64(len(urls)), nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
