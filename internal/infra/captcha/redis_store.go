package captcha

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"console/internal/domain/entity"
	"console/internal/domain/service"
	"console/internal/errors"
)

const redisKeyPrefix = "captcha:"

// redisStore shares challenges between instances. Redis key expiry does the sweeping.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore stores challenges under captcha:<id> with the given ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration) service.CaptchaStore {
	return &redisStore{client: client, ttl: ttl}
}

type storedChallenge struct {
	Answer    string    `json:"answer"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *redisStore) Put(ctx context.Context, challenge *entity.Challenge) error {
	data, err := json.Marshal(storedChallenge{Answer: challenge.Answer, ExpiresAt: challenge.ExpiresAt})
	if err != nil {
		return errors.Wrap(err, "failed to marshal captcha challenge")
	}

	if err := s.client.Set(ctx, redisKeyPrefix+challenge.ID, data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set captcha failed")
	}

	return nil
}

// Take uses GETDEL so that only one caller can read a given id.
func (s *redisStore) Take(ctx context.Context, id string) (*entity.Challenge, error) {
	data, err := s.client.GetDel(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, service.ErrChallengeNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis getdel captcha failed")
	}

	var stored storedChallenge
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal captcha challenge")
	}

	return &entity.Challenge{ID: id, Answer: stored.Answer, ExpiresAt: stored.ExpiresAt}, nil
}
