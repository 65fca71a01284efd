package captcha

import (
	"context"
	"time"

	"console/internal/domain/entity"
	"console/internal/domain/service"
	"console/internal/infra/cache"
)

// memoryStore keeps challenges in a bounded expiring LRU. Expired entries are evicted by the LRU's own sweep.
type memoryStore struct {
	entries *cache.Expiring[string, *entity.Challenge]
}

// NewMemoryStore holds at most capacity challenges for ttl each.
func NewMemoryStore(capacity int, ttl time.Duration, opts ...cache.Option) service.CaptchaStore {
	return &memoryStore{
		entries: cache.NewExpiring[string, *entity.Challenge](capacity, ttl, opts...),
	}
}

func (s *memoryStore) Put(_ context.Context, challenge *entity.Challenge) error {
	s.entries.Set(challenge.ID, challenge)

	return nil
}

func (s *memoryStore) Take(_ context.Context, id string) (*entity.Challenge, error) {
	challenge, ok := s.entries.Take(id)
	if !ok {
		return nil, service.ErrChallengeNotFound
	}

	return challenge, nil
}
