package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yourusername/quiz-portal/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-portal/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository поверх Redis.
// Состояние попытки хранится JSON-блобом под ключом attempt:<token> с TTL:
// брошенные попытки не чистятся явно, а просто истекают.
type AttemptRepo struct {
	client redis.UniversalClient
	ttl    time.Duration
	ctx    context.Context
}

// NewAttemptRepo создает новый репозиторий состояний попыток
func NewAttemptRepo(client redis.UniversalClient, ttl time.Duration) (*AttemptRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil for AttemptRepo")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AttemptRepo{
		client: client,
		ttl:    ttl,
		ctx:    context.Background(),
	}, nil
}

func attemptKey(token string) string {
	return "attempt:" + token
}

// Save сохраняет состояние попытки, продлевая TTL
func (r *AttemptRepo) Save(attempt *entity.Attempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	return r.client.Set(r.ctx, attemptKey(attempt.Token), data, r.ttl).Err()
}

// Get возвращает состояние попытки по токену
func (r *AttemptRepo) Get(token string) (*entity.Attempt, error) {
	data, err := r.client.Get(r.ctx, attemptKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	var attempt entity.Attempt
	if err := json.Unmarshal(data, &attempt); err != nil {
		return nil, err
	}
	return &attempt, nil
}

// Delete удаляет состояние попытки
func (r *AttemptRepo) Delete(token string) error {
	return r.client.Del(r.ctx, attemptKey(token)).Err()
}
