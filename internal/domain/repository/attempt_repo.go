package repository

import (
	"github.com/yourusername/quiz-portal/internal/domain/entity"
)

// AttemptRepository хранит состояние незавершённых прохождений, по одному на
// токен попытки. Состояние живёт от старта викторины до чтения результата;
// брошенная попытка просто истекает по TTL хранилища.
type AttemptRepository interface {
	Save(attempt *entity.Attempt) error
	Get(token string) (*entity.Attempt, error)
	Delete(token string) error
}
