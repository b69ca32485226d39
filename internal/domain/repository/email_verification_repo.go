package repository

import (
	"github.com/yourusername/quiz-portal/internal/domain/entity"
)

// EmailVerificationRepository определяет методы для работы с одноразовыми кодами
type EmailVerificationRepository interface {
	Create(code *entity.EmailVerificationCode) error
	GetLatestActiveByUserID(userID uint) (*entity.EmailVerificationCode, error)
	IncrementAttempts(id uint) error
	MarkConsumed(id uint) error
	DeleteByUserID(userID uint) error
}
