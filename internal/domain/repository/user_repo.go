package repository

import (
	"github.com/yourusername/quiz-portal/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	Update(user *entity.User) error
	// UpdateProfile обновляет только перечисленные поля, не трогая пароль
	UpdateProfile(userID uint, updates map[string]interface{}) error
	UpdateRating(userID uint, rating int64) error
	ListByRating(limit, offset int) ([]entity.User, int64, error)
	Delete(id uint) error
}
