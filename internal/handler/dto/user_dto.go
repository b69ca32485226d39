package dto

import (
	"time"

	"github.com/yourusername/quiz-portal/internal/domain/entity"
	"github.com/yourusername/quiz-portal/internal/service"
)

// UserResponse представляет пользователя в формате для ответа клиенту.
// Хеш пароля наружу не отдается.
type UserResponse struct {
	ID            uint      `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Rating        int64     `json:"rating"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// PaginatedRatingResponse представляет пагинированную таблицу рейтинга
type PaginatedRatingResponse struct {
	Rows    []service.RatingRow `json:"rows"`
	Total   int64               `json:"total"`
	Page    int                 `json:"page"`
	PerPage int                 `json:"per_page"`
}

// PaginatedHistoryResponse представляет пагинированную историю результатов
type PaginatedHistoryResponse struct {
	Rows    []service.HistoryRow `json:"rows"`
	Total   int64                `json:"total"`
	Page    int                  `json:"page"`
	PerPage int                  `json:"per_page"`
}

// NewUserResponse создает DTO для пользователя
func NewUserResponse(user *entity.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Rating:        user.Rating,
		EmailVerified: user.IsEmailVerified(),
		CreatedAt:     user.CreatedAt,
	}
}
