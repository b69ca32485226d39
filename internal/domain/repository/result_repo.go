package repository

import (
	"github.com/yourusername/quiz-portal/internal/domain/entity"
)

// ResultRepository определяет методы для работы с результатами прохождений
type ResultRepository interface {
	Save(result *entity.ResultRecord) error
	// GetByUserOrderedByScore возвращает все результаты пользователя,
	// отсортированные по очкам по убыванию. Порядок важен: пересчёт рейтинга
	// берёт первую встреченную запись на каждую викторину.
	GetByUserOrderedByScore(userID uint) ([]entity.ResultRecord, error)
	GetUserResults(userID uint, limit, offset int) ([]entity.ResultRecord, int64, error)
	GetQuizResults(quizID uint, limit, offset int) ([]entity.ResultRecord, int64, error)
	GetAllQuizResults(quizID uint) ([]entity.ResultRecord, error)
	DeleteByUser(userID uint) error
}
