package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/quiz-portal/internal/domain/entity"
)

// ResultRepo реализует repository.ResultRepository
type ResultRepo struct {
	db *gorm.DB
}

// NewResultRepo создает новый репозиторий результатов
func NewResultRepo(db *gorm.DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// Save добавляет запись о результате. Дедупликации нет: повторные прохождения
// одной викторины создают новые записи.
func (r *ResultRepo) Save(result *entity.ResultRecord) error {
	return r.db.Create(result).Error
}

// GetByUserOrderedByScore возвращает все результаты пользователя по убыванию очков
func (r *ResultRepo) GetByUserOrderedByScore(userID uint) ([]entity.ResultRecord, error) {
	var results []entity.ResultRecord
	err := r.db.Where("user_id = ?", userID).
		Order("score DESC, id ASC").
		Find(&results).Error
	// Пустой слайс - валидный результат, ErrRecordNotFound здесь не проверяем
	return results, err
}

// GetUserResults возвращает результаты пользователя с пагинацией, свежие первыми
func (r *ResultRepo) GetUserResults(userID uint, limit, offset int) ([]entity.ResultRecord, int64, error) {
	var results []entity.ResultRecord
	var total int64

	if err := r.db.Model(&entity.ResultRecord{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// GetQuizResults возвращает результаты викторины с пагинацией, лучшие первыми
func (r *ResultRepo) GetQuizResults(quizID uint, limit, offset int) ([]entity.ResultRecord, int64, error) {
	var results []entity.ResultRecord
	var total int64

	if err := r.db.Model(&entity.ResultRecord{}).Where("quiz_id = ?", quizID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Where("quiz_id = ?", quizID).
		Order("score DESC, completed_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// GetAllQuizResults возвращает ВСЕ результаты викторины без пагинации.
// Используется для экспорта, где нужна полная выборка.
func (r *ResultRepo) GetAllQuizResults(quizID uint) ([]entity.ResultRecord, error) {
	var results []entity.ResultRecord
	err := r.db.Where("quiz_id = ?", quizID).
		Order("score DESC, completed_at ASC").
		Find(&results).Error
	return results, err
}

// DeleteByUser удаляет все результаты пользователя разом.
// Вызывается только при удалении владельца.
func (r *ResultRepo) DeleteByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&entity.ResultRecord{}).Error
}
