package entity

import (
	"time"
)

// ScoreScale - максимум шкалы очков: доля правильных ответов,
// округлённая до 4 знаков и приведённая к целому 0..10000.
const ScoreScale = 10000

// RatingDivisor переводит сумму лучших очков в более грубые единицы рейтинга.
const RatingDivisor = 100

// ResultRecord представляет результат одного завершённого прохождения викторины.
// Записи только добавляются; удаляются разом при удалении владельца.
type ResultRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	QuizID         uint      `gorm:"not null;index" json:"quiz_id"`
	Score          int       `gorm:"not null;default:0" json:"score"`
	CorrectAnswers int       `gorm:"not null;default:0" json:"correct_answers"`
	TotalQuestions int       `gorm:"not null;default:0" json:"total_questions"`
	CompletedAt    time.Time `gorm:"not null" json:"completed_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (ResultRecord) TableName() string {
	return "results"
}
