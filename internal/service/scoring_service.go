package service

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/yourusername/quiz-portal/internal/domain/entity"
	"github.com/yourusername/quiz-portal/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-portal/internal/pkg/errors"
)

// ScoringService превращает завершённое прохождение в долговременный
// результат и поддерживает агрегированный рейтинг пользователя актуальным.
type ScoringService struct {
	resultRepo repository.ResultRepository
	userRepo   repository.UserRepository
}

// NewScoringService создает новый сервис подсчёта очков
func NewScoringService(resultRepo repository.ResultRepository, userRepo repository.UserRepository) *ScoringService {
	return &ScoringService{
		resultRepo: resultRepo,
		userRepo:   userRepo,
	}
}

// ComputeScore переводит соотношение correct/total в целые очки 0..10000:
// доля округляется до 4 знаков и умножается на 10000. Хранение без
// плавающей точки при субпроцентной точности.
func ComputeScore(correct, total int) (int, error) {
	if total <= 0 {
		return 0, fmt.Errorf("%w: total question count must be positive, got %d", apperrors.ErrValidation, total)
	}
	if correct < 0 {
		return 0, fmt.Errorf("%w: correct answer count cannot be negative", apperrors.ErrValidation)
	}
	ratio := float64(correct) / float64(total)
	return int(math.Round(ratio * entity.ScoreScale)), nil
}

// RecordResult добавляет запись о результате с текущей меткой времени.
// Дедупликации нет: каждое прохождение одной и той же викторины даёт
// новую запись.
func (s *ScoringService) RecordResult(userID, quizID uint, correct, total int) (*entity.ResultRecord, error) {
	score, err := ComputeScore(correct, total)
	if err != nil {
		return nil, err
	}

	record := &entity.ResultRecord{
		UserID:         userID,
		QuizID:         quizID,
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: total,
		CompletedAt:    time.Now(),
	}
	if err := s.resultRepo.Save(record); err != nil {
		return nil, fmt.Errorf("failed to save result: %w", err)
	}

	log.Printf("[Scoring] Результат пользователя #%d по викторине #%d: %d/%d (очки %d)",
		userID, quizID, correct, total, score)
	return record, nil
}

// RecomputeRating полностью пересчитывает рейтинг пользователя: по каждой
// отдельной викторине берётся лучший результат (первый встреченный при
// сортировке по убыванию очков), сумма делится на 100 и перезаписывает
// сохранённый рейтинг. Пересчёт линеен по истории, что приемлемо при её
// размерах; количество попыток при этом не учитывается намеренно.
func (s *ScoringService) RecomputeRating(userID uint) (int64, error) {
	records, err := s.resultRepo.GetByUserOrderedByScore(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load results for rating: %w", err)
	}

	seen := make(map[uint]struct{}, len(records))
	var sum int64
	for _, rec := range records {
		if _, ok := seen[rec.QuizID]; ok {
			continue
		}
		seen[rec.QuizID] = struct{}{}
		sum += int64(rec.Score)
	}

	rating := sum / entity.RatingDivisor
	if err := s.userRepo.UpdateRating(userID, rating); err != nil {
		return 0, fmt.Errorf("failed to update rating: %w", err)
	}

	log.Printf("[Scoring] Рейтинг пользователя #%d пересчитан: %d (викторин: %d)", userID, rating, len(seen))
	return rating, nil
}
