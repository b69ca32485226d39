package service

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/quiz-portal/internal/catalog"
	"github.com/yourusername/quiz-portal/internal/domain/entity"
	"github.com/yourusername/quiz-portal/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-portal/internal/pkg/errors"
)

// AttemptService ведёт пользователя по викторине: один вопрос за раз, подсчёт
// правильных ответов, передача управления в ScoringService по завершении.
// Состояние изолировано по токену попытки, между викторинами не протекает.
type AttemptService struct {
	store       *catalog.Store
	attemptRepo repository.AttemptRepository
	scoring     *ScoringService
}

// NewAttemptService создает новый сервис прохождений
func NewAttemptService(
	store *catalog.Store,
	attemptRepo repository.AttemptRepository,
	scoring *ScoringService,
) *AttemptService {
	return &AttemptService{
		store:       store,
		attemptRepo: attemptRepo,
		scoring:     scoring,
	}
}

// AttemptResult - итог завершённого прохождения, размечённый именем викторины
type AttemptResult struct {
	QuizID         uint   `json:"quiz_id"`
	QuizName       string `json:"quiz_name"`
	CorrectAnswers int    `json:"correct_answers"`
	TotalQuestions int    `json:"total_questions"`
	Score          int    `json:"score"`
	Rating         int64  `json:"rating"`
}

// Start начинает прохождение викторины и возвращает попытку вместе с первым
// вопросом. Неизвестный идентификатор викторины отклоняется до любых
// обращений к списку вопросов.
func (s *AttemptService) Start(userID, quizID uint) (*entity.Attempt, *catalog.Question, error) {
	if !s.store.Exists(quizID) {
		return nil, nil, fmt.Errorf("%w: quiz %d", apperrors.ErrNotFound, quizID)
	}

	questions, err := s.store.QuestionsOf(quizID)
	if err != nil {
		return nil, nil, err
	}
	if len(questions) == 0 {
		return nil, nil, fmt.Errorf("%w: quiz %d has no questions", apperrors.ErrValidation, quizID)
	}

	attempt := &entity.Attempt{
		Token:          uuid.NewString(),
		UserID:         userID,
		QuizID:         quizID,
		Position:       1,
		TotalQuestions: len(questions),
		StartedAt:      time.Now(),
	}
	if err := s.attemptRepo.Save(attempt); err != nil {
		return nil, nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	log.Printf("[Attempt] Пользователь #%d начал викторину #%d (%d вопросов)", userID, quizID, len(questions))
	question := questions[0]
	return attempt, &question, nil
}

// CurrentQuestion возвращает вопрос на текущей позиции попытки
func (s *AttemptService) CurrentQuestion(userID uint, token string) (*entity.Attempt, *catalog.Question, error) {
	attempt, questions, err := s.loadAttempt(userID, token)
	if err != nil {
		return nil, nil, err
	}
	if attempt.IsFinished() {
		return nil, nil, fmt.Errorf("%w: quiz is already finished", ErrAttemptNotFinished)
	}

	question := questions[attempt.Position-1]
	return attempt, &question, nil
}

// SubmitAnswer фиксирует ответ на текущий вопрос (пустая строка означает
// пропуск) и продвигает попытку. Ответ сравнивается точным совпадением строки
// с правильным вариантом; не совпавший ни с одним вариантом ответ - просто
// неверный. Позиция растёт независимо от того, был ли дан ответ.
// По завершении результат записывается и рейтинг пересчитывается.
func (s *AttemptService) SubmitAnswer(userID uint, token, answer string) (*entity.Attempt, *catalog.Question, error) {
	attempt, questions, err := s.loadAttempt(userID, token)
	if err != nil {
		return nil, nil, err
	}
	if attempt.IsFinished() {
		return nil, nil, fmt.Errorf("%w: quiz is already finished", ErrAttemptNotFinished)
	}

	current := questions[attempt.Position-1]
	attempt.Advance(current.IsCorrect(answer))

	if err := s.attemptRepo.Save(attempt); err != nil {
		return nil, nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	if attempt.IsFinished() {
		// Передаём управление в Scoring & Rating; состояние попытки живёт
		// до чтения результата
		if _, err := s.scoring.RecordResult(attempt.UserID, attempt.QuizID, attempt.CorrectAnswers, attempt.TotalQuestions); err != nil {
			return nil, nil, err
		}
		if _, err := s.scoring.RecomputeRating(attempt.UserID); err != nil {
			return nil, nil, err
		}
		return attempt, nil, nil
	}

	next := questions[attempt.Position-1]
	return attempt, &next, nil
}

// Result возвращает итог завершённой попытки, помеченный именем викторины из
// каталога, и уничтожает состояние попытки.
func (s *AttemptService) Result(userID uint, token string) (*AttemptResult, error) {
	attempt, err := s.getOwnedAttempt(userID, token)
	if err != nil {
		return nil, err
	}
	if !attempt.IsFinished() {
		return nil, fmt.Errorf("%w: %d of %d questions answered", ErrAttemptNotFinished, attempt.Position-1, attempt.TotalQuestions)
	}

	// Каталог опрашивается снова, чтобы подписать результат именем викторины
	name, err := s.store.NameOf(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	score, err := ComputeScore(attempt.CorrectAnswers, attempt.TotalQuestions)
	if err != nil {
		return nil, err
	}

	user, err := s.scoring.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if err := s.attemptRepo.Delete(token); err != nil {
		log.Printf("[Attempt] Не удалось удалить состояние попытки %s: %v", token, err)
	}

	return &AttemptResult{
		QuizID:         attempt.QuizID,
		QuizName:       name,
		CorrectAnswers: attempt.CorrectAnswers,
		TotalQuestions: attempt.TotalQuestions,
		Score:          score,
		Rating:         user.Rating,
	}, nil
}

// getOwnedAttempt достаёт попытку и проверяет владельца
func (s *AttemptService) getOwnedAttempt(userID uint, token string) (*entity.Attempt, error) {
	attempt, err := s.attemptRepo.Get(token)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("%w: attempt belongs to another user", apperrors.ErrForbidden)
	}
	return attempt, nil
}

// loadAttempt достаёт попытку вместе со списком вопросов её викторины.
// Викторина, удалённая из каталога во время прохождения, даёт отказ, а не
// обращение по несуществующему индексу.
func (s *AttemptService) loadAttempt(userID uint, token string) (*entity.Attempt, []catalog.Question, error) {
	attempt, err := s.getOwnedAttempt(userID, token)
	if err != nil {
		return nil, nil, err
	}

	if !s.store.Exists(attempt.QuizID) {
		return nil, nil, fmt.Errorf("%w: quiz %d", apperrors.ErrNotFound, attempt.QuizID)
	}
	questions, err := s.store.QuestionsOf(attempt.QuizID)
	if err != nil {
		return nil, nil, err
	}
	if attempt.Position < 1 || (attempt.Position <= attempt.TotalQuestions && attempt.Position > len(questions)) {
		return nil, nil, fmt.Errorf("%w: attempt position %d is out of range", apperrors.ErrInternalConsistency, attempt.Position)
	}
	return attempt, questions, nil
}
