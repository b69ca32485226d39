package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/quiz-portal/internal/catalog"
	"github.com/yourusername/quiz-portal/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-portal/internal/pkg/errors"
)

// RatingService строит глобальную таблицу рейтинга и историю результатов
type RatingService struct {
	userRepo   repository.UserRepository
	resultRepo repository.ResultRepository
	store      *catalog.Store
}

// NewRatingService создает новый сервис рейтинга
func NewRatingService(
	userRepo repository.UserRepository,
	resultRepo repository.ResultRepository,
	store *catalog.Store,
) *RatingService {
	return &RatingService{
		userRepo:   userRepo,
		resultRepo: resultRepo,
		store:      store,
	}
}

// RatingRow - строка глобальной таблицы рейтинга
type RatingRow struct {
	Rank     int    `json:"rank"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Rating   int64  `json:"rating"`
}

// HistoryRow - строка истории результатов пользователя, подписанная именем
// викторины из каталога
type HistoryRow struct {
	QuizID         uint      `json:"quiz_id"`
	QuizName       string    `json:"quiz_name"`
	Score          int       `json:"score"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	CompletedAt    time.Time `json:"completed_at"`
}

// QuizResultRow - результат одного пользователя по конкретной викторине,
// размеченный именем пользователя для выгрузки
type QuizResultRow struct {
	Rank           int       `json:"rank"`
	UserID         uint      `json:"user_id"`
	Username       string    `json:"username"`
	Score          int       `json:"score"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	CompletedAt    time.Time `json:"completed_at"`
}

// GetRatingTable возвращает страницу глобальной таблицы рейтинга
func (s *RatingService) GetRatingTable(page, pageSize int) ([]RatingRow, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	} else if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	users, total, err := s.userRepo.ListByRating(pageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	rows := make([]RatingRow, 0, len(users))
	for i, u := range users {
		rows = append(rows, RatingRow{
			Rank:     offset + i + 1,
			UserID:   u.ID,
			Username: u.Username,
			Rating:   u.Rating,
		})
	}
	return rows, total, nil
}

// GetUserHistory возвращает историю результатов пользователя. Каталог
// опрашивается снова для каждой записи, чтобы подписать её именем викторины;
// для удалённых из каталога викторин имя недоступно.
func (s *RatingService) GetUserHistory(userID uint, page, pageSize int) ([]HistoryRow, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	} else if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	records, total, err := s.resultRepo.GetUserResults(userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	rows := make([]HistoryRow, 0, len(records))
	for _, rec := range records {
		name, err := s.store.NameOf(rec.QuizID)
		if err != nil {
			if errors.Is(err, apperrors.ErrInternalConsistency) {
				// Повреждённый каталог - прерываем, а не угадываем
				return nil, 0, err
			}
			// Викторина удалена из каталога после прохождения
			name = ""
		}
		rows = append(rows, HistoryRow{
			QuizID:         rec.QuizID,
			QuizName:       name,
			Score:          rec.Score,
			CorrectAnswers: rec.CorrectAnswers,
			TotalQuestions: rec.TotalQuestions,
			CompletedAt:    rec.CompletedAt,
		})
	}
	return rows, total, nil
}

// GetQuizResults возвращает все результаты по викторине, упорядоченные по
// убыванию очков и подписанные именами пользователей. Используется для
// выгрузки; пагинации нет намеренно.
func (s *RatingService) GetQuizResults(quizID uint) ([]QuizResultRow, error) {
	if !s.store.Exists(quizID) {
		return nil, fmt.Errorf("%w: quiz %d", apperrors.ErrNotFound, quizID)
	}

	records, err := s.resultRepo.GetAllQuizResults(quizID)
	if err != nil {
		return nil, err
	}

	// Имена пользователей подтягиваются по одному; выгрузка - редкая
	// административная операция, отдельный join здесь не окупается
	names := make(map[uint]string)
	rows := make([]QuizResultRow, 0, len(records))
	for i, rec := range records {
		username, ok := names[rec.UserID]
		if !ok {
			user, err := s.userRepo.GetByID(rec.UserID)
			if err != nil {
				if !errors.Is(err, apperrors.ErrNotFound) {
					return nil, err
				}
				// Пользователь удалён, результат остаётся безымянным
				username = ""
			} else {
				username = user.Username
			}
			names[rec.UserID] = username
		}
		rows = append(rows, QuizResultRow{
			Rank:           i + 1,
			UserID:         rec.UserID,
			Username:       username,
			Score:          rec.Score,
			CorrectAnswers: rec.CorrectAnswers,
			TotalQuestions: rec.TotalQuestions,
			CompletedAt:    rec.CompletedAt,
		})
	}
	return rows, nil
}
