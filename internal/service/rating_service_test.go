package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quiz-portal/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-portal/internal/pkg/errors"
)

func TestGetRatingTable(t *testing.T) {
	store, _ := newTestCatalog(t, "История", 2)
	userRepo := new(MockUserRepository)
	resultRepo := new(MockResultRepository)
	svc := NewRatingService(userRepo, resultRepo, store)

	userRepo.On("ListByRating", 2, 2).Return([]entity.User{
		{ID: 5, Username: "petr", Rating: 80},
		{ID: 9, Username: "anna", Rating: 75},
	}, int64(10), nil)

	rows, total, err := svc.GetRatingTable(2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
	require.Len(t, rows, 2)
	// Ранг продолжает нумерацию с предыдущих страниц
	assert.Equal(t, 3, rows[0].Rank)
	assert.Equal(t, "petr", rows[0].Username)
	assert.Equal(t, 4, rows[1].Rank)
}

func TestGetUserHistoryLabelsQuizzes(t *testing.T) {
	store, quizID := newTestCatalog(t, "География", 2)
	userRepo := new(MockUserRepository)
	resultRepo := new(MockResultRepository)
	svc := NewRatingService(userRepo, resultRepo, store)

	completed := time.Now().Add(-time.Hour)
	resultRepo.On("GetUserResults", uint(1), 10, 0).Return([]entity.ResultRecord{
		{UserID: 1, QuizID: quizID, Score: 5000, CorrectAnswers: 1, TotalQuestions: 2, CompletedAt: completed},
		{UserID: 1, QuizID: 777, Score: 10000, CorrectAnswers: 2, TotalQuestions: 2, CompletedAt: completed},
	}, int64(2), nil)

	rows, total, err := svc.GetUserHistory(1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "География", rows[0].QuizName)
	// Удалённая из каталога викторина остаётся в истории, но без имени
	assert.Equal(t, "", rows[1].QuizName)
}

func TestGetQuizResults(t *testing.T) {
	store, quizID := newTestCatalog(t, "История", 2)
	userRepo := new(MockUserRepository)
	resultRepo := new(MockResultRepository)
	svc := NewRatingService(userRepo, resultRepo, store)

	completed := time.Now()
	resultRepo.On("GetAllQuizResults", quizID).Return([]entity.ResultRecord{
		{UserID: 5, QuizID: quizID, Score: 10000, CorrectAnswers: 2, TotalQuestions: 2, CompletedAt: completed},
		{UserID: 9, QuizID: quizID, Score: 5000, CorrectAnswers: 1, TotalQuestions: 2, CompletedAt: completed},
		{UserID: 5, QuizID: quizID, Score: 5000, CorrectAnswers: 1, TotalQuestions: 2, CompletedAt: completed},
	}, nil)
	userRepo.On("GetByID", uint(5)).Return(&entity.User{ID: 5, Username: "petr"}, nil).Once()
	userRepo.On("GetByID", uint(9)).Return(&entity.User{ID: 9, Username: "anna"}, nil).Once()

	rows, err := svc.GetQuizResults(quizID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "petr", rows[0].Username)
	assert.Equal(t, "anna", rows[1].Username)
	// Имя пользователя кешируется, повторного обращения к репозиторию нет
	assert.Equal(t, "petr", rows[2].Username)
	userRepo.AssertExpectations(t)
}

func TestGetQuizResultsUnknownQuiz(t *testing.T) {
	store, _ := newTestCatalog(t, "История", 2)
	svc := NewRatingService(new(MockUserRepository), new(MockResultRepository), store)

	_, err := svc.GetQuizResults(999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
