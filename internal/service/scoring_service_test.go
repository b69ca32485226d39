package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quiz-portal/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-portal/internal/pkg/errors"
)

func TestComputeScore(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    int
	}{
		{"семь из десяти", 7, 10, 7000},
		{"одна треть", 1, 3, 3333},
		{"две трети", 2, 3, 6667},
		{"ничего", 0, 5, 0},
		{"все", 5, 5, 10000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeScore(tt.correct, tt.total)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("нулевой total отклоняется", func(t *testing.T) {
		_, err := ComputeScore(3, 0)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("отрицательный total отклоняется", func(t *testing.T) {
		_, err := ComputeScore(3, -1)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestRecordResult(t *testing.T) {
	resultRepo := new(MockResultRepository)
	userRepo := new(MockUserRepository)
	svc := NewScoringService(resultRepo, userRepo)

	resultRepo.On("Save", mock.MatchedBy(func(r *entity.ResultRecord) bool {
		return r.UserID == 7 && r.QuizID == 2 && r.Score == 6000 &&
			r.CorrectAnswers == 6 && r.TotalQuestions == 10 && !r.CompletedAt.IsZero()
	})).Return(nil)

	record, err := svc.RecordResult(7, 2, 6, 10)
	require.NoError(t, err)
	assert.Equal(t, 6000, record.Score)
	resultRepo.AssertExpectations(t)
}

func TestRecordResultInvalidTotal(t *testing.T) {
	svc := NewScoringService(new(MockResultRepository), new(MockUserRepository))

	_, err := svc.RecordResult(1, 1, 0, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRecomputeRatingBestPerQuiz(t *testing.T) {
	resultRepo := new(MockResultRepository)
	userRepo := new(MockUserRepository)
	svc := NewScoringService(resultRepo, userRepo)

	// Отсортировано по убыванию очков; берётся только первая запись на
	// каждую викторину: (9000 + 5000) / 100 = 140
	resultRepo.On("GetByUserOrderedByScore", uint(7)).Return([]entity.ResultRecord{
		{UserID: 7, QuizID: 1, Score: 9000},
		{UserID: 7, QuizID: 1, Score: 8000},
		{UserID: 7, QuizID: 2, Score: 5000},
	}, nil)
	userRepo.On("UpdateRating", uint(7), int64(140)).Return(nil)

	rating, err := svc.RecomputeRating(7)
	require.NoError(t, err)
	assert.Equal(t, int64(140), rating)
	userRepo.AssertExpectations(t)
}

func TestRecomputeRatingEmptyHistory(t *testing.T) {
	resultRepo := new(MockResultRepository)
	userRepo := new(MockUserRepository)
	svc := NewScoringService(resultRepo, userRepo)

	resultRepo.On("GetByUserOrderedByScore", uint(3)).Return([]entity.ResultRecord{}, nil)
	userRepo.On("UpdateRating", uint(3), int64(0)).Return(nil)

	rating, err := svc.RecomputeRating(3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rating)
}
