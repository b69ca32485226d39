package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/quiz-portal/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-portal/internal/pkg/errors"
)

// ============================================================================
// Общие моки репозиториев для тестов сервисов
// ============================================================================

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(userID uint, updates map[string]interface{}) error {
	args := m.Called(userID, updates)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRating(userID uint, rating int64) error {
	args := m.Called(userID, rating)
	return args.Error(0)
}

func (m *MockUserRepository) ListByRating(limit, offset int) ([]entity.User, int64, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockResultRepository реализует repository.ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Save(result *entity.ResultRecord) error {
	args := m.Called(result)
	return args.Error(0)
}

func (m *MockResultRepository) GetByUserOrderedByScore(userID uint) ([]entity.ResultRecord, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ResultRecord), args.Error(1)
}

func (m *MockResultRepository) GetUserResults(userID uint, limit, offset int) ([]entity.ResultRecord, int64, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.ResultRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockResultRepository) GetQuizResults(quizID uint, limit, offset int) ([]entity.ResultRecord, int64, error) {
	args := m.Called(quizID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.ResultRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockResultRepository) GetAllQuizResults(quizID uint) ([]entity.ResultRecord, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ResultRecord), args.Error(1)
}

func (m *MockResultRepository) DeleteByUser(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

// MockEmailVerificationRepository реализует repository.EmailVerificationRepository
type MockEmailVerificationRepository struct {
	mock.Mock
}

func (m *MockEmailVerificationRepository) Create(code *entity.EmailVerificationCode) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockEmailVerificationRepository) GetLatestActiveByUserID(userID uint) (*entity.EmailVerificationCode, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.EmailVerificationCode), args.Error(1)
}

func (m *MockEmailVerificationRepository) IncrementAttempts(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockEmailVerificationRepository) MarkConsumed(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockEmailVerificationRepository) DeleteByUserID(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

// MockEmailService реализует EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendVerificationCode(ctx context.Context, toEmail, code, idempotencyKey string) error {
	args := m.Called(ctx, toEmail, code, idempotencyKey)
	return args.Error(0)
}

// memoryAttemptRepo - простое in-memory хранилище попыток для тестов
type memoryAttemptRepo struct {
	attempts map[string]entity.Attempt
}

func newMemoryAttemptRepo() *memoryAttemptRepo {
	return &memoryAttemptRepo{attempts: make(map[string]entity.Attempt)}
}

func (r *memoryAttemptRepo) Save(attempt *entity.Attempt) error {
	r.attempts[attempt.Token] = *attempt
	return nil
}

func (r *memoryAttemptRepo) Get(token string) (*entity.Attempt, error) {
	attempt, ok := r.attempts[token]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &attempt, nil
}

func (r *memoryAttemptRepo) Delete(token string) error {
	delete(r.attempts, token)
	return nil
}
