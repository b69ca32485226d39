package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quiz-portal/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-portal/internal/pkg/errors"
)

const testCodePepper = "unit-test-pepper"

func newTestVerificationService(t *testing.T, userRepo *MockUserRepository, verificationRepo *MockEmailVerificationRepository, emailService *MockEmailService) *EmailVerificationService {
	t.Helper()
	svc, err := NewEmailVerificationService(userRepo, verificationRepo, emailService, 15*time.Minute, time.Minute, 5, testCodePepper)
	require.NoError(t, err)
	return svc
}

func unverifiedUser(id uint) *entity.User {
	return &entity.User{ID: id, Username: "ivan", Email: "ivan@example.com"}
}

func TestSendCodeSkipsVerifiedUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	verificationRepo := new(MockEmailVerificationRepository)
	emailService := new(MockEmailService)
	svc := newTestVerificationService(t, userRepo, verificationRepo, emailService)

	now := time.Now()
	userRepo.On("GetByID", uint(1)).Return(&entity.User{ID: 1, Email: "a@b.com", EmailVerifiedAt: &now}, nil)

	require.NoError(t, svc.SendCode(context.Background(), 1))
	emailService.AssertNotCalled(t, "SendVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendCodeCooldown(t *testing.T) {
	userRepo := new(MockUserRepository)
	verificationRepo := new(MockEmailVerificationRepository)
	emailService := new(MockEmailService)
	svc := newTestVerificationService(t, userRepo, verificationRepo, emailService)

	userRepo.On("GetByID", uint(1)).Return(unverifiedUser(1), nil)
	verificationRepo.On("GetLatestActiveByUserID", uint(1)).Return(&entity.EmailVerificationCode{
		ID:         10,
		UserID:     1,
		LastSentAt: time.Now().Add(-10 * time.Second),
		ExpiresAt:  time.Now().Add(14 * time.Minute),
	}, nil)

	err := svc.SendCode(context.Background(), 1)
	assert.ErrorIs(t, err, ErrVerificationResendCooldown)
	emailService.AssertNotCalled(t, "SendVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendAndConfirmCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	verificationRepo := new(MockEmailVerificationRepository)
	emailService := new(MockEmailService)
	svc := newTestVerificationService(t, userRepo, verificationRepo, emailService)

	userRepo.On("GetByID", uint(1)).Return(unverifiedUser(1), nil)
	verificationRepo.On("GetLatestActiveByUserID", uint(1)).Return(nil, apperrors.ErrNotFound).Once()

	// Перехватываем созданную запись и отправленный код
	var created *entity.EmailVerificationCode
	var sentCode string
	verificationRepo.On("Create", mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(0).(*entity.EmailVerificationCode)
	}).Return(nil)
	emailService.On("SendVerificationCode", mock.Anything, "ivan@example.com", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sentCode = args.Get(2).(string)
	}).Return(nil)

	require.NoError(t, svc.SendCode(context.Background(), 1))
	require.NotNil(t, created)
	require.Len(t, sentCode, 6)
	// В хранилище попадает хеш с солью и pepper'ом, а не сам код
	assert.Equal(t, hashVerificationCode(sentCode, created.CodeSalt, testCodePepper), created.CodeHash)

	verificationRepo.On("GetLatestActiveByUserID", uint(1)).Return(created, nil)
	verificationRepo.On("MarkConsumed", created.ID).Return(nil)
	userRepo.On("UpdateProfile", uint(1), mock.MatchedBy(func(updates map[string]interface{}) bool {
		_, ok := updates["email_verified_at"]
		return ok
	})).Return(nil)

	require.NoError(t, svc.ConfirmCode(context.Background(), 1, sentCode))
	verificationRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestConfirmCodeFailures(t *testing.T) {
	makeRecord := func() *entity.EmailVerificationCode {
		return &entity.EmailVerificationCode{
			ID:          10,
			UserID:      1,
			CodeHash:    hashVerificationCode("123456", "salt", testCodePepper),
			CodeSalt:    "salt",
			ExpiresAt:   time.Now().Add(10 * time.Minute),
			MaxAttempts: 5,
			LastSentAt:  time.Now(),
		}
	}

	t.Run("wrong code increments attempts", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		verificationRepo := new(MockEmailVerificationRepository)
		svc := newTestVerificationService(t, userRepo, verificationRepo, new(MockEmailService))

		userRepo.On("GetByID", uint(1)).Return(unverifiedUser(1), nil)
		verificationRepo.On("GetLatestActiveByUserID", uint(1)).Return(makeRecord(), nil)
		verificationRepo.On("IncrementAttempts", uint(10)).Return(nil)

		err := svc.ConfirmCode(context.Background(), 1, "654321")
		assert.ErrorIs(t, err, ErrInvalidVerificationCode)
		verificationRepo.AssertExpectations(t)
	})

	t.Run("expired code", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		verificationRepo := new(MockEmailVerificationRepository)
		svc := newTestVerificationService(t, userRepo, verificationRepo, new(MockEmailService))

		record := makeRecord()
		record.ExpiresAt = time.Now().Add(-time.Minute)
		userRepo.On("GetByID", uint(1)).Return(unverifiedUser(1), nil)
		verificationRepo.On("GetLatestActiveByUserID", uint(1)).Return(record, nil)

		err := svc.ConfirmCode(context.Background(), 1, "123456")
		assert.ErrorIs(t, err, ErrVerificationExpired)
	})

	t.Run("attempts exceeded", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		verificationRepo := new(MockEmailVerificationRepository)
		svc := newTestVerificationService(t, userRepo, verificationRepo, new(MockEmailService))

		record := makeRecord()
		record.AttemptCount = 5
		userRepo.On("GetByID", uint(1)).Return(unverifiedUser(1), nil)
		verificationRepo.On("GetLatestActiveByUserID", uint(1)).Return(record, nil)

		err := svc.ConfirmCode(context.Background(), 1, "123456")
		assert.ErrorIs(t, err, ErrVerificationAttemptsExceeded)
	})

	t.Run("no active code", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		verificationRepo := new(MockEmailVerificationRepository)
		svc := newTestVerificationService(t, userRepo, verificationRepo, new(MockEmailService))

		userRepo.On("GetByID", uint(1)).Return(unverifiedUser(1), nil)
		verificationRepo.On("GetLatestActiveByUserID", uint(1)).Return(nil, apperrors.ErrNotFound)

		err := svc.ConfirmCode(context.Background(), 1, "123456")
		assert.ErrorIs(t, err, ErrInvalidVerificationCode)
	})

	t.Run("empty code", func(t *testing.T) {
		svc := newTestVerificationService(t, new(MockUserRepository), new(MockEmailVerificationRepository), new(MockEmailService))

		err := svc.ConfirmCode(context.Background(), 1, "   ")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}
