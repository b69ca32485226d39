package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/quiz-portal/internal/domain/entity"
	"github.com/yourusername/quiz-portal/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-portal/internal/pkg/errors"
	"github.com/yourusername/quiz-portal/pkg/auth"
)

// AuthService отвечает за регистрацию, вход и удаление аккаунта
type AuthService struct {
	userRepo         repository.UserRepository
	resultRepo       repository.ResultRepository
	verificationRepo repository.EmailVerificationRepository
	jwtService       *auth.JWTService
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(
	userRepo repository.UserRepository,
	resultRepo repository.ResultRepository,
	verificationRepo repository.EmailVerificationRepository,
	jwtService *auth.JWTService,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		resultRepo:       resultRepo,
		verificationRepo: verificationRepo,
		jwtService:       jwtService,
	}
}

// RegisterInput - входные данные регистрации
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// RegisterUser создает аккаунт. Имя пользователя и email уникальны; пароль
// хешируется bcrypt-хуком сущности при сохранении.
func (s *AuthService) RegisterUser(input RegisterInput) (*entity.User, error) {
	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)

	if len(username) < 3 || len(username) > 50 {
		return nil, fmt.Errorf("%w: username must be 3-50 characters", apperrors.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email address", apperrors.ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	user := &entity.User{
		Username: username,
		Email:    email,
		Password: input.Password,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	log.Printf("[Auth] Зарегистрирован пользователь #%d (%s)", user.ID, user.Username)
	return user, nil
}

// LoginUser проверяет учётные данные и выдаёт access-токен. Вход по имени
// пользователя или email; до подтверждения email вход отклоняется.
func (s *AuthService) LoginUser(login, password string) (string, *entity.User, error) {
	login = strings.TrimSpace(login)

	user, err := s.userRepo.GetByUsername(login)
	if errors.Is(err, apperrors.ErrNotFound) {
		user, err = s.userRepo.GetByEmail(normalizeEmail(login))
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !user.CheckPassword(password) {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsEmailVerified() {
		return "", nil, ErrEmailNotVerified
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, user, nil
}

// GetUserByID возвращает пользователя по идентификатору
func (s *AuthService) GetUserByID(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// DeleteUser удаляет аккаунт вместе со всей историей результатов и
// неиспользованными кодами подтверждения
func (s *AuthService) DeleteUser(userID uint) error {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return err
	}
	if err := s.resultRepo.DeleteByUser(userID); err != nil {
		return fmt.Errorf("failed to delete user results: %w", err)
	}
	if err := s.verificationRepo.DeleteByUserID(userID); err != nil {
		return fmt.Errorf("failed to delete verification codes: %w", err)
	}
	if err := s.userRepo.Delete(userID); err != nil {
		return err
	}

	log.Printf("[Auth] Пользователь #%d удалён вместе с историей результатов", userID)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
