package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quiz-portal/internal/handler/dto"
	apperrors "github.com/yourusername/quiz-portal/internal/pkg/errors"
	"github.com/yourusername/quiz-portal/internal/service"
)

// AuthHandler обрабатывает запросы, связанные с аутентификацией и
// подтверждением email
type AuthHandler struct {
	authService         *service.AuthService
	verificationService *service.EmailVerificationService
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(
	authService *service.AuthService,
	verificationService *service.EmailVerificationService,
) *AuthHandler {
	return &AuthHandler{
		authService:         authService,
		verificationService: verificationService,
	}
}

// Структуры запросов и ответов

// RegisterRequest представляет запрос на регистрацию
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest представляет запрос на вход. В поле login принимается имя
// пользователя или email.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ConfirmEmailRequest представляет запрос на подтверждение email кодом
type ConfirmEmailRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

// Register обрабатывает запрос на регистрацию. После создания аккаунта
// пользователю отправляется код подтверждения email; вход возможен только
// после подтверждения.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.RegisterUser(service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	log.Printf("[AuthHandler] Пользователь ID=%d (%s) успешно зарегистрирован", user.ID, user.Email)

	// Отправка кода не должна ронять регистрацию: аккаунт уже создан,
	// код можно запросить повторно
	if err := h.verificationService.SendCode(c.Request.Context(), user.ID); err != nil {
		log.Printf("[AuthHandler] Не удалось отправить код подтверждения пользователю ID=%d: %v", user.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    dto.NewUserResponse(user),
		"message": "Verification code sent to email",
	})
}

// Login обрабатывает запрос на вход
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	token, user, err := h.authService.LoginUser(req.Login, req.Password)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        dto.NewUserResponse(user),
		"accessToken": token,
		"tokenType":   "Bearer",
	})
}

// Me возвращает профиль текущего пользователя
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// DeleteAccount удаляет аккаунт текущего пользователя вместе с результатами
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	if err := h.authService.DeleteUser(userID); err != nil {
		h.handleAuthError(c, err)
		return
	}

	log.Printf("[AuthHandler] Аккаунт пользователя ID=%d удален", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// SendVerificationCode отправляет (или повторно отправляет) код
// подтверждения email текущему пользователю
func (h *AuthHandler) SendVerificationCode(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	if err := h.verificationService.SendCode(c.Request.Context(), userID); err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// ConfirmEmail подтверждает email текущего пользователя кодом из письма
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req ConfirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.verificationService.ConfirmCode(c.Request.Context(), userID, req.Code); err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// VerificationStatus возвращает состояние подтверждения email текущего
// пользователя
func (h *AuthHandler) VerificationStatus(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	status, err := h.verificationService.GetStatus(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// handleAuthError обрабатывает ошибки аутентификации и подтверждения email
// и возвращает соответствующие HTTP-ответы
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login or password", "error_type": "invalid_credentials"})
	case errors.Is(err, service.ErrEmailNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"error": "Email is not verified", "error_type": "email_not_verified"})
	case errors.Is(err, service.ErrInvalidVerificationCode):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid verification code", "error_type": "verification_code_invalid"})
	case errors.Is(err, service.ErrVerificationExpired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Verification code expired", "error_type": "verification_code_expired"})
	case errors.Is(err, service.ErrVerificationAttemptsExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts, request a new code", "error_type": "verification_attempts_exceeded"})
	case errors.Is(err, service.ErrVerificationResendCooldown):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Code was sent recently, wait before retrying", "error_type": "verification_resend_cooldown"})
	case errors.Is(err, apperrors.ErrDeliveryFailure):
		log.Printf("[AuthHandler] Ошибка доставки письма: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to deliver email", "error_type": "email_delivery_failure"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Internal server error in AuthHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
