package service

import "errors"

// Специфичные ошибки потоков аутентификации и подтверждения email.
// Обработчики используют их для стабильного маппинга в error_type.
var (
	ErrInvalidCredentials           = errors.New("invalid_credentials")
	ErrEmailNotVerified             = errors.New("email_not_verified")
	ErrInvalidVerificationCode      = errors.New("invalid_verification_code")
	ErrVerificationExpired          = errors.New("verification_expired")
	ErrVerificationAttemptsExceeded = errors.New("verification_attempts_exceeded")
	ErrVerificationResendCooldown   = errors.New("verification_resend_cooldown")

	// ErrAttemptNotFinished возвращается при чтении результата попытки,
	// которая ещё не дошла до конца викторины.
	ErrAttemptNotFinished = errors.New("attempt_not_finished")
)
