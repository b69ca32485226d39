package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, регистрация
	// с уже занятым именем пользователя).
	ErrConflict = errors.New("resource state conflict")

	// ErrInternalConsistency означает расхождение между набором идентификаторов
	// каталога и индексом имён. Каталог повреждён, операция прерывается без
	// попыток восстановления.
	ErrInternalConsistency = errors.New("catalog internal consistency violation")

	// ErrDeliveryFailure возвращается, когда письмо не удалось доставить.
	ErrDeliveryFailure = errors.New("cannot send")
)
