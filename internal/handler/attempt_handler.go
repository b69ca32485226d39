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

// AttemptHandler обрабатывает запросы прохождения викторин
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler создает новый обработчик прохождений
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// SubmitAnswerRequest представляет запрос с ответом на текущий вопрос.
// Пустая строка означает пропуск вопроса.
type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}

// StartAttempt начинает прохождение викторины
// POST /api/quizzes/:id/attempts
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	quizID := c.MustGet("quizID").(uint)

	attempt, question, err := h.attemptService.Start(userID, quizID)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAttemptResponse(attempt, question))
}

// CurrentQuestion возвращает вопрос на текущей позиции прохождения
// GET /api/attempts/:token/question
func (h *AttemptHandler) CurrentQuestion(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	token := c.Param("token")

	attempt, question, err := h.attemptService.CurrentQuestion(userID, token)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptResponse(attempt, question))
}

// SubmitAnswer фиксирует ответ на текущий вопрос и возвращает следующее
// состояние прохождения
// POST /api/attempts/:token/answer
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	token := c.Param("token")

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attempt, question, err := h.attemptService.SubmitAnswer(userID, token, req.Answer)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptResponse(attempt, question))
}

// AttemptResult возвращает итог завершенного прохождения. Состояние
// прохождения после этого уничтожается.
// GET /api/attempts/:token/result
func (h *AttemptHandler) AttemptResult(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	token := c.Param("token")

	result, err := h.attemptService.Result(userID, token)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleAttemptError обрабатывает ошибки прохождения и отправляет
// соответствующий HTTP ответ
func (h *AttemptHandler) handleAttemptError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttemptNotFinished):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "attempt_state"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInternalConsistency):
		log.Printf("ERROR: Нарушение целостности состояния прохождения: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Attempt state is inconsistent"})
	default:
		log.Printf("ERROR: Internal server error in AttemptHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
