package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quiz-portal/internal/handler/dto"
	apperrors "github.com/yourusername/quiz-portal/internal/pkg/errors"
	"github.com/yourusername/quiz-portal/internal/service"
)

// RatingHandler обрабатывает запросы таблицы рейтинга и истории результатов
type RatingHandler struct {
	ratingService *service.RatingService
}

// NewRatingHandler создает новый обработчик рейтинга
func NewRatingHandler(ratingService *service.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// GetRatingTable возвращает страницу глобальной таблицы рейтинга
// GET /api/rating?page=1&per_page=10
func (h *RatingHandler) GetRatingTable(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	rows, total, err := h.ratingService.GetRatingTable(page, perPage)
	if err != nil {
		h.handleRatingError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedRatingResponse{
		Rows:    rows,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// GetMyHistory возвращает историю результатов текущего пользователя
// GET /api/rating/history?page=1&per_page=10
func (h *RatingHandler) GetMyHistory(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	rows, total, err := h.ratingService.GetUserHistory(userID, page, perPage)
	if err != nil {
		h.handleRatingError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedHistoryResponse{
		Rows:    rows,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// handleRatingError обрабатывает ошибки рейтинга и отправляет
// соответствующий HTTP ответ
func (h *RatingHandler) handleRatingError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrInternalConsistency) {
		log.Printf("ERROR: Нарушение целостности каталога при построении истории: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Catalog consistency violation"})
	} else {
		log.Printf("ERROR: Internal server error in RatingHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
