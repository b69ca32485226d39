package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/quiz-portal/internal/catalog"
	"github.com/yourusername/quiz-portal/internal/handler/dto"
	apperrors "github.com/yourusername/quiz-portal/internal/pkg/errors"
	"github.com/yourusername/quiz-portal/internal/service"
)

// QuizHandler обрабатывает запросы к каталогу викторин
type QuizHandler struct {
	store         *catalog.Store
	ratingService *service.RatingService
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(store *catalog.Store, ratingService *service.RatingService) *QuizHandler {
	return &QuizHandler{
		store:         store,
		ratingService: ratingService,
	}
}

// QuestionPayload представляет один вопрос в запросе на создание викторины
type QuestionPayload struct {
	Text          string   `json:"question" binding:"required,min=3,max=500"`
	Answers       []string `json:"answers" binding:"required,len=4"`
	CorrectAnswer string   `json:"correct_answer" binding:"required"`
	Image         string   `json:"image,omitempty"`
}

// CreateQuizRequest представляет запрос на создание викторины
type CreateQuizRequest struct {
	Name      string            `json:"name" binding:"required,min=1,max=200"`
	Questions []QuestionPayload `json:"questions" binding:"required,min=1"`
}

// ListQuizzes возвращает каталог викторин: идентификаторы и имена
// GET /api/quizzes
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	ids := h.store.ListIdentifiers()

	list := make([]*dto.QuizResponse, 0, len(ids))
	for _, id := range ids {
		name, err := h.store.NameOf(id)
		if err != nil {
			// Каталог изменился между перечислением и чтением имени
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			h.handleQuizError(c, err)
			return
		}
		list = append(list, &dto.QuizResponse{ID: id, Name: name})
	}

	c.JSON(http.StatusOK, gin.H{"quizzes": list, "total": len(list)})
}

// GetQuiz возвращает викторину с вопросами. Правильные ответы наружу не
// отдаются.
// GET /api/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	name, err := h.store.NameOf(quizID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}
	questions, err := h.store.QuestionsOf(quizID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quizID, name, questions))
}

// CreateQuiz добавляет викторину в каталог
// POST /api/quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions := make([]catalog.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, catalog.Question{
			Text:          q.Text,
			Answers:       q.Answers,
			CorrectAnswer: q.CorrectAnswer,
			Image:         q.Image,
		})
	}

	id, err := h.store.Add(req.Name, questions)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	log.Printf("[QuizHandler] Викторина #%d (%s) добавлена в каталог, вопросов: %d", id, req.Name, len(questions))
	c.JSON(http.StatusCreated, gin.H{"id": id, "name": req.Name, "question_count": len(questions)})
}

// DeleteQuiz удаляет викторину из каталога
// DELETE /api/quizzes/:id
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	if err := h.store.Remove(quizID); err != nil {
		h.handleQuizError(c, err)
		return
	}

	log.Printf("[QuizHandler] Викторина #%d удалена из каталога", quizID)
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted"})
}

// ExportQuizResults экспортирует результаты викторины в CSV или Excel формате
// GET /api/quizzes/:id/results/export?format=csv|xlsx
func (h *QuizHandler) ExportQuizResults(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	format := c.DefaultQuery("format", "csv")

	results, err := h.ratingService.GetQuizResults(quizID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	filename := fmt.Sprintf("quiz_%d_results_%s", quizID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, results, filename)
	default:
		h.exportCSV(c, results, filename)
	}
}

// exportCSV экспортирует результаты в CSV с правильным экранированием спецсимволов
func (h *QuizHandler) exportCSV(c *gin.Context, results []service.QuizResultRow, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Место", "Пользователь", "Очки", "Правильных", "Всего вопросов", "Завершено"})

	for _, r := range results {
		writer.Write([]string{
			strconv.Itoa(r.Rank),
			sanitizeForExcel(r.Username),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.CorrectAnswers),
			strconv.Itoa(r.TotalQuestions),
			r.CompletedAt.Format(time.RFC3339),
		})
	}
}

// exportXLSX экспортирует результаты в Excel с использованием StreamWriter
func (h *QuizHandler) exportXLSX(c *gin.Context, results []service.QuizResultRow, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Результаты"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[QuizHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Место", "Пользователь", "Очки", "Правильных", "Всего вопросов", "Завершено"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[QuizHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range results {
		rowNum := i + 2
		cell := fmt.Sprintf("A%d", rowNum)
		row := []interface{}{r.Rank, sanitizeForExcel(r.Username), r.Score, r.CorrectAnswers, r.TotalQuestions, r.CompletedAt.Format(time.RFC3339)}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[QuizHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[QuizHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[QuizHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// handleQuizError обрабатывает ошибки от каталога и отправляет соответствующий HTTP ответ
func (h *QuizHandler) handleQuizError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrInternalConsistency) {
		log.Printf("ERROR: Нарушение целостности каталога: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Catalog consistency violation"})
	} else {
		log.Printf("ERROR: Internal server error in QuizHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
