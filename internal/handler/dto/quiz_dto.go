package dto

import (
	"github.com/yourusername/quiz-portal/internal/catalog"
	"github.com/yourusername/quiz-portal/internal/domain/entity"
)

// QuestionOption представляет вариант ответа для фронтенда
type QuestionOption struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// QuestionResponse представляет вопрос в формате для ответа клиенту.
// Правильный ответ в DTO не попадает.
type QuestionResponse struct {
	Position int              `json:"position"`
	Text     string           `json:"text"`
	Options  []QuestionOption `json:"options"`
	Image    string           `json:"image,omitempty"`
}

// QuizResponse представляет викторину в формате для ответа клиенту
type QuizResponse struct {
	ID            uint               `json:"id"`
	Name          string             `json:"name"`
	QuestionCount int                `json:"question_count,omitempty"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
}

// AttemptResponse представляет состояние прохождения для ответа клиенту
type AttemptResponse struct {
	Token          string            `json:"token"`
	QuizID         uint              `json:"quiz_id"`
	Position       int               `json:"position"`
	TotalQuestions int               `json:"total_questions"`
	CorrectAnswers int               `json:"correct_answers"`
	Finished       bool              `json:"finished"`
	Question       *QuestionResponse `json:"question,omitempty"`
}

// NewQuestionResponse создает DTO для вопроса на заданной позиции,
// скрывая правильный ответ
func NewQuestionResponse(q *catalog.Question, position int) *QuestionResponse {
	if q == nil {
		return nil
	}
	options := make([]QuestionOption, len(q.Answers))
	for i, opt := range q.Answers {
		if opt == "" {
			opt = "(пустой вариант)"
		}
		options[i] = QuestionOption{ID: i, Text: opt}
	}
	return &QuestionResponse{
		Position: position,
		Text:     q.Text,
		Options:  options,
		Image:    q.Image,
	}
}

// NewQuizResponse создает DTO для викторины
func NewQuizResponse(id uint, name string, questions []catalog.Question) *QuizResponse {
	resp := &QuizResponse{
		ID:            id,
		Name:          name,
		QuestionCount: len(questions),
	}
	if questions != nil {
		resp.Questions = make([]QuestionResponse, len(questions))
		for i := range questions {
			resp.Questions[i] = *NewQuestionResponse(&questions[i], i+1)
		}
	}
	return resp
}

// NewAttemptResponse создает DTO для состояния прохождения. Счётчик
// правильных ответов не раскрывается до завершения.
func NewAttemptResponse(attempt *entity.Attempt, question *catalog.Question) *AttemptResponse {
	if attempt == nil {
		return nil
	}
	resp := &AttemptResponse{
		Token:          attempt.Token,
		QuizID:         attempt.QuizID,
		Position:       attempt.Position,
		TotalQuestions: attempt.TotalQuestions,
		Finished:       attempt.IsFinished(),
	}
	if resp.Finished {
		resp.CorrectAnswers = attempt.CorrectAnswers
	}
	if question != nil {
		resp.Question = NewQuestionResponse(question, attempt.Position)
	}
	return resp
}
