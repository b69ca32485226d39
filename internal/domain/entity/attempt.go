package entity

import "time"

// Attempt представляет состояние одного прохождения викторины пользователем.
// Создаётся при старте, изменяется один раз на каждый отправленный (или
// пропущенный) ответ, уничтожается при чтении результата.
type Attempt struct {
	Token          string    `json:"token"`
	UserID         uint      `json:"user_id"`
	QuizID         uint      `json:"quiz_id"`
	Position       int       `json:"position"` // 1-based, растёт монотонно
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	StartedAt      time.Time `json:"started_at"`
}

// Advance фиксирует результат текущего вопроса и переводит попытку к
// следующей позиции. Позиция увеличивается независимо от того, был ли ответ.
func (a *Attempt) Advance(correct bool) {
	if correct {
		a.CorrectAnswers++
	}
	a.Position++
}

// IsFinished возвращает true, когда позиция вышла за число вопросов
func (a *Attempt) IsFinished() bool {
	return a.Position > a.TotalQuestions
}
