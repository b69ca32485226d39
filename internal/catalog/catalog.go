package catalog

// Question представляет один вопрос викторины. Вопросы неизменяемы после
// сохранения: обновления нет, только добавление/удаление викторины целиком.
type Question struct {
	Text          string   `json:"question"`
	Answers       []string `json:"answers"`
	CorrectAnswer string   `json:"correct_answer"`
	Image         string   `json:"image,omitempty"`
}

// OptionCount - требуемое число вариантов ответа на вопрос
const OptionCount = 4

// HasValidAnswer проверяет, что правильный ответ присутствует среди вариантов
func (q *Question) HasValidAnswer() bool {
	for _, a := range q.Answers {
		if a == q.CorrectAnswer {
			return true
		}
	}
	return false
}

// IsCorrect проверяет ответ пользователя точным сравнением строк.
// Ответ, не совпадающий ни с одним вариантом, просто неверный, не ошибка.
func (q *Question) IsCorrect(answer string) bool {
	return answer == q.CorrectAnswer
}
