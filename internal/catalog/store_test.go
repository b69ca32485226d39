package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/quiz-portal/internal/pkg/errors"
)

func sampleQuestions(n int) []Question {
	questions := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, Question{
			Text:          "Столица Казахстана?",
			Answers:       []string{"Астана", "Алматы", "Шымкент", "Караганда"},
			CorrectAnswer: "Астана",
		})
	}
	return questions
}

func TestStoreAddExistsRemove(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	id, err := store.Add("География", sampleQuestions(3))
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)
	assert.True(t, store.Exists(id))

	name, err := store.NameOf(id)
	require.NoError(t, err)
	assert.Equal(t, "География", name)

	questions, err := store.QuestionsOf(id)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	for _, q := range questions {
		assert.True(t, q.HasValidAnswer())
	}

	require.NoError(t, store.Remove(id))
	assert.False(t, store.Exists(id))

	_, err = store.QuestionsOf(id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStoreRemoveUnknown(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	err = store.Remove(42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStoreSmallestFreeIdentifier(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"Первая", "Вторая", "Третья"} {
		_, err := store.Add(name, sampleQuestions(1))
		require.NoError(t, err)
	}
	assert.Equal(t, []uint{1, 2, 3}, store.ListIdentifiers())

	require.NoError(t, store.Remove(2))

	// После удаления 2 из {1,2,3} следующий Add выделяет 2
	id, err := store.Add("Новая", sampleQuestions(1))
	require.NoError(t, err)
	assert.Equal(t, uint(2), id)
}

func TestStoreAddValidation(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	t.Run("empty name", func(t *testing.T) {
		_, err := store.Add("  ", sampleQuestions(1))
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("no questions", func(t *testing.T) {
		_, err := store.Add("Пустая", nil)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("wrong option count", func(t *testing.T) {
		bad := []Question{{
			Text:          "Вопрос",
			Answers:       []string{"Один", "Два"},
			CorrectAnswer: "Один",
		}}
		_, err := store.Add("Плохая", bad)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("correct answer not among options", func(t *testing.T) {
		bad := []Question{{
			Text:          "Вопрос",
			Answers:       []string{"Один", "Два", "Три", "Четыре"},
			CorrectAnswer: "Пять",
		}}
		_, err := store.Add("Плохая", bad)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := store.Add("История", sampleQuestions(1))
		require.NoError(t, err)
		_, err = store.Add("История", sampleQuestions(1))
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestStoreRescanOnStartup(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	id1, err := store.Add("Первая", sampleQuestions(2))
	require.NoError(t, err)
	id2, err := store.Add("Вторая", sampleQuestions(2))
	require.NoError(t, err)

	// Повторное открытие каталога восстанавливает набор идентификаторов
	// сканированием файлов с числовыми именами
	reopened, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, []uint{id1, id2}, reopened.ListIdentifiers())

	name, err := reopened.NameOf(id2)
	require.NoError(t, err)
	assert.Equal(t, "Вторая", name)
}

func TestStoreNameIndexDivergence(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	id, err := store.Add("География", sampleQuestions(1))
	require.NoError(t, err)

	// Ломаем индекс имён за спиной у Store
	require.NoError(t, os.WriteFile(filepath.Join(dir, "names.json"), []byte("{}"), 0o644))

	broken, err := NewStore(dir)
	require.NoError(t, err)
	require.True(t, broken.Exists(id))

	_, err = broken.NameOf(id)
	assert.ErrorIs(t, err, apperrors.ErrInternalConsistency)
}

func TestStorePersistedLayout(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	id, err := store.Add("География", sampleQuestions(1))
	require.NoError(t, err)

	require.Equal(t, uint(1), id)

	// Файл викторины - массив объектов вопросов
	data, err := os.ReadFile(filepath.Join(dir, "1.json"))
	require.NoError(t, err)
	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "Столица Казахстана?", raw[0]["question"])
	assert.Equal(t, "Астана", raw[0]["correct_answer"])

	// Индекс имён - отображение "<id>" -> "<name>"
	data, err = os.ReadFile(filepath.Join(dir, "names.json"))
	require.NoError(t, err)
	names := make(map[string]string)
	require.NoError(t, json.Unmarshal(data, &names))
	assert.Equal(t, "География", names["1"])
}
