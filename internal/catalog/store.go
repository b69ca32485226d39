package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	apperrors "github.com/yourusername/quiz-portal/internal/pkg/errors"
)

const namesFile = "names.json"

// Store - долговременное отображение идентификатора викторины в имя и список
// вопросов. Хранится как один файл <id>.json на викторину плюс индекс имён
// names.json. Набор идентификаторов держится в памяти и меняется строго
// вместе с индексом имён.
type Store struct {
	dir string

	mu    sync.RWMutex
	ids   map[uint]struct{}
	names map[uint]string
}

// NewStore открывает каталог викторин. Набор идентификаторов выводится один
// раз сканированием файлов с числовыми именами; отдельный счётчик
// последовательности не ведётся.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create catalog dir %s: %w", dir, err)
	}

	s := &Store{
		dir:   dir,
		ids:   make(map[uint]struct{}),
		names: make(map[uint]string),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan catalog dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || e.Name() == namesFile {
			continue
		}
		base := strings.TrimSuffix(e.Name(), ".json")
		if base == e.Name() {
			continue
		}
		id, err := strconv.ParseUint(base, 10, 32)
		if err != nil || id == 0 {
			// Файлы с нечисловыми именами викторинами не считаются
			continue
		}
		s.ids[uint(id)] = struct{}{}
	}

	if err := s.loadNames(); err != nil {
		return nil, err
	}

	log.Printf("[Catalog] Каталог %s открыт: %d викторин", dir, len(s.ids))
	return s, nil
}

// loadNames читает индекс имён. Отсутствующий файл эквивалентен пустому индексу.
func (s *Store) loadNames() error {
	data, err := os.ReadFile(filepath.Join(s.dir, namesFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", namesFile, err)
	}

	raw := make(map[string]string)
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse %s: %w", namesFile, err)
	}
	for k, v := range raw {
		id, err := strconv.ParseUint(k, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: non-numeric key %q in %s", apperrors.ErrInternalConsistency, k, namesFile)
		}
		s.names[uint(id)] = v
	}
	return nil
}

// saveNames перезаписывает индекс имён целиком
func (s *Store) saveNames() error {
	raw := make(map[string]string, len(s.names))
	for id, name := range s.names {
		raw[strconv.FormatUint(uint64(id), 10)] = name
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, namesFile), data, 0o644)
}

func (s *Store) quizPath(id uint) string {
	return filepath.Join(s.dir, strconv.FormatUint(uint64(id), 10)+".json")
}

// ListIdentifiers возвращает отсортированный список всех действительных
// идентификаторов викторин на момент последней мутации через этот Store.
func (s *Store) ListIdentifiers() []uint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uint, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Exists сообщает, известен ли идентификатор. Используется как guard перед
// любым другим обращением.
func (s *Store) Exists(id uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// NameOf возвращает отображаемое имя викторины. Расхождение набора
// идентификаторов и индекса имён - признак повреждённого каталога, операция
// прерывается без попыток угадать.
func (s *Store) NameOf(id uint) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.ids[id]; !ok {
		return "", fmt.Errorf("%w: quiz %d", apperrors.ErrNotFound, id)
	}
	name, ok := s.names[id]
	if !ok {
		return "", fmt.Errorf("%w: quiz %d is known but missing from name index", apperrors.ErrInternalConsistency, id)
	}
	return name, nil
}

// QuestionsOf возвращает упорядоченный список вопросов викторины
func (s *Store) QuestionsOf(id uint) ([]Question, error) {
	s.mu.RLock()
	if _, ok := s.ids[id]; !ok {
		s.mu.RUnlock()
		return nil, fmt.Errorf("%w: quiz %d", apperrors.ErrNotFound, id)
	}
	path := s.quizPath(id)
	s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: quiz %d is known but its file is gone", apperrors.ErrInternalConsistency, id)
		}
		return nil, fmt.Errorf("failed to read quiz %d: %w", id, err)
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse quiz %d: %w", id, err)
	}
	return questions, nil
}

// Add создаёт викторину: выделяет наименьший свободный положительный
// идентификатор, сохраняет список вопросов и запись в индексе имён. Линейный
// поиск идентификатора с единицы приемлем - каталог мал, добавления редки.
func (s *Store) Add(name string, questions []Question) (uint, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: quiz name is empty", apperrors.ErrValidation)
	}
	if len(questions) == 0 {
		return 0, fmt.Errorf("%w: quiz has no questions", apperrors.ErrValidation)
	}
	for i, q := range questions {
		if len(q.Answers) != OptionCount {
			return 0, fmt.Errorf("%w: question %d must have %d answer options", apperrors.ErrValidation, i+1, OptionCount)
		}
		if !q.HasValidAnswer() {
			return 0, fmt.Errorf("%w: question %d correct answer is not among its options", apperrors.ErrValidation, i+1)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.names {
		if existing == name {
			return 0, fmt.Errorf("%w: quiz name %q already exists", apperrors.ErrConflict, name)
		}
	}

	var id uint = 1
	for {
		if _, ok := s.ids[id]; !ok {
			break
		}
		id++
	}

	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(s.quizPath(id), data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write quiz %d: %w", id, err)
	}

	s.names[id] = name
	if err := s.saveNames(); err != nil {
		// Откатываем, чтобы набор и индекс не разошлись
		delete(s.names, id)
		os.Remove(s.quizPath(id))
		return 0, fmt.Errorf("failed to update name index: %w", err)
	}
	s.ids[id] = struct{}{}

	log.Printf("[Catalog] Добавлена викторина #%d (%q, %d вопросов)", id, name, len(questions))
	return id, nil
}

// Remove удаляет викторину: идентификатор из набора, запись из индекса имён
// и файл с вопросами. Частичный сбой (индекс обновлён, файл не удалился)
// оставляет осиротевший файл; компенсирующей транзакции нет - это
// осознанный пробел, а не путь восстановления.
func (s *Store) Remove(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; !ok {
		return fmt.Errorf("%w: quiz %d", apperrors.ErrNotFound, id)
	}

	delete(s.ids, id)
	delete(s.names, id)
	if err := s.saveNames(); err != nil {
		return fmt.Errorf("failed to update name index: %w", err)
	}
	if err := os.Remove(s.quizPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[Catalog] Файл викторины #%d не удалён: %v", id, err)
	}

	log.Printf("[Catalog] Удалена викторина #%d", id)
	return nil
}
