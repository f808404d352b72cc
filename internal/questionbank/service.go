package questionbank

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Bank представляет банк вопросов: статические вопросы, загруженные из
// файла при старте, плюс вопросы, сгенерированные в течение сессии.
// Сгенерированные вопросы живут только в памяти и в файл не сохраняются.
type Bank struct {
	mu        sync.RWMutex
	questions []Question
	generated []Question
	byID      map[string]Question
}

// Load загружает банк вопросов из YAML файла
func Load(filename string) (*Bank, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", filename, err)
	}

	var questions []Question
	err = yaml.Unmarshal(data, &questions)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML банка вопросов: %w", err)
	}

	return New(questions)
}

// New создает банк из готового списка вопросов
func New(questions []Question) (*Bank, error) {
	byID := make(map[string]Question, len(questions))
	for i := range questions {
		q := questions[i]
		if q.ID == "" {
			return nil, fmt.Errorf("вопрос %d не имеет id", i)
		}
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("вопрос %s не имеет текста", q.ID)
		}
		if _, exists := byID[q.ID]; exists {
			return nil, fmt.Errorf("id вопроса %q встречается дважды", q.ID)
		}
		byID[q.ID] = q
	}

	return &Bank{
		questions: questions,
		byID:      byID,
	}, nil
}

// ForSession возвращает сессионное представление банка: статические
// вопросы общие, сгенерированные — свои для каждой сессии
func (b *Bank) ForSession() *Bank {
	b.mu.RLock()
	defer b.mu.RUnlock()

	byID := make(map[string]Question, len(b.questions))
	for id, q := range b.byID {
		byID[id] = q
	}

	return &Bank{
		questions: b.questions,
		byID:      byID,
	}
}

// Lookup ищет вопрос по области навыков и сложности, исключая уже
// использованные id. Среди нескольких кандидатов выбирается первый в
// порядке загрузки (детерминированный выбор, без случайности).
// Отсутствие подходящего вопроса — не ошибка: возвращается nil.
func (b *Bank) Lookup(capability, difficulty string, excludedIDs map[string]bool) *Question {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, pool := range [][]Question{b.questions, b.generated} {
		for i := range pool {
			q := pool[i]
			if excludedIDs[q.ID] {
				continue
			}
			if difficulty != "" && !strings.EqualFold(q.Difficulty, difficulty) {
				continue
			}
			if capability != "" && !q.HasCapability(capability) {
				continue
			}
			return &q
		}
	}

	return nil
}

// RegisterGenerated добавляет сгенерированный вопрос в банк на время
// сессии и присваивает ему новый уникальный идентификатор
func (b *Bank) RegisterGenerated(question Question) (*Question, error) {
	if strings.TrimSpace(question.Text) == "" {
		return nil, fmt.Errorf("текст сгенерированного вопроса не может быть пустым")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	question.ID = fmt.Sprintf("gen-%s", uuid.New().String())
	b.generated = append(b.generated, question)
	b.byID[question.ID] = question

	return &question, nil
}

// Get возвращает вопрос по идентификатору
func (b *Bank) Get(id string) (*Question, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	q, ok := b.byID[id]
	if !ok {
		return nil, false
	}
	return &q, true
}

// Count возвращает общее число вопросов в банке
func (b *Bank) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.questions) + len(b.generated)
}

// Capabilities возвращает отсортированный список всех областей навыков
func (b *Bank) Capabilities() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[string]bool)
	var result []string
	for _, pool := range [][]Question{b.questions, b.generated} {
		for i := range pool {
			for _, c := range pool[i].Capabilities {
				key := strings.ToLower(c)
				if !seen[key] {
					seen[key] = true
					result = append(result, c)
				}
			}
		}
	}

	sort.Strings(result)
	return result
}

// Difficulties возвращает отсортированный список всех уровней сложности
func (b *Bank) Difficulties() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[string]bool)
	var result []string
	for _, pool := range [][]Question{b.questions, b.generated} {
		for i := range pool {
			d := pool[i].Difficulty
			if d != "" && !seen[d] {
				seen[d] = true
				result = append(result, d)
			}
		}
	}

	sort.Strings(result)
	return result
}
