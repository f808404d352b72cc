package interviewer

import (
	"fmt"
	"strings"
	"time"

	"excel-interviewer-bot/internal/ai"
	"excel-interviewer-bot/internal/questionbank"
	"excel-interviewer-bot/internal/transcript"
)

// SessionState представляет состояние сессии интервью.
// Выбор вопроса и саммаризация происходят внутри шага, поэтому
// храним только состояния покоя между репликами.
type SessionState string

const (
	StateAwaitingSelfAssessment SessionState = "awaiting_self_assessment"
	StateAwaitingAnswer         SessionState = "awaiting_answer"
	StateCompleted              SessionState = "completed"
)

// Session представляет состояние одного интервью. Создается в StartSession
// и явно передается в каждый шаг моста — никаких глобальных переменных.
type Session struct {
	ID             string
	SelfAssessment string

	// Messages — упорядоченная история диалога
	Messages  []transcript.Message
	TurnIndex int

	// UsedQuestionIDs и PresentedOrder отслеживают заданные вопросы
	UsedQuestionIDs map[string]bool
	PresentedOrder  []string

	// Evaluations — история оценок в порядке получения
	Evaluations []ai.Evaluation

	// Текущий вопрос и счетчик уточнений по нему
	CurrentQuestion      *questionbank.Question
	CurrentQuestionStart int
	FollowUpCount        int

	// Целевые параметры следующего вопроса
	TargetDifficulty string
	TargetCapability string
	CapabilityIndex  int

	GeneratedCount int
	QuestionsAsked int

	State        SessionState
	StartedAt    time.Time
	LastActivity time.Time

	// bank — сессионное представление банка вопросов
	bank *questionbank.Bank
}

// markPresented помечает вопрос как заданный. Повторное предъявление
// одного вопроса — нарушение контракта программы, а не ошибка времени
// выполнения, поэтому падаем громко.
func (s *Session) markPresented(q *questionbank.Question) {
	if s.UsedQuestionIDs[q.ID] {
		panic(fmt.Sprintf("нарушение инварианта: вопрос %s уже задавался в сессии %s", q.ID, s.ID))
	}
	s.UsedQuestionIDs[q.ID] = true
	s.PresentedOrder = append(s.PresentedOrder, q.ID)
}

// addEvaluation добавляет оценку в историю. Оценка обязана ссылаться на
// вопрос, который реально задавался в этой сессии.
func (s *Session) addEvaluation(eval ai.Evaluation) {
	if !s.UsedQuestionIDs[eval.QuestionID] {
		panic(fmt.Sprintf("нарушение инварианта: оценка ссылается на незаданный вопрос %s в сессии %s",
			eval.QuestionID, s.ID))
	}
	s.Evaluations = append(s.Evaluations, eval)
}

// DifficultyHeuristic выводит стартовый уровень сложности из свободного
// текста самооценки кандидата. Правило подменяемо: точная формула в
// исходном поведении не специфицирована.
type DifficultyHeuristic func(selfAssessment string, difficulties []string) string

// DefaultDifficultyHeuristic — простая эвристика по ключевым словам.
// Самооценка — это априорная гипотеза, а не истина, поэтому стартовый
// уровень ограничен сверху предпоследним уровнем: заявленный "advanced"
// начинает со среднего уровня и должен подтвердить его ответами.
func DefaultDifficultyHeuristic(selfAssessment string, difficulties []string) string {
	if len(difficulties) == 0 {
		return ""
	}

	text := strings.ToLower(selfAssessment)
	claimed := 0
	switch {
	case containsAny(text, "advanced", "expert", "продвинут", "эксперт", "отличн"):
		claimed = len(difficulties) - 1
	case containsAny(text, "intermediate", "confident", "средн", "уверен", "хорош"):
		claimed = 1
	}

	ceiling := len(difficulties) - 2
	if ceiling < 0 {
		ceiling = 0
	}
	if claimed > ceiling {
		claimed = ceiling
	}

	return difficulties[claimed]
}

func containsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
