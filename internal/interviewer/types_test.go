package interviewer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"excel-interviewer-bot/internal/ai"
	"excel-interviewer-bot/internal/questionbank"
)

func TestMarkPresentedPanicsOnDuplicate(t *testing.T) {
	session := &Session{
		ID:              "s1",
		UsedQuestionIDs: make(map[string]bool),
	}
	q := &questionbank.Question{ID: "q1", Text: "вопрос"}

	session.markPresented(q)
	assert.Equal(t, []string{"q1"}, session.PresentedOrder)

	assert.Panics(t, func() {
		session.markPresented(q)
	})
}

func TestAddEvaluationPanicsOnUnpresentedQuestion(t *testing.T) {
	session := &Session{
		ID:              "s1",
		UsedQuestionIDs: map[string]bool{"q1": true},
	}

	session.addEvaluation(ai.NewEvaluation("q1", []ai.CriterionScore{
		{Criterion: "correctness", Score: 4},
	}, 0.8, ""))
	assert.Len(t, session.Evaluations, 1)

	assert.Panics(t, func() {
		session.addEvaluation(ai.NewEvaluation("q-never-asked", []ai.CriterionScore{
			{Criterion: "correctness", Score: 4},
		}, 0.8, ""))
	})
}

func TestDefaultDifficultyHeuristic(t *testing.T) {
	difficulties := []string{"basic", "intermediate", "advanced"}

	tests := []struct {
		name           string
		selfAssessment string
		want           string
	}{
		{"без ключевых слов", "Работаю с таблицами иногда", "basic"},
		{"новичок", "Я только начинаю", "basic"},
		{"средний уровень", "Уверенно владею формулами", "intermediate"},
		{"средний уровень по-английски", "I am confident with Excel", "intermediate"},
		// Заявленный продвинутый уровень не принимается на веру:
		// старт на ступень ниже максимума
		{"продвинутый", "Я продвинутый пользователь Excel", "intermediate"},
		{"эксперт по-английски", "I consider myself an advanced Excel expert", "intermediate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultDifficultyHeuristic(tt.selfAssessment, difficulties))
		})
	}
}

func TestDefaultDifficultyHeuristicDegenerateLists(t *testing.T) {
	assert.Equal(t, "", DefaultDifficultyHeuristic("эксперт", nil))
	assert.Equal(t, "basic", DefaultDifficultyHeuristic("эксперт", []string{"basic"}))
	assert.Equal(t, "basic", DefaultDifficultyHeuristic("эксперт", []string{"basic", "advanced"}))
}
