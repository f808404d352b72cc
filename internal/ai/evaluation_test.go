package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotal(t *testing.T) {
	assert.Equal(t, 0.0, ComputeTotal(nil))

	scores := []CriterionScore{
		{Criterion: "correctness", Score: 4},
		{Criterion: "depth", Score: 3},
		{Criterion: "clarity", Score: 5},
	}
	assert.InDelta(t, 4.0, ComputeTotal(scores), totalEpsilon)
}

func TestNewEvaluationRecomputesTotal(t *testing.T) {
	eval := NewEvaluation("q1", []CriterionScore{
		{Criterion: "correctness", Score: 5},
		{Criterion: "depth", Score: 2},
	}, 0.8, "уточнить обработку ошибок")

	assert.InDelta(t, 3.5, eval.Total, totalEpsilon)
	assert.NoError(t, eval.Validate(5))
}

func TestValidateRejectsBadEvaluations(t *testing.T) {
	valid := NewEvaluation("q1", []CriterionScore{
		{Criterion: "correctness", Score: 4},
	}, 0.7, "")

	tests := []struct {
		name   string
		mutate func(e *Evaluation)
	}{
		{"пустой question_id", func(e *Evaluation) { e.QuestionID = "" }},
		{"нет баллов", func(e *Evaluation) { e.Scores = nil }},
		{"пустой критерий", func(e *Evaluation) { e.Scores[0].Criterion = "" }},
		{"балл выше шкалы", func(e *Evaluation) { e.Scores[0].Score = 6; e.Total = 6 }},
		{"отрицательный балл", func(e *Evaluation) { e.Scores[0].Score = -1; e.Total = -1 }},
		{"уверенность выше единицы", func(e *Evaluation) { e.Confidence = 1.2 }},
		{"отрицательная уверенность", func(e *Evaluation) { e.Confidence = -0.1 }},
		{"итог не согласован", func(e *Evaluation) { e.Total = 1.0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := valid
			eval.Scores = append([]CriterionScore{}, valid.Scores...)
			tt.mutate(&eval)
			assert.Error(t, eval.Validate(5))
		})
	}
}

func TestParseEvaluation(t *testing.T) {
	content := `{
		"scores": [
			{"criterion": "correctness", "score": 4},
			{"criterion": "depth", "score": 3}
		],
		"confidence": 0.85,
		"advice": "спросить про абсолютные ссылки"
	}`

	eval, err := parseEvaluation(content, "q1", 5)
	require.NoError(t, err)
	assert.Equal(t, "q1", eval.QuestionID)
	require.Len(t, eval.Scores, 2)
	assert.InDelta(t, 3.5, eval.Total, totalEpsilon)
	assert.InDelta(t, 0.85, eval.Confidence, totalEpsilon)
	assert.Equal(t, "спросить про абсолютные ссылки", eval.Advice)
}

func TestParseEvaluationStripsMarkdownFences(t *testing.T) {
	content := "Вот оценка:\n```json\n" +
		`{"scores": [{"criterion": "correctness", "score": 5}], "confidence": 0.9, "advice": ""}` +
		"\n```"

	eval, err := parseEvaluation(content, "q1", 5)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, eval.Total, totalEpsilon)
}

func TestParseEvaluationClampsOutOfRangeValues(t *testing.T) {
	content := `{
		"scores": [
			{"criterion": "correctness", "score": 7},
			{"criterion": "depth", "score": -2}
		],
		"confidence": 1.4,
		"advice": ""
	}`

	eval, err := parseEvaluation(content, "q1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5.0, eval.Scores[0].Score)
	assert.Equal(t, 0.0, eval.Scores[1].Score)
	assert.Equal(t, 1.0, eval.Confidence)
	assert.InDelta(t, 2.5, eval.Total, totalEpsilon)
}

func TestParseEvaluationRejectsFreeText(t *testing.T) {
	_, err := parseEvaluation("Кандидат ответил хорошо, ставлю четыре.", "q1", 5)
	assert.Error(t, err)

	_, err = parseEvaluation(`{"scores": [], "confidence": 0.5}`, "q1", 5)
	assert.Error(t, err)
}

func TestParseGeneratedQuestion(t *testing.T) {
	content := `{
		"text": "Как найти дубликаты в столбце?",
		"capabilities": ["data-cleaning"],
		"difficulty": "intermediate",
		"expected_answer": "Условное форматирование или COUNTIF",
		"evaluation_criteria": [
			{"name": "method", "description": "Назван рабочий способ"},
			{"name": "tradeoffs", "description": "Упомянуты ограничения"}
		]
	}`

	q, err := parseGeneratedQuestion(content, GenerationRequest{Capability: "data-cleaning", Difficulty: "intermediate"})
	require.NoError(t, err)
	assert.Empty(t, q.ID)
	assert.Equal(t, "Как найти дубликаты в столбце?", q.Text)
	assert.Equal(t, []string{"data-cleaning"}, q.Capabilities)
	assert.Equal(t, "intermediate", q.Difficulty)
	require.Len(t, q.Criteria, 2)
}

func TestParseGeneratedQuestionFallsBackToRequest(t *testing.T) {
	content := `{
		"text": "Вопрос без метаданных",
		"evaluation_criteria": [{"name": "correctness", "description": "верный ответ"}]
	}`

	q, err := parseGeneratedQuestion(content, GenerationRequest{Capability: "formulas", Difficulty: "advanced"})
	require.NoError(t, err)
	assert.Equal(t, []string{"formulas"}, q.Capabilities)
	assert.Equal(t, "advanced", q.Difficulty)
}

func TestParseGeneratedQuestionRejectsIncompletePayloads(t *testing.T) {
	req := GenerationRequest{Capability: "formulas", Difficulty: "basic"}

	_, err := parseGeneratedQuestion("просто текст без JSON", req)
	assert.Error(t, err)

	_, err = parseGeneratedQuestion(`{"text": "", "evaluation_criteria": [{"name": "a"}]}`, req)
	assert.Error(t, err)

	_, err = parseGeneratedQuestion(`{"text": "Вопрос", "evaluation_criteria": []}`, req)
	assert.Error(t, err)
}
