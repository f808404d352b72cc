package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// totalEpsilon — допустимое расхождение между сохраненным итоговым баллом
// и средним арифметическим оценок по критериям
const totalEpsilon = 1e-6

// CriterionScore представляет оценку по одному критерию
type CriterionScore struct {
	Criterion string  `json:"criterion"`
	Score     float64 `json:"score"`
}

// Evaluation представляет структурированную оценку одного ответа кандидата.
// Итоговый балл — среднее арифметическое оценок по критериям.
type Evaluation struct {
	QuestionID string           `json:"question_id"`
	Scores     []CriterionScore `json:"scores"`
	Total      float64          `json:"total"`
	Confidence float64          `json:"confidence"`
	Advice     string           `json:"advice"`
}

// ComputeTotal вычисляет итоговый балл как среднее арифметическое
func ComputeTotal(scores []CriterionScore) float64 {
	if len(scores) == 0 {
		return 0
	}

	sum := 0.0
	for _, s := range scores {
		sum += s.Score
	}
	return sum / float64(len(scores))
}

// NewEvaluation создает оценку с пересчитанным итоговым баллом
func NewEvaluation(questionID string, scores []CriterionScore, confidence float64, advice string) Evaluation {
	return Evaluation{
		QuestionID: questionID,
		Scores:     scores,
		Total:      ComputeTotal(scores),
		Confidence: confidence,
		Advice:     advice,
	}
}

// Validate проверяет корректность оценки: баллы в пределах шкалы,
// уверенность в [0, 1], итог согласован с оценками по критериям
func (e *Evaluation) Validate(scale float64) error {
	if e.QuestionID == "" {
		return fmt.Errorf("оценка не привязана к вопросу")
	}

	if len(e.Scores) == 0 {
		return fmt.Errorf("оценка не содержит баллов по критериям")
	}

	for _, s := range e.Scores {
		if s.Criterion == "" {
			return fmt.Errorf("критерий оценки не может быть пустым")
		}
		if s.Score < 0 || s.Score > scale {
			return fmt.Errorf("балл %v по критерию %q вне шкалы [0, %v]", s.Score, s.Criterion, scale)
		}
	}

	if e.Confidence < 0 || e.Confidence > 1 {
		return fmt.Errorf("уверенность %v вне диапазона [0, 1]", e.Confidence)
	}

	if math.Abs(e.Total-ComputeTotal(e.Scores)) > totalEpsilon {
		return fmt.Errorf("итоговый балл %v не согласован со средним по критериям %v",
			e.Total, ComputeTotal(e.Scores))
	}

	return nil
}

// evaluationPayload — формат структурированного ответа модели
type evaluationPayload struct {
	Scores []struct {
		Criterion string  `json:"criterion"`
		Score     float64 `json:"score"`
	} `json:"scores"`
	Confidence float64 `json:"confidence"`
	Advice     string  `json:"advice"`
}

// parseEvaluation разбирает JSON ответ модели в оценку. Значения вне
// диапазона обрезаются до границ шкалы, после чего оценка валидируется.
func parseEvaluation(content string, questionID string, scale float64) (*Evaluation, error) {
	var payload evaluationPayload
	err := json.Unmarshal([]byte(extractJSONObject(content)), &payload)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга JSON оценки: %w", err)
	}

	if len(payload.Scores) == 0 {
		return nil, fmt.Errorf("ответ модели не содержит оценок по критериям")
	}

	scores := make([]CriterionScore, 0, len(payload.Scores))
	for _, s := range payload.Scores {
		scores = append(scores, CriterionScore{
			Criterion: s.Criterion,
			Score:     clamp(s.Score, 0, scale),
		})
	}

	eval := NewEvaluation(questionID, scores, clamp(payload.Confidence, 0, 1), payload.Advice)
	err = eval.Validate(scale)
	if err != nil {
		return nil, err
	}

	return &eval, nil
}

// extractJSONObject вырезает JSON объект из ответа модели, отбрасывая
// markdown-ограждения и сопроводительный текст
func extractJSONObject(content string) string {
	cleaned := strings.TrimSpace(content)
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start != -1 && end != -1 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
