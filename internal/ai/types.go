package ai

import (
	"context"

	"excel-interviewer-bot/internal/questionbank"
	"excel-interviewer-bot/internal/transcript"
)

// Agent представляет внешнего LLM-собеседника. Мост общается с ним
// только через этот узкий контракт: разговорная реплика, структурированная
// оценка ответа, генерация нового вопроса и итоговое саммари.
type Agent interface {
	// Reply генерирует разговорную реплику интервьюера
	Reply(ctx context.Context, messages []transcript.Message, instruction string) (string, error)

	// EvaluateAnswer оценивает ответ кандидата на вопрос
	EvaluateAnswer(ctx context.Context, req EvaluationRequest) (*Evaluation, error)

	// GenerateQuestion генерирует новый вопрос, когда банк исчерпан
	GenerateQuestion(ctx context.Context, req GenerationRequest) (*questionbank.Question, error)

	// GenerateSummary создает итоговую оценку по всему интервью
	GenerateSummary(ctx context.Context, messages []transcript.Message, evaluations []Evaluation) (string, error)
}

// EvaluationRequest содержит полный контекст для оценки одного ответа
type EvaluationRequest struct {
	Question questionbank.Question
	Answer   string
	// History — предыдущие реплики, относящиеся к этому вопросу
	// (уточняющие вопросы и ответы на них)
	History []transcript.Message
	// Scale — верхняя граница шкалы оценок по критериям
	Scale float64
}

// GenerationRequest описывает параметры генерируемого вопроса
type GenerationRequest struct {
	Capability string
	Difficulty string
	Notes      string
}
