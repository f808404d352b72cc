package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"excel-interviewer-bot/internal/metrics"
	"excel-interviewer-bot/internal/questionbank"
	"excel-interviewer-bot/internal/transcript"
)

// maxAttempts — всего попыток на один запрос: первая плюс один повтор.
// Повторяются и сетевые ошибки, и некорректный структурированный ответ.
const maxAttempts = 2

// ClientConfig определяет настройки OpenAI клиента
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	Temperature    float64
	RequestTimeout time.Duration
}

// Client реализует Agent поверх OpenAI chat completions API
type Client struct {
	client  *openai.Client
	cfg     ClientConfig
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewClient создает OpenAI клиент с указанной конфигурацией
func NewClient(cfg ClientConfig, logger zerolog.Logger, m *metrics.Metrics) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("не задан API ключ OpenAI")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1500
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:  openai.NewClientWithConfig(config),
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}, nil
}

// Reply генерирует разговорную реплику интервьюера
func (c *Client) Reply(ctx context.Context, messages []transcript.Message, instruction string) (string, error) {
	request := c.newRequest(buildInterviewerSystemPrompt(instruction), messages, nil)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		content, err := c.createOnce(ctx, request)
		if err != nil {
			lastErr = err
			c.logRetry("reply", attempt, err)
			continue
		}
		return content, nil
	}

	return "", fmt.Errorf("не удалось получить реплику: %w", lastErr)
}

// EvaluateAnswer оценивает ответ кандидата, требуя от модели JSON
func (c *Client) EvaluateAnswer(ctx context.Context, req EvaluationRequest) (*Evaluation, error) {
	request := c.newRequest(buildEvaluationPrompt(req), nil, jsonResponseFormat())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		content, err := c.createOnce(ctx, request)
		if err != nil {
			lastErr = err
			c.logRetry("evaluate_answer", attempt, err)
			continue
		}

		eval, err := parseEvaluation(content, req.Question.ID, req.Scale)
		if err != nil {
			// Модель вернула свободный текст вместо структуры —
			// повторяем запрос с тем же входом
			lastErr = err
			c.logRetry("evaluate_answer", attempt, err)
			continue
		}

		c.logger.Info().
			Str("question_id", req.Question.ID).
			Float64("total", eval.Total).
			Float64("confidence", eval.Confidence).
			Msg("ответ оценен")
		return eval, nil
	}

	return nil, fmt.Errorf("не удалось оценить ответ: %w", lastErr)
}

// GenerateQuestion генерирует новый вопрос через LLM
func (c *Client) GenerateQuestion(ctx context.Context, req GenerationRequest) (*questionbank.Question, error) {
	request := c.newRequest(buildGenerationPrompt(req), nil, jsonResponseFormat())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		content, err := c.createOnce(ctx, request)
		if err != nil {
			lastErr = err
			c.logRetry("generate_question", attempt, err)
			continue
		}

		question, err := parseGeneratedQuestion(content, req)
		if err != nil {
			lastErr = err
			c.logRetry("generate_question", attempt, err)
			continue
		}

		c.logger.Info().
			Str("difficulty", question.Difficulty).
			Strs("capabilities", question.Capabilities).
			Msg("вопрос сгенерирован")
		return question, nil
	}

	return nil, fmt.Errorf("не удалось сгенерировать вопрос: %w", lastErr)
}

// GenerateSummary создает итоговую оценку по всему интервью
func (c *Client) GenerateSummary(ctx context.Context, messages []transcript.Message, evaluations []Evaluation) (string, error) {
	request := c.newRequest(buildSummaryPrompt(messages, evaluations), nil, nil)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		content, err := c.createOnce(ctx, request)
		if err != nil {
			lastErr = err
			c.logRetry("generate_summary", attempt, err)
			continue
		}
		return content, nil
	}

	return "", fmt.Errorf("не удалось создать саммари: %w", lastErr)
}

// newRequest собирает запрос: системный промпт плюс история диалога
func (c *Client) newRequest(systemPrompt string, messages []transcript.Message, format *openai.ChatCompletionResponseFormat) openai.ChatCompletionRequest {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	chatMessages = append(chatMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})

	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == transcript.RoleInterviewer {
			role = openai.ChatMessageRoleAssistant
		}
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	return openai.ChatCompletionRequest{
		Model:          c.cfg.Model,
		Messages:       chatMessages,
		MaxTokens:      c.cfg.MaxTokens,
		Temperature:    float32(c.cfg.Temperature),
		ResponseFormat: format,
	}
}

// createOnce выполняет один запрос к API с таймаутом
func (c *Client) createOnce(ctx context.Context, request openai.ChatCompletionRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(callCtx, request)
	if err != nil {
		if c.metrics != nil {
			c.metrics.IncrementAPICall(false)
		}
		return "", fmt.Errorf("ошибка запроса к OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		if c.metrics != nil {
			c.metrics.IncrementAPICall(false)
		}
		return "", fmt.Errorf("пустой ответ от OpenAI")
	}

	if c.metrics != nil {
		c.metrics.IncrementAPICall(true)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) logRetry(operation string, attempt int, err error) {
	if attempt < maxAttempts {
		c.logger.Warn().Err(err).Str("operation", operation).Int("attempt", attempt).
			Msg("запрос не удался, повторяем")
	} else {
		c.logger.Error().Err(err).Str("operation", operation).
			Msg("запрос не удался после повторной попытки")
	}
}

func jsonResponseFormat() *openai.ChatCompletionResponseFormat {
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}
}

// generatedQuestionPayload — формат структурированного ответа модели
// при генерации вопроса
type generatedQuestionPayload struct {
	Text           string   `json:"text"`
	Capabilities   []string `json:"capabilities"`
	Difficulty     string   `json:"difficulty"`
	ExpectedAnswer string   `json:"expected_answer"`
	Criteria       []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"evaluation_criteria"`
}

// parseGeneratedQuestion разбирает JSON ответ модели в черновик вопроса.
// Идентификатор не присваивается — это делает банк при регистрации.
func parseGeneratedQuestion(content string, req GenerationRequest) (*questionbank.Question, error) {
	var payload generatedQuestionPayload
	err := json.Unmarshal([]byte(extractJSONObject(content)), &payload)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга JSON вопроса: %w", err)
	}

	if strings.TrimSpace(payload.Text) == "" {
		return nil, fmt.Errorf("сгенерированный вопрос не содержит текста")
	}

	if len(payload.Criteria) == 0 {
		return nil, fmt.Errorf("сгенерированный вопрос не содержит критериев оценки")
	}

	capabilities := payload.Capabilities
	if len(capabilities) == 0 && req.Capability != "" {
		capabilities = []string{req.Capability}
	}

	difficulty := strings.TrimSpace(payload.Difficulty)
	if difficulty == "" {
		difficulty = req.Difficulty
	}

	criteria := make([]questionbank.Criterion, 0, len(payload.Criteria))
	for _, c := range payload.Criteria {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		criteria = append(criteria, questionbank.Criterion{
			Name:        c.Name,
			Description: c.Description,
		})
	}

	if len(criteria) == 0 {
		return nil, fmt.Errorf("критерии сгенерированного вопроса пусты")
	}

	return &questionbank.Question{
		Text:           strings.TrimSpace(payload.Text),
		Capabilities:   capabilities,
		Difficulty:     difficulty,
		ExpectedAnswer: payload.ExpectedAnswer,
		Criteria:       criteria,
	}, nil
}
