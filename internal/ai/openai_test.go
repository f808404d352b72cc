package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"excel-interviewer-bot/internal/metrics"
	"excel-interviewer-bot/internal/questionbank"
	"excel-interviewer-bot/internal/transcript"
)

// completionResponse собирает минимальный ответ chat completions API
func completionResponse(content string) []byte {
	body := map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   "gpt-4o-mini",
		"choices": []map[string]interface{}{
			{
				"index": 0,
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
	data, _ := json.Marshal(body)
	return data
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(completionResponse(content))
}

func writeServerError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(`{"error": {"message": "internal error", "type": "server_error"}}`))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *metrics.Metrics) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m := metrics.NewMetrics()
	client, err := NewClient(ClientConfig{
		APIKey:         "test-key",
		BaseURL:        server.URL,
		Model:          "gpt-4o-mini",
		RequestTimeout: 2 * time.Second,
	}, zerolog.Nop(), m)
	require.NoError(t, err)

	return client, m
}

func testEvaluationRequest() EvaluationRequest {
	return EvaluationRequest{
		Question: questionbank.Question{
			ID:         "q1",
			Text:       "Сравните VLOOKUP и INDEX+MATCH",
			Difficulty: "intermediate",
			Criteria: []questionbank.Criterion{
				{Name: "correctness", Description: "верный ответ"},
			},
		},
		Answer: "INDEX+MATCH гибче и не ломается при вставке столбцов",
		Scale:  5,
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(ClientConfig{}, zerolog.Nop(), nil)
	assert.Error(t, err)
}

func TestReplyRetriesAfterServerError(t *testing.T) {
	var calls int32
	client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			writeServerError(w)
			return
		}
		writeCompletion(w, "Здравствуйте! Готов начать интервью.")
	})

	reply, err := client.Reply(context.Background(), nil, "поприветствуй кандидата")
	require.NoError(t, err)
	assert.Equal(t, "Здравствуйте! Готов начать интервью.", reply)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	snapshot := m.GetSnapshot()
	assert.Equal(t, int64(2), snapshot.APICallsTotal)
	assert.Equal(t, int64(1), snapshot.APICallsSuccessful)
}

func TestReplyFailsAfterBothAttempts(t *testing.T) {
	var calls int32
	client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeServerError(w)
	})

	_, err := client.Reply(context.Background(), nil, "")
	require.Error(t, err)
	assert.Equal(t, int32(maxAttempts), atomic.LoadInt32(&calls))
	assert.Equal(t, int64(0), m.GetSnapshot().APICallsSuccessful)
}

func TestEvaluateAnswerRetriesOnMalformedResponse(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			// Свободный текст вместо структуры — такой ответ повторяется
			writeCompletion(w, "Кандидат ответил неплохо, ставлю четыре.")
			return
		}
		writeCompletion(w, `{"scores": [{"criterion": "correctness", "score": 4}], "confidence": 0.8, "advice": "уточнить детали"}`)
	})

	eval, err := client.EvaluateAnswer(context.Background(), testEvaluationRequest())
	require.NoError(t, err)
	assert.Equal(t, "q1", eval.QuestionID)
	assert.InDelta(t, 4.0, eval.Total, totalEpsilon)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestEvaluateAnswerFailsOnPersistentMalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "никакого JSON здесь нет")
	})

	_, err := client.EvaluateAnswer(context.Background(), testEvaluationRequest())
	assert.Error(t, err)
}

func TestReplyRecoversAfterTimeout(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			time.Sleep(500 * time.Millisecond)
		}
		writeCompletion(w, "Продолжим.")
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{
		APIKey:         "test-key",
		BaseURL:        server.URL,
		RequestTimeout: 100 * time.Millisecond,
	}, zerolog.Nop(), nil)
	require.NoError(t, err)

	reply, err := client.Reply(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Продолжим.", reply)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGenerateQuestionReturnsDraftWithoutID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, `{
			"text": "Как найти дубликаты в столбце?",
			"capabilities": ["data-cleaning"],
			"difficulty": "intermediate",
			"expected_answer": "Условное форматирование или COUNTIF",
			"evaluation_criteria": [{"name": "method", "description": "Назван рабочий способ"}]
		}`)
	})

	q, err := client.GenerateQuestion(context.Background(), GenerationRequest{
		Capability: "data-cleaning",
		Difficulty: "intermediate",
	})
	require.NoError(t, err)
	assert.Empty(t, q.ID)
	assert.Equal(t, "Как найти дубликаты в столбце?", q.Text)
}

func TestGenerateSummary(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "Кандидат уверенно владеет формулами, сводные таблицы требуют практики.")
	})

	messages := []transcript.Message{
		{Role: transcript.RoleInterviewer, Content: "Сравните VLOOKUP и INDEX+MATCH."},
		{Role: transcript.RoleCandidate, Content: "INDEX+MATCH гибче."},
	}
	evaluations := []Evaluation{
		NewEvaluation("q1", []CriterionScore{{Criterion: "correctness", Score: 4}}, 0.8, ""),
	}

	summary, err := client.GenerateSummary(context.Background(), messages, evaluations)
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
}
