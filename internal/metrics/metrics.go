package metrics

import (
	"sync"
	"time"
)

// Metrics собирает счетчики работы бота в рамках процесса
type Metrics struct {
	mu                   sync.RWMutex
	interviewsStarted    int64
	interviewsCompleted  int64
	questionsAsked       int64
	questionsGenerated   int64
	followUpsAsked       int64
	evaluationsCompleted int64
	apiCallsTotal        int64
	apiCallsSuccessful   int64
	lastUpdateTime       time.Time
}

// Snapshot представляет моментальный снимок счетчиков
type Snapshot struct {
	InterviewsStarted    int64
	InterviewsCompleted  int64
	QuestionsAsked       int64
	QuestionsGenerated   int64
	FollowUpsAsked       int64
	EvaluationsCompleted int64
	APICallsTotal        int64
	APICallsSuccessful   int64
	LastUpdateTime       time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		lastUpdateTime: time.Now(),
	}
}

func (m *Metrics) IncrementInterviewsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interviewsStarted++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementInterviewsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interviewsCompleted++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementQuestionsAsked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questionsAsked++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementQuestionsGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questionsGenerated++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementFollowUpsAsked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followUpsAsked++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementEvaluationsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluationsCompleted++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementAPICall(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiCallsTotal++
	if success {
		m.apiCallsSuccessful++
	}
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		InterviewsStarted:    m.interviewsStarted,
		InterviewsCompleted:  m.interviewsCompleted,
		QuestionsAsked:       m.questionsAsked,
		QuestionsGenerated:   m.questionsGenerated,
		FollowUpsAsked:       m.followUpsAsked,
		EvaluationsCompleted: m.evaluationsCompleted,
		APICallsTotal:        m.apiCallsTotal,
		APICallsSuccessful:   m.apiCallsSuccessful,
		LastUpdateTime:       m.lastUpdateTime,
	}
}
