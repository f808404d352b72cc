package transcript

import "time"

// Роли участников диалога
const (
	RoleInterviewer = "interviewer"
	RoleCandidate   = "candidate"
)

// Типы записей в транскрипте
const (
	RecordTypeMessage = "message"
	RecordTypeEvent   = "event"
)

// Message представляет одно сообщение в диалоге
type Message struct {
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	TurnIndex int                    `json:"turn_index"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event представляет событие жизненного цикла сессии
type Event struct {
	Name      string                 `json:"event"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Record представляет одну строку транскрипта: сообщение или событие.
// Поле Type определяет, какие из остальных полей заполнены.
type Record struct {
	Type      string                 `json:"type"`
	SessionID string                 `json:"session_id"`
	Timestamp time.Time              `json:"timestamp"`
	Role      string                 `json:"role,omitempty"`
	Content   string                 `json:"content,omitempty"`
	TurnIndex *int                   `json:"turn_index,omitempty"`
	Event     string                 `json:"event,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// ToMessage преобразует запись типа message обратно в сообщение
func (r *Record) ToMessage() Message {
	msg := Message{
		Role:      r.Role,
		Content:   r.Content,
		Timestamp: r.Timestamp,
		Metadata:  r.Metadata,
	}
	if r.TurnIndex != nil {
		msg.TurnIndex = *r.TurnIndex
	}
	return msg
}

// ToEvent преобразует запись типа event обратно в событие
func (r *Record) ToEvent() Event {
	return Event{
		Name:      r.Event,
		Timestamp: r.Timestamp,
		Details:   r.Details,
	}
}
