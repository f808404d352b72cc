package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store хранит транскрипты сессий в формате JSONL: один файл на сессию,
// одна запись на строку. Записи только добавляются — операций изменения
// и удаления не существует.
type Store struct {
	dir string
}

// NewStore создает хранилище транскриптов в указанной директории
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path возвращает путь к файлу транскрипта для сессии
func (s *Store) Path(sessionID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.jsonl", sessionID))
}

// AppendMessage добавляет сообщение в транскрипт сессии
func (s *Store) AppendMessage(sessionID string, msg Message) error {
	turnIndex := msg.TurnIndex
	record := Record{
		Type:      RecordTypeMessage,
		SessionID: sessionID,
		Timestamp: msg.Timestamp,
		Role:      msg.Role,
		Content:   msg.Content,
		TurnIndex: &turnIndex,
		Metadata:  msg.Metadata,
	}
	return s.appendRecord(sessionID, record)
}

// AppendEvent добавляет событие жизненного цикла в транскрипт сессии
func (s *Store) AppendEvent(sessionID string, name string, details map[string]interface{}) error {
	record := Record{
		Type:      RecordTypeEvent,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Event:     name,
		Details:   details,
	}
	return s.appendRecord(sessionID, record)
}

// appendRecord записывает одну строку и синхронизирует файл на диск,
// чтобы последняя реплика не терялась при аварийном завершении
func (s *Store) appendRecord(sessionID string, record Record) error {
	err := os.MkdirAll(s.dir, 0755)
	if err != nil {
		return fmt.Errorf("ошибка создания директории %s: %w", s.dir, err)
	}

	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("ошибка сериализации записи: %w", err)
	}

	file, err := os.OpenFile(s.Path(sessionID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("ошибка открытия файла транскрипта: %w", err)
	}
	defer file.Close()

	_, err = file.Write(append(jsonData, '\n'))
	if err != nil {
		return fmt.Errorf("ошибка записи в транскрипт: %w", err)
	}

	err = file.Sync()
	if err != nil {
		return fmt.Errorf("ошибка синхронизации транскрипта: %w", err)
	}

	return nil
}

// ReadAll возвращает все записи сессии в порядке добавления.
// Пустые строки пропускаются — обрезанный файл остается читаемым.
func (s *Store) ReadAll(sessionID string) ([]Record, error) {
	file, err := os.Open(s.Path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("ошибка открытия файла транскрипта: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record Record
		err = json.Unmarshal(line, &record)
		if err != nil {
			return nil, fmt.Errorf("ошибка парсинга строки транскрипта: %w", err)
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения файла транскрипта: %w", err)
	}

	return records, nil
}

// Messages возвращает только сообщения сессии в порядке диалога
func (s *Store) Messages(sessionID string) ([]Message, error) {
	records, err := s.ReadAll(sessionID)
	if err != nil {
		return nil, err
	}

	var messages []Message
	for i := range records {
		if records[i].Type == RecordTypeMessage {
			messages = append(messages, records[i].ToMessage())
		}
	}
	return messages, nil
}
