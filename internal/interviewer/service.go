package interviewer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"excel-interviewer-bot/internal/ai"
	"excel-interviewer-bot/internal/config"
	"excel-interviewer-bot/internal/metrics"
	"excel-interviewer-bot/internal/questionbank"
	"excel-interviewer-bot/internal/transcript"
)

// Канонические тексты реплик моста
const (
	greetingText = "Здравствуйте! Я проведу с вами короткое техническое интервью по Excel. " +
		"Для начала кратко опишите свой опыт работы с Excel и оцените свой уровень."
	fallbackAckText   = "Спасибо за ответ, принято! Продолжаем."
	fallbackProbeText = "Не могли бы вы раскрыть ваш ответ подробнее? " +
		"Например, уточните, какие функции вы бы использовали и почему."
	fallbackSummaryText = "К сожалению, не удалось сформировать подробную итоговую оценку. " +
		"Транскрипт интервью сохранен и может быть просмотрен вручную."
	completedText = "Интервью уже завершено. Спасибо за участие!"
	closingText   = "На этом интервью завершено. Спасибо за уделенное время!"
)

// Причины завершения интервью
const (
	reasonLimitReached     = "question_limit_reached"
	reasonBankExhausted    = "bank_exhausted"
	reasonGenerationFailed = "generation_failed"
	reasonCandidateEnd     = "candidate_end"
)

// Service представляет мост диалога: конечный автомат интервью,
// связывающий банк вопросов, хранилище транскриптов и внешнюю LLM
type Service struct {
	cfg         *config.Config
	agent       ai.Agent
	bank        *questionbank.Bank
	transcripts *transcript.Store
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	heuristic   DifficultyHeuristic
}

// New создает сервис интервьюера
func New(cfg *config.Config, agent ai.Agent, bank *questionbank.Bank, transcripts *transcript.Store, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		cfg:         cfg,
		agent:       agent,
		bank:        bank,
		transcripts: transcripts,
		metrics:     m,
		logger:      logger,
		heuristic:   DefaultDifficultyHeuristic,
	}
}

// SetDifficultyHeuristic подменяет правило выбора стартовой сложности
func (s *Service) SetDifficultyHeuristic(h DifficultyHeuristic) {
	if h != nil {
		s.heuristic = h
	}
}

// StartSession создает новую сессию интервью и возвращает приветствие
func (s *Service) StartSession() (*Session, string, error) {
	now := time.Now()
	session := &Session{
		ID:               uuid.New().String(),
		UsedQuestionIDs:  make(map[string]bool),
		TargetDifficulty: s.cfg.Difficulties[0],
		TargetCapability: s.cfg.Capabilities[0],
		State:            StateAwaitingSelfAssessment,
		StartedAt:        now,
		LastActivity:     now,
		bank:             s.bank.ForSession(),
	}

	err := s.transcripts.AppendEvent(session.ID, "session_started", map[string]interface{}{
		"total_questions":         s.cfg.GetTotalQuestions(),
		"max_generated_questions": s.cfg.GetMaxGeneratedQuestions(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("ошибка записи события в транскрипт: %w", err)
	}

	err = s.appendInterviewerMessage(session, greetingText, nil)
	if err != nil {
		return nil, "", err
	}

	s.metrics.IncrementInterviewsStarted()
	s.logger.Info().Str("session_id", session.ID).Msg("интервью начато")

	return session, greetingText, nil
}

// HandleCandidateMessage обрабатывает одно сообщение кандидата и
// возвращает реплику интервьюера. Кандидат всегда получает ответ —
// в худшем случае дежурный. Ошибка возвращается только при сбое записи
// транскрипта: терять историю интервью нельзя.
func (s *Service) HandleCandidateMessage(ctx context.Context, session *Session, text string) (string, error) {
	if session.State == StateCompleted {
		return completedText, nil
	}

	session.LastActivity = time.Now()

	err := s.appendCandidateMessage(session, text)
	if err != nil {
		return "", err
	}

	switch session.State {
	case StateAwaitingSelfAssessment:
		return s.handleSelfAssessment(ctx, session, text)
	case StateAwaitingAnswer:
		return s.handleAnswer(ctx, session, text)
	default:
		return "", fmt.Errorf("неизвестное состояние сессии: %s", session.State)
	}
}

// EndSession завершает интервью по инициативе кандидата. Вызов безопасен
// в любом состоянии: транскрипт остается согласованным.
func (s *Service) EndSession(ctx context.Context, session *Session) (string, error) {
	if session.State == StateCompleted {
		return completedText, nil
	}

	err := s.transcripts.AppendEvent(session.ID, "candidate_end", nil)
	if err != nil {
		return "", fmt.Errorf("ошибка записи события в транскрипт: %w", err)
	}

	return s.finishInterview(ctx, session, reasonCandidateEnd)
}

// handleSelfAssessment обрабатывает самооценку и задает первый вопрос
func (s *Service) handleSelfAssessment(ctx context.Context, session *Session, text string) (string, error) {
	session.SelfAssessment = text
	session.TargetDifficulty = s.heuristic(text, s.cfg.Difficulties)

	err := s.transcripts.AppendEvent(session.ID, "self_assessment_received", map[string]interface{}{
		"initial_difficulty": session.TargetDifficulty,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка записи события в транскрипт: %w", err)
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Str("initial_difficulty", session.TargetDifficulty).
		Msg("самооценка получена")

	return s.askNextQuestion(ctx, session, "Спасибо! Начнем с первого вопроса.")
}

// handleAnswer оценивает ответ кандидата и решает следующий шаг:
// уточняющий вопрос, новый вопрос или завершение интервью
func (s *Service) handleAnswer(ctx context.Context, session *Session, answer string) (string, error) {
	question := session.CurrentQuestion

	eval, err := s.agent.EvaluateAnswer(ctx, ai.EvaluationRequest{
		Question: *question,
		Answer:   answer,
		History:  s.questionHistory(session),
		Scale:    s.cfg.GetScoreScale(),
	})
	if err != nil {
		// Двойной сбой внешнего вызова: фиксируем событие и продолжаем
		// с дежурной репликой, не теряя сессию
		s.logger.Error().Err(err).Str("session_id", session.ID).Msg("оценка ответа не удалась")
		appendErr := s.transcripts.AppendEvent(session.ID, "llm_failure", map[string]interface{}{
			"stage":       "evaluation",
			"question_id": question.ID,
			"error":       err.Error(),
		})
		if appendErr != nil {
			return "", fmt.Errorf("ошибка записи события в транскрипт: %w", appendErr)
		}

		session.CurrentQuestion = nil
		session.FollowUpCount = 0
		if session.QuestionsAsked >= s.cfg.GetTotalQuestions() {
			return s.finishInterview(ctx, session, reasonLimitReached)
		}
		return s.askNextQuestion(ctx, session, fallbackAckText)
	}

	session.addEvaluation(*eval)
	s.metrics.IncrementEvaluationsCompleted()

	err = s.transcripts.AppendEvent(session.ID, "answer_evaluated", map[string]interface{}{
		"question_id": eval.QuestionID,
		"total":       eval.Total,
		"confidence":  eval.Confidence,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка записи события в транскрипт: %w", err)
	}

	if s.needsFollowUp(eval) && session.FollowUpCount < s.cfg.GetMaxFollowupQuestions() {
		return s.askFollowUp(ctx, session, eval)
	}

	s.adjustTargets(session, eval)
	session.CurrentQuestion = nil
	session.FollowUpCount = 0

	if session.QuestionsAsked >= s.cfg.GetTotalQuestions() {
		return s.finishInterview(ctx, session, reasonLimitReached)
	}

	return s.askNextQuestion(ctx, session, "")
}

// needsFollowUp решает, требуется ли уточняющий вопрос: модель не уверена
// в оценке либо итоговый балл попал в пограничную зону
func (s *Service) needsFollowUp(eval *ai.Evaluation) bool {
	return eval.Confidence < s.cfg.GetConfidenceThreshold() || s.cfg.IsBorderline(eval.Total)
}

// askFollowUp задает уточняющий вопрос по текущему вопросу
func (s *Service) askFollowUp(ctx context.Context, session *Session, eval *ai.Evaluation) (string, error) {
	instruction := fmt.Sprintf(
		"Задай один короткий уточняющий вопрос по текущей теме, не переходя к новому вопросу. "+
			"Слабое место ответа кандидата: %s", eval.Advice)

	probe, err := s.agent.Reply(ctx, session.Messages, instruction)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", session.ID).Msg("уточняющий вопрос не удался")
		appendErr := s.transcripts.AppendEvent(session.ID, "llm_failure", map[string]interface{}{
			"stage":       "follow_up",
			"question_id": session.CurrentQuestion.ID,
			"error":       err.Error(),
		})
		if appendErr != nil {
			return "", fmt.Errorf("ошибка записи события в транскрипт: %w", appendErr)
		}
		probe = fallbackProbeText
	}

	session.FollowUpCount++
	s.metrics.IncrementFollowUpsAsked()

	err = s.transcripts.AppendEvent(session.ID, "follow_up", map[string]interface{}{
		"question_id": session.CurrentQuestion.ID,
		"round":       session.FollowUpCount,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка записи события в транскрипт: %w", err)
	}

	err = s.appendInterviewerMessage(session, probe, map[string]interface{}{
		"question_id": session.CurrentQuestion.ID,
		"follow_up":   session.FollowUpCount,
	})
	if err != nil {
		return "", err
	}

	session.State = StateAwaitingAnswer
	return probe, nil
}

// askNextQuestion выбирает следующий вопрос: сначала банк, при промахе —
// генерация (пока не исчерпан лимит), иначе корректное завершение
func (s *Service) askNextQuestion(ctx context.Context, session *Session, prefix string) (string, error) {
	question := session.bank.Lookup(session.TargetCapability, session.TargetDifficulty, session.UsedQuestionIDs)

	if question == nil {
		if session.GeneratedCount >= s.cfg.GetMaxGeneratedQuestions() {
			// Банк исчерпан и лимит генерации достигнут — завершаем,
			// а не зацикливаемся
			err := s.transcripts.AppendEvent(session.ID, "bank_exhausted", map[string]interface{}{
				"capability": session.TargetCapability,
				"difficulty": session.TargetDifficulty,
			})
			if err != nil {
				return "", fmt.Errorf("ошибка записи события в транскрипт: %w", err)
			}
			return s.finishInterview(ctx, session, reasonBankExhausted)
		}

		draft, err := s.agent.GenerateQuestion(ctx, ai.GenerationRequest{
			Capability: session.TargetCapability,
			Difficulty: session.TargetDifficulty,
		})
		if err != nil {
			s.logger.Error().Err(err).Str("session_id", session.ID).Msg("генерация вопроса не удалась")
			appendErr := s.transcripts.AppendEvent(session.ID, "llm_failure", map[string]interface{}{
				"stage": "generation",
				"error": err.Error(),
			})
			if appendErr != nil {
				return "", fmt.Errorf("ошибка записи события в транскрипт: %w", appendErr)
			}
			return s.finishInterview(ctx, session, reasonGenerationFailed)
		}

		question, err = session.bank.RegisterGenerated(*draft)
		if err != nil {
			return "", fmt.Errorf("ошибка регистрации сгенерированного вопроса: %w", err)
		}

		session.GeneratedCount++
		s.metrics.IncrementQuestionsGenerated()

		err = s.transcripts.AppendEvent(session.ID, "question_generated", map[string]interface{}{
			"question_id": question.ID,
			"difficulty":  question.Difficulty,
		})
		if err != nil {
			return "", fmt.Errorf("ошибка записи события в транскрипт: %w", err)
		}
	}

	session.markPresented(question)
	session.QuestionsAsked++
	s.metrics.IncrementQuestionsAsked()

	err := s.transcripts.AppendEvent(session.ID, "question_presented", map[string]interface{}{
		"question_id": question.ID,
		"difficulty":  question.Difficulty,
		"capability":  session.TargetCapability,
		"number":      session.QuestionsAsked,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка записи события в транскрипт: %w", err)
	}

	text := question.Text
	if prefix != "" {
		text = prefix + "\n\n" + text
	}

	err = s.appendInterviewerMessage(session, text, map[string]interface{}{
		"question_id": question.ID,
	})
	if err != nil {
		return "", err
	}

	session.CurrentQuestion = question
	session.CurrentQuestionStart = len(session.Messages) - 1
	session.FollowUpCount = 0
	session.State = StateAwaitingAnswer

	return text, nil
}

// finishInterview создает итоговую оценку и переводит сессию в
// завершенное состояние. При двойном сбое LLM используется дежурное
// саммари — сессия завершается в любом случае.
func (s *Service) finishInterview(ctx context.Context, session *Session, reason string) (string, error) {
	summary, err := s.agent.GenerateSummary(ctx, session.Messages, session.Evaluations)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", session.ID).Msg("итоговая оценка не удалась")
		appendErr := s.transcripts.AppendEvent(session.ID, "llm_failure", map[string]interface{}{
			"stage": "summary",
			"error": err.Error(),
		})
		if appendErr != nil {
			return "", fmt.Errorf("ошибка записи события в транскрипт: %w", appendErr)
		}
		summary = fallbackSummaryText
	} else {
		err = s.transcripts.AppendEvent(session.ID, "summary_generated", nil)
		if err != nil {
			return "", fmt.Errorf("ошибка записи события в транскрипт: %w", err)
		}
	}

	text := summary + "\n\n" + closingText
	err = s.appendInterviewerMessage(session, text, map[string]interface{}{
		"summary": true,
		"reason":  reason,
	})
	if err != nil {
		return "", err
	}

	session.State = StateCompleted
	s.metrics.IncrementInterviewsCompleted()

	err = s.transcripts.AppendEvent(session.ID, "session_completed", map[string]interface{}{
		"reason":          reason,
		"questions_asked": session.QuestionsAsked,
		"evaluations":     len(session.Evaluations),
	})
	if err != nil {
		return "", fmt.Errorf("ошибка записи события в транскрипт: %w", err)
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Str("reason", reason).
		Int("questions_asked", session.QuestionsAsked).
		Msg("интервью завершено")

	return text, nil
}

// questionHistory возвращает реплики, относящиеся к текущему вопросу:
// сам вопрос, уточнения и предыдущие ответы, без последнего ответа
func (s *Service) questionHistory(session *Session) []transcript.Message {
	start := session.CurrentQuestionStart
	end := len(session.Messages) - 1
	if start < 0 || start > end {
		return nil
	}
	return session.Messages[start:end]
}

// adjustTargets меняет целевую сложность по итоговому баллу и
// переходит к следующей области навыков
func (s *Service) adjustTargets(session *Session, eval *ai.Evaluation) {
	idx := s.cfg.DifficultyIndex(session.TargetDifficulty)
	if idx < 0 {
		idx = 0
	}

	if eval.Total >= s.cfg.InterviewConfig.RaiseThreshold && idx < len(s.cfg.Difficulties)-1 {
		idx++
	} else if eval.Total <= s.cfg.InterviewConfig.LowerThreshold && idx > 0 {
		idx--
	}
	session.TargetDifficulty = s.cfg.Difficulties[idx]

	session.CapabilityIndex = (session.CapabilityIndex + 1) % len(s.cfg.Capabilities)
	session.TargetCapability = s.cfg.Capabilities[session.CapabilityIndex]
}

// appendInterviewerMessage записывает реплику интервьюера: сначала в
// транскрипт (до продолжения шага), затем в память сессии
func (s *Service) appendInterviewerMessage(session *Session, content string, metadata map[string]interface{}) error {
	return s.appendMessage(session, transcript.RoleInterviewer, content, metadata)
}

// appendCandidateMessage записывает сообщение кандидата
func (s *Service) appendCandidateMessage(session *Session, content string) error {
	return s.appendMessage(session, transcript.RoleCandidate, content, nil)
}

func (s *Service) appendMessage(session *Session, role, content string, metadata map[string]interface{}) error {
	msg := transcript.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		TurnIndex: session.TurnIndex,
		Metadata:  metadata,
	}

	err := s.transcripts.AppendMessage(session.ID, msg)
	if err != nil {
		return fmt.Errorf("ошибка записи сообщения в транскрипт: %w", err)
	}

	session.Messages = append(session.Messages, msg)
	session.TurnIndex++
	return nil
}
