package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"excel-interviewer-bot/internal/ai"
	"excel-interviewer-bot/internal/config"
	"excel-interviewer-bot/internal/interviewer"
	"excel-interviewer-bot/internal/metrics"
	"excel-interviewer-bot/internal/questionbank"
	"excel-interviewer-bot/internal/transcript"
)

func main() {
	fmt.Println("🚀 Запуск Excel Interviewer Bot...")

	// Загружаем переменные окружения
	err := godotenv.Load()
	if err != nil {
		fmt.Println("⚠️ Файл .env не найден, используем переменные окружения процесса")
	}

	appCfg := config.LoadAppConfig()
	err = appCfg.OpenAI.ValidateConfig()
	if err != nil {
		log.Fatalf("Ошибка конфигурации OpenAI: %v", err)
	}

	// Загружаем конфигурацию интервью
	cfg, err := config.Load(appCfg.Paths.InterviewYAML)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации интервью: %v", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// Инициализируем сервисы
	fmt.Println("🔧 Инициализация сервисов...")

	m := metrics.NewMetrics()

	bank, err := questionbank.Load(appCfg.Paths.QuestionBank)
	if err != nil {
		log.Fatalf("Ошибка загрузки банка вопросов: %v", err)
	}
	fmt.Printf("✅ Банк вопросов загружен: %d вопросов\n", bank.Count())

	transcripts := transcript.NewStore(appCfg.Paths.TranscriptsDir)

	agent, err := ai.NewClient(ai.ClientConfig{
		APIKey:         appCfg.OpenAI.APIKey,
		BaseURL:        appCfg.OpenAI.BaseURL,
		Model:          appCfg.OpenAI.Model,
		MaxTokens:      appCfg.OpenAI.MaxTokens,
		Temperature:    appCfg.OpenAI.Temperature,
		RequestTimeout: appCfg.OpenAI.RequestTimeout,
	}, logger, m)
	if err != nil {
		log.Fatalf("Ошибка инициализации OpenAI клиента: %v", err)
	}
	fmt.Println("✅ OpenAI клиент инициализирован")

	service := interviewer.New(cfg, agent, bank, transcripts, m, logger)
	fmt.Println("✅ Интервьюер инициализирован")

	// Выводим информацию о конфигурации
	fmt.Println("\n📋 Конфигурация:")
	fmt.Printf("• Вопросов в интервью: %d\n", cfg.GetTotalQuestions())
	fmt.Printf("• Лимит сгенерированных вопросов: %d\n", cfg.GetMaxGeneratedQuestions())
	fmt.Printf("• Уточнений на вопрос: до %d\n", cfg.GetMaxFollowupQuestions())
	fmt.Printf("• Области в банке: %s\n", strings.Join(bank.Capabilities(), ", "))
	fmt.Printf("• Уровни в банке: %s\n", strings.Join(bank.Difficulties(), ", "))
	fmt.Printf("• Модель: %s\n", appCfg.OpenAI.Model)

	session, greeting, err := service.StartSession()
	if err != nil {
		log.Fatalf("Ошибка создания сессии: %v", err)
	}

	fmt.Printf("\n🆔 Сессия: %s\n", session.ID)
	fmt.Println("💬 Команды: /stop — завершить интервью, /status — прогресс, /help — помощь")
	fmt.Printf("\nИнтервьюер: %s\n", greeting)

	runChatLoop(service, session, m, transcripts)
}

// runChatLoop ведет диалог с кандидатом через stdin/stdout
func runChatLoop(service *interviewer.Service, session *interviewer.Session, m *metrics.Metrics, transcripts *transcript.Store) {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	for session.State != interviewer.StateCompleted {
		fmt.Print("\nВы: ")
		if !scanner.Scan() {
			break
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			fmt.Println("Пожалуйста, введите ответ.")
			continue
		}

		if strings.HasPrefix(text, "/") {
			handleCommand(ctx, service, session, m, text)
			continue
		}

		reply, err := service.HandleCandidateMessage(ctx, session, text)
		if err != nil {
			// Сбой записи транскрипта фатален для хода: явно сообщаем,
			// что последняя реплика не сохранена
			fmt.Printf("❌ Не удалось сохранить ход интервью: %v\n", err)
			fmt.Println("Ваше последнее сообщение не записано, попробуйте еще раз.")
			continue
		}

		fmt.Printf("\nИнтервьюер: %s\n", reply)
	}

	fmt.Printf("\n💾 Транскрипт сохранен: %s\n", transcripts.Path(session.ID))

	snapshot := m.GetSnapshot()
	fmt.Printf("📊 Задано вопросов: %d (из них сгенерировано: %d), уточнений: %d\n",
		snapshot.QuestionsAsked, snapshot.QuestionsGenerated, snapshot.FollowUpsAsked)
}

// handleCommand обрабатывает команды кандидата
func handleCommand(ctx context.Context, service *interviewer.Service, session *interviewer.Session, m *metrics.Metrics, command string) {
	switch command {
	case "/stop":
		reply, err := service.EndSession(ctx, session)
		if err != nil {
			fmt.Printf("❌ Не удалось завершить интервью: %v\n", err)
			return
		}
		fmt.Printf("\nИнтервьюер: %s\n", reply)
	case "/status":
		fmt.Printf("📊 Прогресс: задано вопросов %d, оценок %d, состояние: %s\n",
			session.QuestionsAsked, len(session.Evaluations), session.State)
		fmt.Printf("• Целевая сложность: %s, область: %s\n",
			session.TargetDifficulty, session.TargetCapability)
		snapshot := m.GetSnapshot()
		fmt.Printf("• Вызовов API: %d (успешных: %d)\n",
			snapshot.APICallsTotal, snapshot.APICallsSuccessful)
	case "/help":
		fmt.Println("💬 Доступные команды:")
		fmt.Println("/stop - Завершить интервью и получить итоговую оценку")
		fmt.Println("/status - Показать прогресс интервью")
		fmt.Println("/help - Показать это сообщение")
	default:
		fmt.Println("Неизвестная команда. Используйте /help для списка команд.")
	}
}
