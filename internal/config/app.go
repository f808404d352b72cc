package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type AppConfig struct {
	OpenAI OpenAIConfig
	Paths  PathsConfig
}

type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	Temperature    float64
	RequestTimeout time.Duration
}

type PathsConfig struct {
	QuestionBank   string
	TranscriptsDir string
	InterviewYAML  string
}

// LoadAppConfig загружает конфигурацию приложения из переменных окружения
func LoadAppConfig() *AppConfig {
	return &AppConfig{
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			MaxTokens:      getEnvAsInt("OPENAI_MAX_TOKENS", 1500),
			Temperature:    getEnvAsFloat("OPENAI_TEMPERATURE", 0.3),
			RequestTimeout: getEnvAsDuration("OPENAI_REQUEST_TIMEOUT", 60*time.Second),
		},
		Paths: PathsConfig{
			QuestionBank:   getEnv("QUESTION_BANK_PATH", "data/question_bank.yaml"),
			TranscriptsDir: getEnv("TRANSCRIPTS_DIR", "transcripts"),
			InterviewYAML:  getEnv("INTERVIEW_CONFIG_PATH", "config/interview.yaml"),
		},
	}
}

// ValidateConfig проверяет корректность конфигурации OpenAI
func (c *OpenAIConfig) ValidateConfig() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("OPENAI_MAX_TOKENS must be positive")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("OPENAI_TEMPERATURE must be between 0 and 2")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("OPENAI_REQUEST_TIMEOUT must be positive")
	}

	return nil
}

// helper функции для чтения переменных окружения
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
