package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load загружает конфигурацию из YAML файла
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", filename, err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML: %w", err)
	}

	// Валидация конфигурации
	err = validateConfig(&config)
	if err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return &config, nil
}

// validateConfig проверяет корректность конфигурации
func validateConfig(config *Config) error {
	ic := config.InterviewConfig

	if ic.TotalQuestions <= 0 {
		return fmt.Errorf("total_questions должно быть больше 0")
	}

	if ic.MaxGeneratedQuestions < 0 {
		return fmt.Errorf("max_generated_questions не может быть отрицательным")
	}

	if ic.MaxFollowupQuestions < 0 {
		return fmt.Errorf("max_followup_questions не может быть отрицательным")
	}

	if ic.ScoreScale <= 0 {
		return fmt.Errorf("score_scale должно быть больше 0")
	}

	if ic.ConfidenceThreshold < 0 || ic.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold должно быть в диапазоне [0, 1]")
	}

	if ic.BorderlineLow > ic.BorderlineHigh {
		return fmt.Errorf("borderline_low (%v) не может превышать borderline_high (%v)",
			ic.BorderlineLow, ic.BorderlineHigh)
	}

	if ic.BorderlineHigh > ic.ScoreScale {
		return fmt.Errorf("borderline_high (%v) не может превышать score_scale (%v)",
			ic.BorderlineHigh, ic.ScoreScale)
	}

	if ic.RaiseThreshold > ic.ScoreScale || ic.LowerThreshold < 0 {
		return fmt.Errorf("пороги изменения сложности должны быть в диапазоне [0, %v]", ic.ScoreScale)
	}

	if ic.LowerThreshold > ic.RaiseThreshold {
		return fmt.Errorf("lower_threshold (%v) не может превышать raise_threshold (%v)",
			ic.LowerThreshold, ic.RaiseThreshold)
	}

	if len(config.Capabilities) == 0 {
		return fmt.Errorf("список capabilities не может быть пустым")
	}

	if len(config.Difficulties) == 0 {
		return fmt.Errorf("список difficulties не может быть пустым")
	}

	// Проверяем уникальность уровней сложности
	seen := make(map[string]bool)
	for _, d := range config.Difficulties {
		if d == "" {
			return fmt.Errorf("уровень сложности не может быть пустой строкой")
		}
		if seen[d] {
			return fmt.Errorf("уровень сложности %q указан дважды", d)
		}
		seen[d] = true
	}

	return nil
}
