package config

// Config представляет конфигурацию интервью
type Config struct {
	InterviewConfig InterviewConfig `yaml:"interview_config"`
	Capabilities    []string        `yaml:"capabilities"`
	Difficulties    []string        `yaml:"difficulties"`
}

// InterviewConfig содержит общие настройки интервью
type InterviewConfig struct {
	TotalQuestions        int     `yaml:"total_questions"`
	MaxGeneratedQuestions int     `yaml:"max_generated_questions"`
	MaxFollowupQuestions  int     `yaml:"max_followup_questions"`
	ScoreScale            float64 `yaml:"score_scale"`
	ConfidenceThreshold   float64 `yaml:"confidence_threshold"`
	BorderlineLow         float64 `yaml:"borderline_low"`
	BorderlineHigh        float64 `yaml:"borderline_high"`
	RaiseThreshold        float64 `yaml:"raise_threshold"`
	LowerThreshold        float64 `yaml:"lower_threshold"`
}

// Методы для удобного доступа к конфигурации
func (c *Config) GetTotalQuestions() int {
	return c.InterviewConfig.TotalQuestions
}

func (c *Config) GetMaxGeneratedQuestions() int {
	return c.InterviewConfig.MaxGeneratedQuestions
}

func (c *Config) GetMaxFollowupQuestions() int {
	return c.InterviewConfig.MaxFollowupQuestions
}

func (c *Config) GetScoreScale() float64 {
	return c.InterviewConfig.ScoreScale
}

func (c *Config) GetConfidenceThreshold() float64 {
	return c.InterviewConfig.ConfidenceThreshold
}

// IsBorderline проверяет, попадает ли итоговый балл в пограничную зону
func (c *Config) IsBorderline(total float64) bool {
	return total >= c.InterviewConfig.BorderlineLow && total <= c.InterviewConfig.BorderlineHigh
}

// DifficultyIndex возвращает позицию уровня сложности в упорядоченном списке
func (c *Config) DifficultyIndex(difficulty string) int {
	for i, d := range c.Difficulties {
		if d == difficulty {
			return i
		}
	}
	return -1
}
