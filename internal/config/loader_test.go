package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() Config {
	return Config{
		InterviewConfig: InterviewConfig{
			TotalQuestions:        5,
			MaxGeneratedQuestions: 2,
			MaxFollowupQuestions:  2,
			ScoreScale:            5,
			ConfidenceThreshold:   0.6,
			BorderlineLow:         2.0,
			BorderlineHigh:        3.5,
			RaiseThreshold:        4.0,
			LowerThreshold:        2.0,
		},
		Capabilities: []string{"formulas", "pivot-tables"},
		Difficulties: []string{"basic", "intermediate", "advanced"},
	}
}

func TestLoadValidConfig(t *testing.T) {
	content := `
interview_config:
  total_questions: 5
  max_generated_questions: 2
  max_followup_questions: 2
  score_scale: 5
  confidence_threshold: 0.6
  borderline_low: 2.0
  borderline_high: 3.5
  raise_threshold: 4.0
  lower_threshold: 2.0
capabilities:
  - formulas
  - pivot-tables
difficulties:
  - basic
  - intermediate
  - advanced
`
	path := filepath.Join(t.TempDir(), "interview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.GetTotalQuestions())
	assert.Equal(t, 2, cfg.GetMaxGeneratedQuestions())
	assert.Equal(t, 2, cfg.GetMaxFollowupQuestions())
	assert.Equal(t, 5.0, cfg.GetScoreScale())
	assert.Equal(t, 0.6, cfg.GetConfidenceThreshold())
	assert.Equal(t, []string{"formulas", "pivot-tables"}, cfg.Capabilities)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interview_config: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"нулевое число вопросов", func(c *Config) { c.InterviewConfig.TotalQuestions = 0 }},
		{"отрицательный лимит генерации", func(c *Config) { c.InterviewConfig.MaxGeneratedQuestions = -1 }},
		{"отрицательный лимит уточнений", func(c *Config) { c.InterviewConfig.MaxFollowupQuestions = -1 }},
		{"нулевая шкала", func(c *Config) { c.InterviewConfig.ScoreScale = 0 }},
		{"уверенность вне диапазона", func(c *Config) { c.InterviewConfig.ConfidenceThreshold = 1.5 }},
		{"перевернутая пограничная зона", func(c *Config) {
			c.InterviewConfig.BorderlineLow = 4.0
			c.InterviewConfig.BorderlineHigh = 2.0
		}},
		{"пограничная зона шире шкалы", func(c *Config) { c.InterviewConfig.BorderlineHigh = 6.0 }},
		{"порог повышения выше шкалы", func(c *Config) { c.InterviewConfig.RaiseThreshold = 6.0 }},
		{"перевернутые пороги сложности", func(c *Config) {
			c.InterviewConfig.LowerThreshold = 4.5
		}},
		{"пустые capabilities", func(c *Config) { c.Capabilities = nil }},
		{"пустые difficulties", func(c *Config) { c.Difficulties = nil }},
		{"пустой уровень сложности", func(c *Config) { c.Difficulties = []string{"basic", ""} }},
		{"дубликат уровня сложности", func(c *Config) { c.Difficulties = []string{"basic", "basic"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(&cfg)
			assert.Error(t, validateConfig(&cfg))
		})
	}

	cfg := validTestConfig()
	assert.NoError(t, validateConfig(&cfg))
}

func TestIsBorderline(t *testing.T) {
	cfg := validTestConfig()

	assert.False(t, cfg.IsBorderline(1.9))
	assert.True(t, cfg.IsBorderline(2.0))
	assert.True(t, cfg.IsBorderline(3.0))
	assert.True(t, cfg.IsBorderline(3.5))
	assert.False(t, cfg.IsBorderline(3.6))
}

func TestDifficultyIndex(t *testing.T) {
	cfg := validTestConfig()

	assert.Equal(t, 0, cfg.DifficultyIndex("basic"))
	assert.Equal(t, 2, cfg.DifficultyIndex("advanced"))
	assert.Equal(t, -1, cfg.DifficultyIndex("unknown"))
}
