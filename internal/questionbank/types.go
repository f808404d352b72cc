package questionbank

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Criterion представляет один критерий оценки ответа
type Criterion struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Question представляет один вопрос интервью
type Question struct {
	ID             string      `yaml:"id" json:"id"`
	Text           string      `yaml:"text" json:"text"`
	Capabilities   []string    `yaml:"capabilities" json:"capabilities"`
	Difficulty     string      `yaml:"difficulty" json:"difficulty"`
	ExpectedAnswer string      `yaml:"expected_answer" json:"expected_answer"`
	Criteria       []Criterion `yaml:"evaluation_criteria" json:"evaluation_criteria"`
}

// questionYAML зеркалит Question для разбора файла банка
type questionYAML struct {
	ID             string      `yaml:"id"`
	Text           string      `yaml:"text"`
	Capabilities   yaml.Node   `yaml:"capabilities"`
	Difficulty     string      `yaml:"difficulty"`
	ExpectedAnswer string      `yaml:"expected_answer"`
	Criteria       []Criterion `yaml:"evaluation_criteria"`
}

// UnmarshalYAML разбирает вопрос из YAML. Поле capabilities допускает
// и одну строку, и список строк.
func (q *Question) UnmarshalYAML(value *yaml.Node) error {
	var raw questionYAML
	err := value.Decode(&raw)
	if err != nil {
		return err
	}

	var capabilities []string
	switch raw.Capabilities.Kind {
	case yaml.ScalarNode:
		var single string
		err = raw.Capabilities.Decode(&single)
		if err != nil {
			return err
		}
		if single != "" {
			capabilities = []string{single}
		}
	case yaml.SequenceNode:
		err = raw.Capabilities.Decode(&capabilities)
		if err != nil {
			return err
		}
	}

	*q = Question{
		ID:             raw.ID,
		Text:           raw.Text,
		Capabilities:   capabilities,
		Difficulty:     raw.Difficulty,
		ExpectedAnswer: raw.ExpectedAnswer,
		Criteria:       raw.Criteria,
	}
	return nil
}

// HasCapability проверяет, покрывает ли вопрос указанную область навыков
// (без учета регистра)
func (q *Question) HasCapability(capability string) bool {
	for _, c := range q.Capabilities {
		if strings.EqualFold(c, capability) {
			return true
		}
	}
	return false
}
