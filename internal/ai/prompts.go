package ai

import (
	"fmt"
	"strings"

	"excel-interviewer-bot/internal/transcript"
)

// buildInterviewerSystemPrompt создает системный промпт интервьюера
func buildInterviewerSystemPrompt(instruction string) string {
	var prompt strings.Builder

	prompt.WriteString("Ты опытный технический интервьюер по Microsoft Excel. ")
	prompt.WriteString("Твоя задача - вести собеседование в разговорном, но профессиональном стиле.\n\n")
	prompt.WriteString("ПРАВИЛА:\n")
	prompt.WriteString("- Задавай по одному вопросу за раз\n")
	prompt.WriteString("- Не давай оценок и развернутой обратной связи до конца интервью\n")
	prompt.WriteString("- Будь доброжелательным, но не подсказывай правильные ответы\n")

	if instruction != "" {
		prompt.WriteString("\nТЕКУЩАЯ ЗАДАЧА:\n")
		prompt.WriteString(instruction)
	}

	return prompt.String()
}

// buildEvaluationPrompt создает промпт для оценки ответа кандидата
func buildEvaluationPrompt(req EvaluationRequest) string {
	var prompt strings.Builder

	prompt.WriteString("Ты эксперт по Excel и оцениваешь ответ кандидата на вопрос интервью.\n\n")

	prompt.WriteString(fmt.Sprintf("ВОПРОС: %s\n", req.Question.Text))
	if req.Question.ExpectedAnswer != "" {
		prompt.WriteString(fmt.Sprintf("ОЖИДАЕМЫЙ ОТВЕТ (ориентир): %s\n", req.Question.ExpectedAnswer))
	}

	prompt.WriteString("\nКРИТЕРИИ ОЦЕНКИ:\n")
	for _, c := range req.Question.Criteria {
		prompt.WriteString(fmt.Sprintf("- %s: %s\n", c.Name, c.Description))
	}

	if len(req.History) > 0 {
		prompt.WriteString("\nПРЕДЫДУЩИЕ РЕПЛИКИ ПО ЭТОМУ ВОПРОСУ:\n")
		prompt.WriteString(formatConversation(req.History))
		prompt.WriteString("\n")
	}

	prompt.WriteString(fmt.Sprintf("\nОТВЕТ КАНДИДАТА: %s\n\n", req.Answer))

	prompt.WriteString(fmt.Sprintf("Оцени ответ по каждому критерию по шкале от 0 до %v.\n", req.Scale))
	prompt.WriteString("Верни ТОЛЬКО валидный JSON объект без markdown и комментариев, с ключами:\n")
	prompt.WriteString(`  scores (массив объектов {criterion, score}), confidence (число 0-1), advice (строка).` + "\n")
	prompt.WriteString("- scores должен содержать ровно по одному объекту на каждый критерий\n")
	prompt.WriteString("- confidence - твоя уверенность в оценке; снижай её, если ответ неполный или неоднозначный\n")
	prompt.WriteString("- advice - один короткий совет кандидату")

	return prompt.String()
}

// buildGenerationPrompt создает промпт для генерации нового вопроса
func buildGenerationPrompt(req GenerationRequest) string {
	var prompt strings.Builder

	prompt.WriteString("Сгенерируй один новый вопрос для технического интервью по Excel.\n\n")
	prompt.WriteString("ТРЕБОВАНИЯ:\n")

	if req.Capability != "" {
		prompt.WriteString(fmt.Sprintf("- Область навыков: %s\n", req.Capability))
	}
	if req.Difficulty != "" {
		prompt.WriteString(fmt.Sprintf("- Сложность: %s\n", req.Difficulty))
	}
	if req.Notes != "" {
		prompt.WriteString(fmt.Sprintf("- Дополнительно: %s\n", req.Notes))
	}

	prompt.WriteString("- Вопрос должен быть общим и пригодным для разных кандидатов\n")
	prompt.WriteString("- На вопрос можно ответить устно, без файла Excel\n\n")

	prompt.WriteString("Верни ТОЛЬКО валидный JSON объект без markdown и комментариев, с ключами:\n")
	prompt.WriteString("  text (строка), capabilities (массив строк), difficulty (строка),\n")
	prompt.WriteString("  expected_answer (строка), evaluation_criteria (массив объектов {name, description}).\n")
	prompt.WriteString("Укажи от 3 до 5 конкретных и наблюдаемых критериев оценки.")

	return prompt.String()
}

// buildSummaryPrompt создает промпт для итоговой оценки кандидата
func buildSummaryPrompt(messages []transcript.Message, evaluations []Evaluation) string {
	var prompt strings.Builder

	prompt.WriteString("Ты эксперт по Excel и подводишь итог прошедшего технического интервью.\n\n")

	prompt.WriteString("ТРАНСКРИПТ ИНТЕРВЬЮ:\n")
	prompt.WriteString(formatConversation(messages))
	prompt.WriteString("\n")

	if len(evaluations) > 0 {
		prompt.WriteString("\nОЦЕНКИ ПО ВОПРОСАМ:\n")
		for i, e := range evaluations {
			prompt.WriteString(fmt.Sprintf("%d. Вопрос %s: итог %.1f, уверенность %.2f\n",
				i+1, e.QuestionID, e.Total, e.Confidence))
		}
		prompt.WriteString("\n")
	}

	prompt.WriteString("СОЗДАЙ ИТОГОВУЮ ОЦЕНКУ:\n")
	prompt.WriteString("- Общий уровень владения Excel\n")
	prompt.WriteString("- Сильные стороны с примерами из ответов\n")
	prompt.WriteString("- Области для развития\n")
	prompt.WriteString("- Рекомендация по итогам интервью\n\n")
	prompt.WriteString("ВАЖНО: Опирайся только на содержание транскрипта. Будь конкретным, избегай общих фраз.")

	return prompt.String()
}

// formatConversation форматирует сообщения в текстовый диалог
func formatConversation(messages []transcript.Message) string {
	var lines []string
	for _, m := range messages {
		role := "Кандидат"
		if m.Role == transcript.RoleInterviewer {
			role = "Интервьюер"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, m.Content))
	}
	return strings.Join(lines, "\n")
}
