package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avvvet/concierge-intent/internal/models"
)

const systemPromptTemplate = `You are the AI concierge for %s, a high-end hotel.

Guidelines:
- Tone: warm, clear, professional, luxury hospitality.
- Language: automatically reply in the guest's language (FR/ES/EN). If unclear, default to English.
- Accuracy: never invent prices or availability. Use only provided context data.
- Missing info: if any detail is missing (dates, guests, room type), ask concise follow-up questions.
- Always propose a next step: book, check dates, or connect to a human.
- If data is unavailable, state it and offer to connect to a human.
- Currency reference: %s.
`

const classifierPromptTemplate = "You are an intent classifier for a hotel concierge. " +
	"Return only a strict JSON object with a single key: intent. " +
	"Allowed intents: %s. " +
	"Always choose the closest intent. No extra keys."

// EmptyMessagePlaceholder is sent to the classifier in place of blank text
const EmptyMessagePlaceholder = "(empty)"

// BuildSystemPrompt renders the concierge persona for a hotel
func BuildSystemPrompt(hotelName, currency string) string {
	return fmt.Sprintf(systemPromptTemplate, hotelName, currency)
}

// BuildClassifierPrompt lists the allowed intents in the classifier instruction
func BuildClassifierPrompt() string {
	names := make([]string, 0, len(models.AllowedIntents))
	for _, intent := range models.AllowedIntents {
		names = append(names, string(intent))
	}
	return fmt.Sprintf(classifierPromptTemplate, strings.Join(names, ", "))
}

// BuildContextMessage serializes the conversation context for the second system turn
func BuildContextMessage(ctx *models.ConversationContext) (string, error) {
	data, err := json.Marshal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to marshal context: %w", err)
	}
	return "Context data (JSON): " + string(data), nil
}

// ParseIntentResponse reads the classifier output. Anything that is not a
// JSON object with a known string "intent" falls back to handoff.
func ParseIntentResponse(content string) models.Intent {
	content = strings.TrimSpace(content)
	if content == "" {
		content = "{}"
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return models.IntentHandoff
	}

	raw, ok := parsed["intent"].(string)
	if !ok {
		return models.IntentHandoff
	}

	intent, ok := models.ParseIntent(raw)
	if !ok {
		return models.IntentHandoff
	}
	return intent
}
