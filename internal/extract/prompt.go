package extract

import "github.com/fairwaylabs/fairway/internal/llm"

const extractionSystemPrompt = `You are a profile extraction engine for a golf coaching assistant. Analyze the conversation between a golfer and their coach. Your output must be ONLY a single valid JSON object that conforms to the provided schema. Do not include any other text, prose, or markdown.

Rules:
- skill_level: report it only if the golfer stated it or it is clearly implied (e.g. "I just started playing" implies beginner). Otherwise use an empty string. Never downgrade confidence into a guess.
- swing_issues: technique problems the golfer described (slice, hook, topping the ball, fat shots, poor tempo). Use short lowercase phrases. Do not include problems the coach merely speculated about.
- goals: outcomes the golfer said they want (break 90, more driving distance, consistent putting). Short lowercase phrases.
- memory_notes: standalone facts worth remembering across sessions (plays weekly at a links course, recovering from wrist injury, uses blade irons). Each note must make sense on its own.
- Report only what THIS conversation contains. Empty arrays are correct when nothing new was said.`

// buildPrompt constructs the chat messages for one extraction pass over the
// conversation transcript.
func buildPrompt(conversation string) []llm.Message {
	return []llm.Message{
		{Role: "system", Content: extractionSystemPrompt},
		{Role: "user", Content: "Conversation transcript:\n\n" + conversation},
	}
}
