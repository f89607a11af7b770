package router

import (
	"fmt"
	"strings"

	"github.com/zen-systems/skillroute/pkg/skill"
)

// classifierSystem is sent as the system message on every attempt.
const classifierSystem = "You are a strict JSON skill router. Return JSON only."

// BuildClassifierPrompt renders the classification instruction for goal.
// feedback, when non-empty, describes why the previous reply was rejected.
func BuildClassifierPrompt(goal string, feedback string) string {
	var sb strings.Builder
	sb.WriteString("You are a strict skill router.\n")
	sb.WriteString("Select the minimal set of skills needed for the goal.\n")
	sb.WriteString("Return ONLY one JSON object with exactly these keys:\n")
	sb.WriteString(`{"skills": ["<allowed_skill>", ...], "confidence": <number 0-1>, "notes": "<short note>"}`)
	sb.WriteString("\n\nRules:\n")
	sb.WriteString("- Do not include any other keys.\n")
	sb.WriteString("- skills must be an array of unique strings taken from the allowed values.\n")
	sb.WriteString("- skills may be empty when no skill applies.\n")
	sb.WriteString("- confidence is a number between 0 and 1.\n")
	sb.WriteString("- Do not return markdown, prose, or code fences.\n")

	sb.WriteString("\nAllowed skills:\n")
	for _, name := range skill.Selectable() {
		def, _ := skill.Lookup(name)
		sb.WriteString(fmt.Sprintf("- %q: %s\n", name, def.Description))
	}

	sb.WriteString("\nGoal:\n")
	sb.WriteString(goal)
	sb.WriteString("\n")

	if feedback != "" {
		sb.WriteString("\nPrevious response failed validation.\n")
		sb.WriteString(fmt.Sprintf("Validation error: %s\n", feedback))
		sb.WriteString("Return corrected JSON only.\n")
	}

	return sb.String()
}
