package classifier

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/hemchdev/aura/internal/assistant/intent"
)

// StripFences removes a surrounding markdown code fence (``` or ```json)
// from raw. Text without fences passes through unchanged, so the function is
// idempotent.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an optional language tag on the opening fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "" || strings.EqualFold(first, "json") {
			s = s[idx+1:]
		}
	} else {
		s = strings.TrimSpace(strings.TrimPrefix(s, "json"))
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Parse decodes model output into a structured intent. It never fails:
// after fence stripping and a JSON-repair pass, anything still unparseable
// degrades to a "general" intent carrying the raw text.
func Parse(raw string) intent.Structured {
	cleaned := StripFences(raw)

	var parsed intent.Structured
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		if repairErr != nil || json.Unmarshal([]byte(repaired), &parsed) != nil {
			return generalFallback(raw)
		}
	}

	if !parsed.Intent.Known() {
		return generalFallback(raw)
	}
	if parsed.Confidence < 0 {
		parsed.Confidence = 0
	}
	if parsed.Confidence > 1 {
		parsed.Confidence = 1
	}
	return parsed
}

func generalFallback(raw string) intent.Structured {
	text := strings.TrimSpace(raw)
	if text == "" {
		text = FallbackResponseText
	}
	return intent.Structured{
		Intent:       intent.General,
		Confidence:   0.5,
		ResponseText: text,
	}
}
