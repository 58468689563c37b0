// Package classifier turns free-text utterances into structured intents by
// calling an external LLM. Malformed model output is always repaired or
// degraded locally; only total transport failure surfaces as an error.
package classifier

import (
	"context"
	"fmt"

	"github.com/hemchdev/aura/internal/assistant/intent"
	"github.com/hemchdev/aura/internal/session"
)

// Client classifies an utterance given a trailing window of conversation
// history (at most session.ContextWindow turns are sent).
type Client interface {
	Classify(ctx context.Context, utterance string, history []session.Message) (intent.Structured, error)
}

// TransportError reports that the classifier service could not be reached at
// all. The resolution engine recovers it into an "unsupported" outcome.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("classifier unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FallbackResponseText is used when the model returns unusable text.
const FallbackResponseText = "I'm not sure how to help with that. Could you rephrase?"

// UnavailableResponseText is the apologetic reply for transport failures.
const UnavailableResponseText = "Sorry, I can't reach my assistant service right now. Please try again in a moment."

// Unavailable synthesizes the intent used when the service is unreachable.
func Unavailable() intent.Structured {
	return intent.Structured{
		Intent:       intent.Unsupported,
		Confidence:   0,
		ResponseText: UnavailableResponseText,
	}
}
