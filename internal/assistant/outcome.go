package assistant

// OutcomeKind classifies how an utterance was resolved.
type OutcomeKind int

const (
	OutcomeInfo OutcomeKind = iota
	OutcomeCreated
	OutcomeUpdated
	OutcomeDeleted
	OutcomeListed
	OutcomeClarification
	OutcomeNotFound
	OutcomeFailed
)

// Outcome is the single result of resolving one utterance. Exactly one
// outcome message is appended to the conversation per utterance.
type Outcome struct {
	Kind    OutcomeKind
	Message string
	OK      bool
}

// Message prefixes. Successes get a positive marker, failures a negative
// one, and clarification requests a search marker.
const (
	markerOK      = "✅ "
	markerFail    = "❌ "
	markerClarify = "🔍 "
)

func success(kind OutcomeKind, message string) Outcome {
	return Outcome{Kind: kind, Message: markerOK + message, OK: true}
}

func failure(kind OutcomeKind, message string) Outcome {
	return Outcome{Kind: kind, Message: markerFail + message, OK: false}
}

func clarification(message string) Outcome {
	return Outcome{Kind: OutcomeClarification, Message: markerClarify + message, OK: true}
}

func info(message string, ok bool) Outcome {
	return Outcome{Kind: OutcomeInfo, Message: message, OK: ok}
}

func listed(message string) Outcome {
	return Outcome{Kind: OutcomeListed, Message: message, OK: true}
}
