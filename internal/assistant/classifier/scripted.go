package classifier

import (
	"context"

	"github.com/hemchdev/aura/internal/assistant/intent"
	"github.com/hemchdev/aura/internal/session"
)

// Scripted is a Client for tests: it replays queued results in order and
// records what it was asked.
type Scripted struct {
	Results    []intent.Structured
	Errs       []error
	Utterances []string
	Histories  [][]session.Message
	calls      int
}

// Push queues a successful classification.
func (s *Scripted) Push(result intent.Structured) {
	s.Results = append(s.Results, result)
	s.Errs = append(s.Errs, nil)
}

// PushErr queues a failed classification.
func (s *Scripted) PushErr(err error) {
	s.Results = append(s.Results, intent.Structured{})
	s.Errs = append(s.Errs, err)
}

func (s *Scripted) Classify(_ context.Context, utterance string, history []session.Message) (intent.Structured, error) {
	s.Utterances = append(s.Utterances, utterance)
	s.Histories = append(s.Histories, history)
	if s.calls >= len(s.Results) {
		return intent.Structured{Intent: intent.General, Confidence: 0.5, ResponseText: FallbackResponseText}, nil
	}
	result, err := s.Results[s.calls], s.Errs[s.calls]
	s.calls++
	if err != nil {
		return intent.Structured{}, err
	}
	return result, nil
}

var _ Client = (*Scripted)(nil)
