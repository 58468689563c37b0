// Package speech defines the capability boundary for voice input and output.
// Platform speech engines live behind these interfaces; the assistant core
// only ever sees transcribed text and spoken-reply requests.
package speech

import "context"

// Recognizer turns captured audio into an utterance.
type Recognizer interface {
	// Transcribe blocks until a final transcript is available or ctx ends.
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Synthesizer speaks an assistant reply.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

type nopRecognizer struct{}

func (nopRecognizer) Transcribe(context.Context, []byte) (string, error) { return "", nil }

type nopSynthesizer struct{}

func (nopSynthesizer) Speak(context.Context, string) error { return nil }

// NopRecognizer returns a recognizer that transcribes nothing.
func NopRecognizer() Recognizer { return nopRecognizer{} }

// NopSynthesizer returns a synthesizer that discards its input.
func NopSynthesizer() Synthesizer { return nopSynthesizer{} }
