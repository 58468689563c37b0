package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hemchdev/aura/internal/assistant/intent"
	"github.com/hemchdev/aura/internal/httpclient"
	"github.com/hemchdev/aura/internal/logging"
	"github.com/hemchdev/aura/internal/session"
)

// Config configures the Gemini client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Gemini calls the generateContent endpoint of the Gemini API.
type Gemini struct {
	model   string
	apiKey  string
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

// NewGemini constructs the production classifier client.
func NewGemini(cfg Config, logger logging.Logger) *Gemini {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	logger = logging.OrNop(logger)
	return &Gemini{
		model:   model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		http:    httpclient.New(timeout, logger),
		logger:  logger,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Classify sends the fixed instruction, the trailing history window, and the
// new utterance, then parses the response. Malformed model output degrades
// locally via Parse; only transport-level failures return an error, and that
// error is always a *TransportError.
func (g *Gemini) Classify(ctx context.Context, utterance string, history []session.Message) (intent.Structured, error) {
	contents := []geminiContent{
		{Role: "user", Parts: []geminiPart{{Text: systemInstruction}}},
	}
	if len(history) > session.ContextWindow {
		history = history[len(history)-session.ContextWindow:]
	}
	for _, msg := range history {
		role := "user"
		if msg.Role == session.RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: msg.Content}}})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: utterance}}})

	body, err := json.Marshal(geminiRequest{Contents: contents})
	if err != nil {
		return intent.Structured{}, &TransportError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return intent.Structured{}, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	g.logger.Debug("classify request: model=%s history=%d utterance=%q", g.model, len(history), utterance)

	resp, err := g.http.Do(req)
	if err != nil {
		g.logger.Warn("classifier request failed: %v", err)
		return intent.Structured{}, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return intent.Structured{}, &TransportError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		g.logger.Warn("classifier returned status %d: %s", resp.StatusCode, msg)
		return intent.Structured{}, &TransportError{Err: fmt.Errorf("status %d: %s", resp.StatusCode, msg)}
	}

	var decoded geminiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// The envelope itself is broken; treat the body as model text and
		// let Parse degrade it.
		return Parse(string(raw)), nil
	}
	if decoded.Error != nil {
		return intent.Structured{}, &TransportError{Err: fmt.Errorf("api error: %s", decoded.Error.Message)}
	}

	var text strings.Builder
	for _, candidate := range decoded.Candidates {
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
		break
	}
	result := Parse(text.String())
	g.logger.Debug("classified intent=%s confidence=%.2f", result.Intent, result.Confidence)
	return result, nil
}

var _ Client = (*Gemini)(nil)
