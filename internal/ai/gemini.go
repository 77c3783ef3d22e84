// README: Gemini-backed extraction provider.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"dispatch/internal/types"
)

// ErrBadResponse marks model output that could not be parsed into an
// Extraction. It is not transient: the caller goes straight to the fallback.
var ErrBadResponse = errors.New("unparseable model response")

// GeminiProvider implements Provider using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string, maxTokens int, temperature float32) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// Extract sends the conversation to the model and parses the first balanced
// JSON object out of whatever text comes back. No provider JSON-mode flags
// are relied on.
func (p *GeminiProvider) Extract(ctx context.Context, message string, history []types.Turn, trade string, now time.Time) (*Extraction, error) {
	prompt := buildSystemPrompt(trade, now) + "\n\n" + renderHistory(history) + "Customer: " + message

	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	raw, ok := firstJSONObject(responseText.String())
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in output", ErrBadResponse)
	}

	var result Extraction
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	result.normalize()
	return &result, nil
}

// buildSystemPrompt constructs the instructions for the model.
func buildSystemPrompt(trade string, now time.Time) string {
	return fmt.Sprintf(`Role: You are the message-understanding component of an SMS dispatcher for a %s business.
Context:
- Current time: %s
- The customer texted after a missed call. Messages are short and informal.

TASK:
Read the conversation and the latest customer message, then output ONE JSON object and nothing else.

RULES:
1. "job_type" is the specific kind of %s work requested, lower_snake_case (e.g. "water_heater", "drain_clog"). Omit or use "" if the message does not say.
2. "job_confidence" in [0,1]: how sure you are about job_type. Vague messages like "something's broken" are below 0.4.
3. "urgency_hint" is one of "normal", "urgent", "emergency". "emergency" only for active damage or hazard (flooding, sparks, gas). Negated mentions ("not flooding") are NOT emergencies.
4. "address_text" is the street address if the customer gave one, verbatim. Omit otherwise. Never invent one.
5. "confirmation": "yes" if this message accepts a previously offered appointment, "no" if it declines, else "unknown".
6. Output strictly:
{
  "job_type": "string",
  "job_confidence": 0.0,
  "urgency_hint": "normal" | "urgent" | "emergency",
  "urgency_confidence": 0.0,
  "address_text": "string",
  "confirmation": "yes" | "no" | "unknown"
}`, trade, now.Format(time.RFC3339), trade)
}

func renderHistory(history []types.Turn) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, t := range history {
		who := "Customer"
		if t.Sender == types.SenderBot {
			who = "Dispatcher"
		}
		b.WriteString(who + ": " + t.Text + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// firstJSONObject returns the first balanced {...} region in s, tolerating
// prose and markdown fences around it.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
