package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ollamaTimeout is long: local models are used for bulk extraction and can be
// slow on first load.
const ollamaTimeout = 120 * time.Second

// Ollama talks to a local Ollama server. Ollama takes a single flattened
// prompt, so the conversation is rendered with role markers and stop
// sequences keep the model from continuing past its own turn.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama builds the single-prompt provider.
func NewOllama(baseURL, model string) *Ollama {
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: ollamaTimeout},
	}
}

// Name implements Client.
func (o *Ollama) Name() string { return "ollama" }

type generateOptions struct {
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p"`
	RepeatPenalty float64 `json:"repeat_penalty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
	Stop    []string        `json:"stop"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate implements Client using the flattened-prompt wire shape.
func (o *Ollama) Generate(ctx context.Context, messages []Message) (string, error) {
	if err := validateMessages(messages); err != nil {
		return "", err
	}

	body, err := json.Marshal(generateRequest{
		Model:  o.model,
		Prompt: flattenMessages(messages),
		Stream: false,
		Options: generateOptions{
			Temperature:   0.2,
			TopP:          0.9,
			RepeatPenalty: 1.1,
		},
		Stop: []string{"\nUSER:", "\nSYSTEM:"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("bad status %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("malformed response body: %w", err)
	}

	return strings.TrimSpace(parsed.Response), nil
}
