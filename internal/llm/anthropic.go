package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// anthropicVersion is the API version header required by the messages API.
const anthropicVersion = "2023-06-01"

// AnthropicClient streams chat completions from the Anthropic messages API.
type AnthropicClient struct {
	BaseURL string
	APIKey  string
	Params  ChatParams
	client  *http.Client
}

// NewAnthropicClient creates a client bound to one model and one set of
// generation parameters.
func NewAnthropicClient(baseURL, apiKey string, params ChatParams) *AnthropicClient {
	return &AnthropicClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Params:  params,
		client:  http.DefaultClient,
	}
}

// anthropicMessage is a single turn in the messages array. The messages API
// keeps the system prompt out of this array.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicRequest represents the request payload for the messages API.
type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Stream      bool               `json:"stream"`
}

// StreamChat sends a streaming request to the messages API and calls the
// callback for each text delta. System messages are lifted into the
// top-level system field as the API requires.
func (c *AnthropicClient) StreamChat(ctx context.Context, messages []Message, callback func(chunk string) error) error {
	url := fmt.Sprintf("%s/v1/messages", c.BaseURL)

	payload := anthropicRequest{
		Model:       c.Params.Model,
		MaxTokens:   c.Params.MaxTokens,
		Temperature: c.Params.Temperature,
		Stream:      true,
	}
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			payload.System = msg.Content
			continue
		}
		payload.Messages = append(payload.Messages, anthropicMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	// Read Server-Sent Events. Each event carries a typed JSON payload;
	// only content_block_delta events contain answer text.
	scanner := bufio.NewScanner(resp.Body)
	const dataPrefix = "data: "

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		data := strings.TrimPrefix(line, dataPrefix)

		var event struct {
			Type  string `json:"type"`
			Delta struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"delta"`
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}

		if err := json.Unmarshal([]byte(data), &event); err != nil {
			// Skip malformed JSON chunks
			continue
		}

		switch event.Type {
		case "content_block_delta":
			if event.Delta.Type == "text_delta" && event.Delta.Text != "" {
				if err := callback(event.Delta.Text); err != nil {
					return fmt.Errorf("callback error: %w", err)
				}
			}
		case "error":
			return fmt.Errorf("stream error: %s: %s", event.Error.Type, event.Error.Message)
		case "message_stop":
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}

	return nil
}
