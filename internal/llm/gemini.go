package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// GeminiClient streams chat completions from the Google Generative Language API.
type GeminiClient struct {
	BaseURL string
	APIKey  string
	Params  ChatParams
	client  *http.Client
}

// NewGeminiClient creates a client bound to one model and one set of
// generation parameters.
func NewGeminiClient(baseURL, apiKey string, params ChatParams) *GeminiClient {
	return &GeminiClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Params:  params,
		client:  http.DefaultClient,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

// geminiRequest represents the streamGenerateContent request payload.
// Gemini keeps the system prompt in a dedicated systemInstruction field and
// uses maxOutputTokens instead of max_tokens.
type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	} `json:"generationConfig"`
}

// StreamChat sends a streaming request to streamGenerateContent (alt=sse)
// and calls the callback for each text part.
func (c *GeminiClient) StreamChat(ctx context.Context, messages []Message, callback func(chunk string) error) error {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse&key=%s",
		c.BaseURL, url.PathEscape(c.Params.Model), url.QueryEscape(c.APIKey))

	var payload geminiRequest
	payload.GenerationConfig.Temperature = c.Params.Temperature
	payload.GenerationConfig.MaxOutputTokens = c.Params.MaxTokens
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			payload.SystemInstruction = &geminiContent{
				Parts: []geminiPart{{Text: msg.Content}},
			}
		case RoleAssistant:
			// Gemini names the assistant role "model".
			payload.Contents = append(payload.Contents, geminiContent{
				Role:  "model",
				Parts: []geminiPart{{Text: msg.Content}},
			})
		default:
			payload.Contents = append(payload.Contents, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: msg.Content}},
			})
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

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

	// Read Server-Sent Events
	scanner := bufio.NewScanner(resp.Body)
	const dataPrefix = "data: "

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		data := strings.TrimPrefix(line, dataPrefix)

		var streamResp struct {
			Candidates []struct {
				Content struct {
					Parts []geminiPart `json:"parts"`
				} `json:"content"`
				FinishReason string `json:"finishReason"`
			} `json:"candidates"`
		}

		if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
			// Skip malformed JSON chunks
			continue
		}

		if len(streamResp.Candidates) == 0 {
			continue
		}

		for _, part := range streamResp.Candidates[0].Content.Parts {
			if part.Text == "" {
				continue
			}
			if err := callback(part.Text); err != nil {
				return fmt.Errorf("callback error: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}

	return nil
}
