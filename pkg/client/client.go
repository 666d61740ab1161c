// Package client is the Go client for the fastrag backend API.
//
// Write operations surface every failure as a typed error. List operations
// (ChatHistory, Notes) instead degrade to an empty result on any failure,
// favoring availability of the display over strict error visibility.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// APIError is a non-success response from the backend.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Detail)
}

// ConnectivityError is a client-local transport failure: the backend could
// not be reached at all.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("failed to reach backend: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// Client talks to the fastrag backend.
type Client struct {
	BaseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a client for the backend at baseURL (e.g. "http://127.0.0.1:8000").
// No request timeout is set; generation calls can be long-lived.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		client:  &http.Client{},
		logger:  slog.Default(),
	}
}

// NewSessionID returns a fresh opaque session identifier.
func NewSessionID() string {
	return uuid.New().String()
}

// GenerateRequest represents one generation call.
type GenerateRequest struct {
	Question    string  `json:"question"`
	LLMProvider string  `json:"llm_provider"`
	LLMModel    string  `json:"llm_model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	SessionID   string  `json:"session_id"`
	RAGEnabled  bool    `json:"rag_enabled"`
}

// ChatMessage represents a stored chat message.
type ChatMessage struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	Role        string    `json:"role"`
	Message     string    `json:"message"`
	LLMProvider string    `json:"llm_provider"`
	LLMModel    string    `json:"llm_model"`
	Timestamp   time.Time `json:"timestamp"`
}

// Note represents a stored note.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// GenerateStream issues a streaming generation request and invokes the
// callback for each text fragment as it arrives. The server persists the
// turn; callers wanting local history should append optimistically rather
// than re-fetching.
func (c *Client) GenerateStream(ctx context.Context, req GenerateRequest, callback func(fragment string) error) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/generate_stream", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return &ConnectivityError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return apiErrorFromResponse(resp)
	}

	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if cbErr := callback(string(buf[:n])); cbErr != nil {
				return fmt.Errorf("callback error: %w", cbErr)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &ConnectivityError{Err: err}
		}
	}
}

// SaveChatMessage stores one chat message.
func (c *Client) SaveChatMessage(ctx context.Context, msg ChatMessage) (*ChatMessage, error) {
	var stored ChatMessage
	if err := c.postJSON(ctx, "/chat_history/", msg, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// ChatHistory returns the messages of a session, oldest first.
// On any failure it returns an empty slice.
func (c *Client) ChatHistory(ctx context.Context, sessionID string) []ChatMessage {
	var messages []ChatMessage
	if err := c.getJSON(ctx, "/chat_history/"+sessionID, &messages); err != nil {
		c.logger.Warn("failed to fetch chat history", "session_id", sessionID, "error", err)
		return []ChatMessage{}
	}
	return messages
}

// Notes returns all notes, newest first. On any failure it returns an empty slice.
func (c *Client) Notes(ctx context.Context) []Note {
	var notes []Note
	if err := c.getJSON(ctx, "/notes/", &notes); err != nil {
		c.logger.Warn("failed to fetch notes", "error", err)
		return []Note{}
	}
	return notes
}

// GetNote fetches one note by id.
func (c *Client) GetNote(ctx context.Context, id int64) (*Note, error) {
	var note Note
	if err := c.getJSON(ctx, fmt.Sprintf("/notes/%d", id), &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// CreateNote stores a new note.
func (c *Client) CreateNote(ctx context.Context, title, content string) (*Note, error) {
	var note Note
	if err := c.postJSON(ctx, "/notes/", map[string]string{"title": title, "content": content}, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// UpdateNote overwrites a note's title and content.
func (c *Client) UpdateNote(ctx context.Context, id int64, title, content string) (*Note, error) {
	var note Note
	err := c.doJSON(ctx, "PUT", fmt.Sprintf("/notes/%d", id), map[string]string{"title": title, "content": content}, &note)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote removes a note and returns the deleted entity.
func (c *Client) DeleteNote(ctx context.Context, id int64) (*Note, error) {
	var note Note
	if err := c.doJSON(ctx, "DELETE", fmt.Sprintf("/notes/%d", id), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// Health probes the backend liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.getJSON(ctx, "/health", &struct{}{})
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, "GET", path, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, "POST", path, in, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var bodyReader io.Reader
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewBuffer(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &ConnectivityError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return apiErrorFromResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// apiErrorFromResponse builds an APIError from a non-success response,
// preferring the server's JSON detail field.
func apiErrorFromResponse(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(resp.Body)

	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &detail); err == nil && detail.Detail != "" {
		return &APIError{Status: resp.StatusCode, Detail: detail.Detail}
	}
	return &APIError{Status: resp.StatusCode, Detail: string(raw)}
}
