// Package textgen provides a client for OpenAI-compatible chat completion
// APIs. The server uses it against Groq for recommendation reranking.
package textgen

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// Client performs chat completion requests against an OpenAI-compatible API.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a chat completion client. An empty baseURL targets Groq.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Configured reports whether the client has an API key. An unconfigured
// client makes callers fall back to non-LLM behavior instead of erroring.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is one message in a chat completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat constrains the model output format.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ResponseFormatJSONObject asks the model for a JSON object response.
const ResponseFormatJSONObject = "json_object"

// ChatRequest is the body of a chat completion request.
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatResponse is the model's reply.
type ChatResponse struct {
	Choices []ChatChoice `json:"choices"`
}

// ChatChoice holds one candidate completion.
type ChatChoice struct {
	Message ChatMessage `json:"message"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateChatCompletion calls /chat/completions.
func (c *Client) CreateChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if c.apiKey == "" {
		return ChatResponse{}, fmt.Errorf("textgen: api key is empty")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("textgen: marshal request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("textgen: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("textgen: do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("textgen: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr apiErrorResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return ChatResponse{}, fmt.Errorf("textgen: %s", apiErr.Error.Message)
		}
		return ChatResponse{}, fmt.Errorf("textgen: unexpected status %d", resp.StatusCode)
	}

	var completion ChatResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return ChatResponse{}, fmt.Errorf("textgen: decode response: %w", err)
	}
	return completion, nil
}
