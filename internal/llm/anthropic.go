package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AnthropicClient calls the Anthropic Messages API. Like the OpenAI client
// it returns text only; tool envelopes are handled by the orchestrator.
type AnthropicClient struct {
	http    *http.Client
	apiKey  string
	model   string
	baseURL string
}

func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		http:    &http.Client{Timeout: 60 * time.Second},
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.anthropic.com/v1/messages",
	}
}

func (c *AnthropicClient) Name() string { return "Anthropic:" + c.model }
func (c *AnthropicClient) Close() error { return nil }

type anthropicReq struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResp struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *AnthropicClient) Generate(ctx context.Context, req Request) (*Result, error) {
	msgs := make([]anthropicMessage, 0, len(req.History)+1)
	for _, m := range req.History {
		role := "user"
		if m.Role == RoleModel {
			role = "assistant"
		}
		msgs = append(msgs, anthropicMessage{Role: role, Content: m.Text})
	}
	msgs = append(msgs, anthropicMessage{Role: "user", Content: req.Prompt})

	body, _ := json.Marshal(anthropicReq{
		Model:     c.model,
		MaxTokens: 1024,
		System:    req.System,
		Messages:  msgs,
	})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("anthropic: unexpected status %s: %s", resp.Status, raw)
		if resp.StatusCode == http.StatusBadRequest {
			return nil, NewPermanentError(err)
		}
		return nil, err
	}

	var out anthropicResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	for _, block := range out.Content {
		if block.Type == "text" && block.Text != "" {
			return &Result{Text: block.Text}, nil
		}
	}
	return nil, ErrEmptyResponse
}
