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

// OpenAIClient calls the OpenAI Chat Completions API. It has no native
// function dispatch here; the orchestrator instructs it to answer with a
// tool envelope and parses the text.
type OpenAIClient struct {
	http    *http.Client
	apiKey  string
	model   string
	baseURL string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		http:    &http.Client{Timeout: 60 * time.Second},
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.openai.com/v1/chat/completions",
	}
}

func (c *OpenAIClient) Name() string { return "OpenAI:" + c.model }
func (c *OpenAIClient) Close() error { return nil }

type oaChatReq struct {
	Model       string      `json:"model"`
	Messages    []oaMessage `json:"messages"`
	Temperature float32     `json:"temperature,omitempty"`
}

type oaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (*Result, error) {
	msgs := make([]oaMessage, 0, len(req.History)+2)
	if req.System != "" {
		msgs = append(msgs, oaMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.History {
		role := "user"
		if m.Role == RoleModel {
			role = "assistant"
		}
		msgs = append(msgs, oaMessage{Role: role, Content: m.Text})
	}
	msgs = append(msgs, oaMessage{Role: "user", Content: req.Prompt})

	body, _ := json.Marshal(oaChatReq{Model: c.model, Messages: msgs, Temperature: 0.3})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("openai: unexpected status %s: %s", resp.Status, raw)
		if resp.StatusCode == http.StatusBadRequest {
			return nil, NewPermanentError(err)
		}
		return nil, err
	}

	var out oaChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return nil, ErrEmptyResponse
	}
	return &Result{Text: out.Choices[0].Message.Content}, nil
}
