// Package claude provides a client for the Anthropic Messages API.
package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"tg-claude-relay/internal/config"
	"tg-claude-relay/internal/model"
)

// Client defines the interface for a completion client.
type Client interface {
	// Complete 将完整的有序历史发送给补全接口，返回单条文本回复。
	// 失败时返回 *APIError，不做自动重试。
	Complete(ctx context.Context, messages []model.ChatMessage) (string, error)
}

const anthropicVersion = "2023-06-01"

type anthropicClient struct {
	cfg    config.ClaudeConfig
	client *http.Client
}

// NewClient creates a new Anthropic API client from the config.
func NewClient(cfg config.ClaudeConfig) Client {
	return &anthropicClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
	}
}

// apiMessage 是发送给 API 的单条消息，仅携带 role 和 content。
type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete calls the Messages API with the full conversation history.
func (c *anthropicClient) Complete(ctx context.Context, messages []model.ChatMessage) (string, error) {
	reqBody := messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages:  make([]apiMessage, 0, len(messages)),
	}
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, apiMessage{Role: m.Role, Content: m.Content})
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", &APIError{Kind: ErrInvalidRequest, Message: fmt.Sprintf("failed to marshal request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/v1/messages", bytes.NewReader(reqBytes))
	if err != nil {
		return "", &APIError{Kind: ErrInvalidRequest, Message: fmt.Sprintf("failed to create request: %v", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		// 网络失败与超时统一归类为 unavailable
		return "", &APIError{Kind: ErrUnavailable, Message: fmt.Sprintf("failed to call messages api: %v", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &APIError{Kind: ErrUnavailable, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		// 尽量取出 API 返回的错误描述，取不到时退回原始状态行
		var errResp errorResponse
		message := resp.Status
		if jsonErr := json.Unmarshal(bodyBytes, &errResp); jsonErr == nil && errResp.Error.Message != "" {
			message = errResp.Error.Message
		}
		return "", classifyStatus(resp.StatusCode, message)
	}

	var result messagesResponse
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return "", &APIError{Kind: ErrUnknown, Message: fmt.Sprintf("failed to unmarshal response: %v", err)}
	}

	for _, block := range result.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", &APIError{Kind: ErrUnknown, Message: "response contained no text content"}
}
