package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-claude-relay/internal/config"
	"tg-claude-relay/internal/model"
)

func newTestClient(baseURL string) Client {
	return NewClient(config.ClaudeConfig{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		Model:          "claude-test",
		MaxTokens:      1024,
		TimeoutSeconds: 5,
	})
}

func TestCompleteSuccess(t *testing.T) {
	var gotReq messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": "Hi there"}},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	reply, err := client.Complete(context.Background(), []model.ChatMessage{
		{Role: model.RoleUser, Content: "Hello"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)

	// 请求携带模型、token 上限与完整历史
	assert.Equal(t, "claude-test", gotReq.Model)
	assert.Equal(t, 1024, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "Hello", gotReq.Messages[0].Content)
}

func TestCompleteStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"bad request", http.StatusBadRequest, ErrInvalidRequest},
		{"server error", http.StatusInternalServerError, ErrUnavailable},
		{"bad gateway", http.StatusBadGateway, ErrUnavailable},
		{"teapot", http.StatusTeapot, ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error": map[string]string{"type": "test_error", "message": "something broke"},
				})
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			_, err := client.Complete(context.Background(), []model.ChatMessage{{Role: model.RoleUser, Content: "hi"}})

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, "something broke", apiErr.Message)
			assert.NotEmpty(t, apiErr.Description())
		})
	}
}

func TestCompleteNetworkFailureIsUnavailable(t *testing.T) {
	// 关闭的服务器地址模拟网络失败
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Complete(context.Background(), []model.ChatMessage{{Role: model.RoleUser, Content: "hi"}})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrUnavailable, apiErr.Kind)
}

func TestCompleteTimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, []model.ChatMessage{{Role: model.RoleUser, Content: "hi"}})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrUnavailable, apiErr.Kind)
}

func TestCompleteEmptyContentIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"content": []map[string]string{}})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Complete(context.Background(), []model.ChatMessage{{Role: model.RoleUser, Content: "hi"}})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrUnknown, apiErr.Kind)
}
