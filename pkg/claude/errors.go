package claude

import "fmt"

// ErrorKind 对 Anthropic API 的失败进行分类。
// 分类保留完整，便于将来在不重新推导错误类别的前提下叠加重试策略。
type ErrorKind string

const (
	// ErrUnauthorized 凭证无效或被拒绝
	ErrUnauthorized ErrorKind = "unauthorized"
	// ErrRateLimited 触发限流
	ErrRateLimited ErrorKind = "rate_limited"
	// ErrInvalidRequest 请求本身不合法（如历史格式错误）
	ErrInvalidRequest ErrorKind = "invalid_request"
	// ErrUnavailable 网络错误、超时或远端 5xx
	ErrUnavailable ErrorKind = "unavailable"
	// ErrUnknown 其余未归类的失败
	ErrUnknown ErrorKind = "unknown"
)

// APIError 是 API 调用失败的分类错误。
type APIError struct {
	Kind    ErrorKind
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("claude api error (%s): %s", e.Kind, e.Message)
}

// Description 返回适合直接展示给最终用户的错误说明。
func (e *APIError) Description() string {
	switch e.Kind {
	case ErrUnauthorized:
		return "API credentials were rejected"
	case ErrRateLimited:
		return "the API rate limit was exceeded, please try again later"
	case ErrInvalidRequest:
		return "the request was rejected as invalid"
	case ErrUnavailable:
		return "the API is temporarily unavailable, please try again later"
	default:
		return "an unexpected error occurred"
	}
}

// classifyStatus 将 HTTP 状态码映射到错误分类。
func classifyStatus(status int, message string) *APIError {
	var kind ErrorKind
	switch {
	case status == 401 || status == 403:
		kind = ErrUnauthorized
	case status == 429:
		kind = ErrRateLimited
	case status == 400 || status == 422:
		kind = ErrInvalidRequest
	case status >= 500:
		kind = ErrUnavailable
	default:
		kind = ErrUnknown
	}
	return &APIError{Kind: kind, Message: message}
}
