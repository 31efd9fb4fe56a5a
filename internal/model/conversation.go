// Package model 包含了应用的数据模型定义。
package model

import "time"

// 消息角色，与 Anthropic Messages API 的 role 字段一致。
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage 代表单条对话消息。
type ChatMessage struct {
	Role      string    `json:"role"` // "user" 或 "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationSummary 是管理 API 返回的会话概览。
type ConversationSummary struct {
	UserID       int64 `json:"userId"`
	MessageCount int   `json:"messageCount"`
}

// RelayEvent 是一次转发回合的结果，推送给管理 API 的事件订阅端。
type RelayEvent struct {
	UserID    int64     `json:"userId"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
	Chunks    int       `json:"chunks"`
	Duration  string    `json:"duration"`
	Timestamp time.Time `json:"timestamp"`
}
