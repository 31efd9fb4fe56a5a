// Package service 包含了应用的业务逻辑层。
package service

import (
	"sort"

	"tg-claude-relay/internal/model"
	"tg-claude-relay/internal/repository"
)

// ConversationService 定义了管理 API 使用的对话查询与清理接口。
type ConversationService interface {
	ListConversations() []model.ConversationSummary
	GetHistory(userID int64) []model.ChatMessage
	ClearConversation(userID int64) int
}

type conversationService struct {
	repo repository.ConversationRepository
}

// NewConversationService 创建一个新的 ConversationService。
func NewConversationService(repo repository.ConversationRepository) ConversationService {
	return &conversationService{repo: repo}
}

// ListConversations 返回所有活跃会话的概览，按用户 ID 排序。
func (s *conversationService) ListConversations() []model.ConversationSummary {
	ids := s.repo.UserIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	summaries := make([]model.ConversationSummary, 0, len(ids))
	for _, id := range ids {
		summaries = append(summaries, model.ConversationSummary{
			UserID:       id,
			MessageCount: s.repo.Size(id),
		})
	}
	return summaries
}

// GetHistory 返回用户的完整对话历史快照。
func (s *conversationService) GetHistory(userID int64) []model.ChatMessage {
	return s.repo.History(userID)
}

// ClearConversation 清空用户历史并返回清除的条数。
func (s *conversationService) ClearConversation(userID int64) int {
	return s.repo.Clear(userID)
}
