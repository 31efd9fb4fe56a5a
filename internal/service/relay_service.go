// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tg-claude-relay/internal/model"
	"tg-claude-relay/internal/repository"
	"tg-claude-relay/pkg/claude"
	"tg-claude-relay/pkg/log"
)

// DeliverFunc 由传输层提供，将一个消息分块投递给用户。
type DeliverFunc func(text string) error

// RelayService 定义了消息转发的业务接口。
type RelayService interface {
	// HandleMessage 处理一条入站消息：记录用户回合、调用补全接口、
	// 记录助手回合并把回复（按需分块）交给 deliver 投递。
	// 补全失败时不记录助手回合，改为投递一条错误说明；错误不向上传播。
	HandleMessage(ctx context.Context, userID int64, text string, deliver DeliverFunc) error
	// Reset 清空用户历史并返回清除的消息条数。
	Reset(userID int64) int
	// ContextSize 返回用户当前历史的消息条数。
	ContextSize(userID int64) int
}

type relayService struct {
	repo      repository.ConversationRepository
	client    claude.Client
	monitor   *Monitor
	chunkSize int

	// 按用户串行化整个回合：同一用户的第 N 条消息处理完毕（含补全调用
	// 与历史写入）之前，第 N+1 条不会开始，避免交错写入打乱回合结构。
	// 不同用户各持各锁，互不阻塞。
	mu        sync.Mutex
	turnLocks map[int64]*sync.Mutex
}

// NewRelayService 创建一个新的 RelayService 实例。
func NewRelayService(repo repository.ConversationRepository, client claude.Client, monitor *Monitor, chunkSize int) RelayService {
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	return &relayService{
		repo:      repo,
		client:    client,
		monitor:   monitor,
		chunkSize: chunkSize,
		turnLocks: make(map[int64]*sync.Mutex),
	}
}

func (s *relayService) turnLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.turnLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.turnLocks[userID] = lock
	}
	return lock
}

// HandleMessage 处理一条入站消息，见接口说明。
func (s *relayService) HandleMessage(ctx context.Context, userID int64, text string, deliver DeliverFunc) error {
	lock := s.turnLock(userID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()

	// 1. 记录用户回合，然后取快照提交给补全接口
	s.repo.Append(userID, model.RoleUser, text)
	history := s.repo.History(userID)
	log.Infow("转发消息到 Claude", "userId", userID, "contextSize", len(history))

	reply, err := s.client.Complete(ctx, history)
	if err != nil {
		// 失败路径：历史保持在用户回合之后的状态，不追加助手回合，
		// 用户重发即是隐式的重试途径。
		log.Errorf("Claude 调用失败, userId=%d: %v", userID, err)
		chunks := SplitMessage(errorReply(err), s.chunkSize)
		s.publish(userID, start, len(chunks), err)
		return deliverChunks(chunks, deliver)
	}

	// 2. 成功：记录助手回合并投递回复
	s.repo.Append(userID, model.RoleAssistant, reply)
	chunks := SplitMessage(reply, s.chunkSize)
	log.Infow("收到 Claude 回复", "userId", userID, "replyLen", len(reply), "chunks", len(chunks))
	s.publish(userID, start, len(chunks), nil)
	return deliverChunks(chunks, deliver)
}

// Reset 清空用户历史并返回清除的消息条数。
func (s *relayService) Reset(userID int64) int {
	count := s.repo.Clear(userID)
	log.Infof("已清空用户 %d 的对话历史，共 %d 条", userID, count)
	return count
}

// ContextSize 返回用户当前历史的消息条数。
func (s *relayService) ContextSize(userID int64) int {
	return s.repo.Size(userID)
}

func (s *relayService) publish(userID int64, start time.Time, chunks int, err error) {
	if s.monitor == nil {
		return
	}
	ev := model.RelayEvent{
		UserID:    userID,
		OK:        err == nil,
		Chunks:    chunks,
		Duration:  time.Since(start).String(),
		Timestamp: time.Now(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	s.monitor.Publish(ev)
}

// deliverChunks 按切分顺序逐块投递，投递顺序即分块顺序。
func deliverChunks(chunks []string, deliver DeliverFunc) error {
	for _, chunk := range chunks {
		if err := deliver(chunk); err != nil {
			return fmt.Errorf("failed to deliver chunk: %w", err)
		}
	}
	return nil
}

// errorReply 将分类错误转换为展示给最终用户的单条消息。
func errorReply(err error) string {
	var apiErr *claude.APIError
	if errors.As(err, &apiErr) {
		return "❌ An error occurred while processing your message.\n\nError: " + apiErr.Description()
	}
	return "❌ An error occurred while processing your message.\n\nError: " + err.Error()
}

// SplitMessage 将文本按固定长度切分为连续分块，每块不超过 limit 个字符。
// 在 rune 边界切分，避免把多字节字符截断；对 ASCII 与按字节切分等价。
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = 4096
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for i := 0; i < len(runes); i += limit {
		end := i + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
