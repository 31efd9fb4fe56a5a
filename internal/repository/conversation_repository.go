// Package repository 提供了数据访问层的实现。
package repository

import (
	"sync"
	"time"

	"tg-claude-relay/internal/model"
)

// ConversationRepository 定义了对话历史记录的操作接口。
// 所有操作对任意 userID 都是全函数，不产生错误。
type ConversationRepository interface {
	// Append 将一条消息追加到用户历史末尾，历史不存在时自动创建。
	Append(userID int64, role, content string)
	// History 返回用户当前历史的快照副本，不存在时返回空切片。
	History(userID int64) []model.ChatMessage
	// Clear 整体删除用户历史，返回删除前的消息条数。
	Clear(userID int64) int
	// Size 返回用户历史的当前消息条数。
	Size(userID int64) int
	// UserIDs 返回当前存在历史的所有用户 ID。
	UserIDs() []int64
}

// 分片数量，固定为 2 的幂以便用位运算取模。
const shardCount = 32

// shard 是一个独立加锁的子映射，不同用户落在不同分片时互不阻塞。
type shard struct {
	mu        sync.RWMutex
	histories map[int64][]model.ChatMessage
}

type memoryConversationRepository struct {
	shards       [shardCount]*shard
	historyLimit int
}

// NewConversationRepository 创建一个内存实现的 ConversationRepository。
// historyLimit 大于 0 时仅保留最近 N 条消息（可选的显式配置），0 表示不限制。
// 历史仅存活于进程生命周期内，重启即清空，这是已知并接受的限制。
func NewConversationRepository(historyLimit int) ConversationRepository {
	r := &memoryConversationRepository{historyLimit: historyLimit}
	for i := range r.shards {
		r.shards[i] = &shard{histories: make(map[int64][]model.ChatMessage)}
	}
	return r
}

func (r *memoryConversationRepository) shardFor(userID int64) *shard {
	return r.shards[uint64(userID)&(shardCount-1)]
}

// Append 将一条消息追加到用户历史末尾。
func (r *memoryConversationRepository) Append(userID int64, role, content string) {
	s := r.shardFor(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.histories[userID], model.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	// 可选的历史窗口：保留最近 N 条
	if r.historyLimit > 0 && len(history) > r.historyLimit {
		history = history[len(history)-r.historyLimit:]
	}
	s.histories[userID] = history
}

// History 返回用户历史的快照副本，调用方持有的切片不受后续 Append 影响。
func (r *memoryConversationRepository) History(userID int64) []model.ChatMessage {
	s := r.shardFor(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.histories[userID]
	snapshot := make([]model.ChatMessage, len(history))
	copy(snapshot, history)
	return snapshot
}

// Clear 删除用户历史并返回删除前的条数，历史不存在时返回 0。
func (r *memoryConversationRepository) Clear(userID int64) int {
	s := r.shardFor(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.histories[userID])
	delete(s.histories, userID)
	return count
}

// Size 返回用户历史的当前条数。
func (r *memoryConversationRepository) Size(userID int64) int {
	s := r.shardFor(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.histories[userID])
}

// UserIDs 返回当前存在历史的所有用户 ID，顺序不保证。
func (r *memoryConversationRepository) UserIDs() []int64 {
	var ids []int64
	for _, s := range r.shards {
		s.mu.RLock()
		for id := range s.histories {
			ids = append(ids, id)
		}
		s.mu.RUnlock()
	}
	return ids
}
