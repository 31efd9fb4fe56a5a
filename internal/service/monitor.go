package service

import (
	"sync"

	"tg-claude-relay/internal/model"
)

// Monitor 向管理 API 的订阅端广播转发回合事件。
// 订阅端消费过慢时事件被丢弃，转发主流程永不被监控阻塞。
type Monitor struct {
	mu   sync.Mutex
	subs map[chan model.RelayEvent]struct{}
}

// NewMonitor 创建一个新的 Monitor。
func NewMonitor() *Monitor {
	return &Monitor{subs: make(map[chan model.RelayEvent]struct{})}
}

// Subscribe 注册一个订阅者，返回事件通道和取消函数。
func (m *Monitor) Subscribe() (<-chan model.RelayEvent, func()) {
	ch := make(chan model.RelayEvent, 16)
	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if _, ok := m.subs[ch]; ok {
			delete(m.subs, ch)
			close(ch)
		}
		m.mu.Unlock()
	}
	return ch, cancel
}

// Publish 将事件广播给所有订阅者，通道已满时丢弃。
func (m *Monitor) Publish(ev model.RelayEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
