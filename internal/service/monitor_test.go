package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-claude-relay/internal/model"
)

func TestMonitorPublishReachesAllSubscribers(t *testing.T) {
	m := NewMonitor()

	ch1, cancel1 := m.Subscribe()
	ch2, cancel2 := m.Subscribe()
	defer cancel1()
	defer cancel2()

	m.Publish(model.RelayEvent{UserID: 1, OK: true})

	for _, ch := range []<-chan model.RelayEvent{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, int64(1), ev.UserID)
			assert.True(t, ev.OK)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestMonitorCancelStopsDelivery(t *testing.T) {
	m := NewMonitor()

	ch, cancel := m.Subscribe()
	cancel()
	// 取消后再取消不应 panic
	cancel()

	_, open := <-ch
	require.False(t, open)

	// 没有订阅者时 Publish 不阻塞
	m.Publish(model.RelayEvent{UserID: 2})
}

func TestMonitorSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	m := NewMonitor()

	_, cancel := m.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		// 超出通道缓冲量的事件会被丢弃而不是阻塞
		for i := 0; i < 100; i++ {
			m.Publish(model.RelayEvent{UserID: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
