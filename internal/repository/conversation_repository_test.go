package repository

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-claude-relay/internal/model"
)

func TestAppendAndHistory(t *testing.T) {
	repo := NewConversationRepository(0)

	repo.Append(1, model.RoleUser, "Hello")
	repo.Append(1, model.RoleAssistant, "Hi there")

	history := repo.History(1)
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, "Hello", history[0].Content)
	assert.Equal(t, model.RoleAssistant, history[1].Role)
	assert.Equal(t, "Hi there", history[1].Content)
}

func TestHistoryEmptyForUnknownUser(t *testing.T) {
	repo := NewConversationRepository(0)

	assert.Empty(t, repo.History(42))
	assert.Equal(t, 0, repo.Size(42))
}

func TestHistorySnapshotIsNotMutatedByLaterAppends(t *testing.T) {
	repo := NewConversationRepository(0)

	repo.Append(1, model.RoleUser, "first")
	snapshot := repo.History(1)
	repo.Append(1, model.RoleAssistant, "second")

	require.Len(t, snapshot, 1)
	assert.Equal(t, "first", snapshot[0].Content)
}

func TestUserIsolation(t *testing.T) {
	repo := NewConversationRepository(0)

	repo.Append(1, model.RoleUser, "from user 1")
	repo.Append(2, model.RoleUser, "from user 2")
	repo.Append(2, model.RoleAssistant, "to user 2")

	assert.Equal(t, 1, repo.Size(1))
	assert.Equal(t, 2, repo.Size(2))

	// clearing one user must not touch the other
	repo.Clear(2)
	assert.Equal(t, 1, repo.Size(1))
	assert.Equal(t, 0, repo.Size(2))
}

func TestClearReturnsPriorCount(t *testing.T) {
	repo := NewConversationRepository(0)

	for i := 0; i < 6; i++ {
		repo.Append(7, model.RoleUser, fmt.Sprintf("msg %d", i))
	}

	require.Equal(t, 6, repo.Size(7))
	assert.Equal(t, 6, repo.Clear(7))
	assert.Equal(t, 0, repo.Size(7))
	assert.Empty(t, repo.History(7))
}

func TestClearOnEmptyUserIsIdempotent(t *testing.T) {
	repo := NewConversationRepository(0)

	assert.Equal(t, 0, repo.Clear(99))
	assert.Equal(t, 0, repo.Clear(99))
	assert.Empty(t, repo.UserIDs())
}

func TestHistoryLimitKeepsLastN(t *testing.T) {
	repo := NewConversationRepository(4)

	for i := 0; i < 10; i++ {
		repo.Append(1, model.RoleUser, fmt.Sprintf("msg %d", i))
	}

	history := repo.History(1)
	require.Len(t, history, 4)
	assert.Equal(t, "msg 6", history[0].Content)
	assert.Equal(t, "msg 9", history[3].Content)
}

func TestUserIDs(t *testing.T) {
	repo := NewConversationRepository(0)

	repo.Append(1, model.RoleUser, "a")
	repo.Append(33, model.RoleUser, "b") // 与用户 1 落在同一分片
	repo.Append(2, model.RoleUser, "c")

	ids := repo.UserIDs()
	assert.ElementsMatch(t, []int64{1, 2, 33}, ids)
}

func TestConcurrentAppendsAreNotLost(t *testing.T) {
	repo := NewConversationRepository(0)

	const users = 8
	const perUser = 50

	var wg sync.WaitGroup
	for u := int64(0); u < users; u++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			for i := 0; i < perUser; i++ {
				repo.Append(userID, model.RoleUser, fmt.Sprintf("msg %d", i))
			}
		}(u)
	}
	wg.Wait()

	for u := int64(0); u < users; u++ {
		assert.Equal(t, perUser, repo.Size(u))
	}
}
