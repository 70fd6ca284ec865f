package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "fieldsync/pkg/platform/audit"
	"fieldsync/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: audit.ActionRecordSaved, ClientID: "P00001"})
	require.NoError(t, err)

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "P00001", events[0].ClientID)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: audit.ActionRecordSynced}))
	}
	pub.Close()

	events, err := store.ListByAction(context.Background(), audit.ActionRecordSynced)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFullDropsWithoutBlocking(t *testing.T) {
	blocked := &blockingStore{release: make(chan struct{})}
	pub := NewPublisher(blocked, WithAsyncBuffer(1))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var dropped int
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := pub.Emit(context.Background(), audit.Event{Action: audit.ActionRecordSaved}); errors.Is(err, ErrBufferFull) {
				mu.Lock()
				dropped++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(blocked.release)
	pub.Close()

	assert.Positive(t, dropped)
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	fixed := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	pub := NewPublisher(store, WithClock(func() time.Time { return fixed }))
	defer pub.Close()

	require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: audit.ActionWorkerLogin}))

	custom := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: audit.ActionWorkerLogin, Timestamp: custom}))

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Equal(t, custom, events[1].Timestamp)
}

func TestPublisher_CancelledContextInAsyncMode(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(4))
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, pub.Emit(ctx, audit.Event{Action: audit.ActionSyncRun}), context.Canceled)
}

type blockingStore struct {
	release chan struct{}
}

func (b *blockingStore) Append(_ context.Context, _ audit.Event) error {
	<-b.release
	return nil
}
