package publisher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "warden/pkg/domain"
	audit "warden/pkg/platform/audit"
	"warden/pkg/platform/audit/store/memory"
)

var fixedNow = time.Date(2026, 4, 9, 14, 30, 0, 0, time.UTC)

// recordingSink keeps every event it is handed and can be told to fail the
// next n appends.
type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
	fail   int
}

func (s *recordingSink) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail > 0 {
		s.fail--
		return errors.New("broker unreachable")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) received() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Event(nil), s.events...)
}

func TestEmit_FillsIdentityTimeAndCategory(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithClock(func() time.Time { return fixedNow }))
	defer pub.Close()
	userID := id.UserID(uuid.New())

	require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: userID, Action: string(audit.EventPaymentBlocked)}))
	require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: userID, Action: string(audit.EventRestrictionCreated)}))

	events, err := pub.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
	assert.NotEqual(t, events[0].ID, events[1].ID)
	assert.Equal(t, fixedNow, events[0].Timestamp)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.Equal(t, audit.CategoryOperations, events[1].Category)
}

func TestEmit_KeepsCallerSuppliedFields(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithClock(func() time.Time { return fixedNow }))
	defer pub.Close()

	event := audit.Event{
		ID:        uuid.New(),
		UserID:    id.UserID(uuid.New()),
		Action:    string(audit.EventFraudFlagged),
		Category:  audit.CategoryCompliance,
		Timestamp: fixedNow.Add(-time.Hour),
	}
	require.NoError(t, pub.Emit(context.Background(), event))

	events, err := pub.List(context.Background(), event.UserID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
	assert.Equal(t, event.Timestamp, events[0].Timestamp)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
}

func TestEmit_CanceledContextIsRejectedUpFront(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	userID := id.UserID(uuid.New())
	err := pub.Emit(ctx, audit.Event{UserID: userID, Action: string(audit.EventKYCExpired)})
	assert.ErrorIs(t, err, context.Canceled)

	events, err := pub.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEmit_SyncFailsClosedWithoutDeadLetters(t *testing.T) {
	pub := NewPublisher(newFlakyStore(10), WithRetry(2, time.Millisecond, time.Millisecond))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventAccessBlocked)})
	assert.ErrorContains(t, err, "audit persistence failed")
}

func TestEmit_FansOutToSinks(t *testing.T) {
	store := memory.NewInMemoryStore()
	stream := &recordingSink{}
	pub := NewPublisher(store, WithSinks(stream))
	defer pub.Close()

	userID := id.UserID(uuid.New())
	require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: userID, Action: string(audit.EventAMLReportQueued)}))

	stored, err := pub.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	sent := stream.received()
	require.Len(t, sent, 1)
	assert.Equal(t, stored[0].ID, sent[0].ID)
}

func TestEmit_RetriesOnlyTheFailedSink(t *testing.T) {
	store := memory.NewInMemoryStore()
	stream := &recordingSink{fail: 1}
	pub := NewPublisher(store, WithSinks(stream), WithRetry(3, time.Millisecond, time.Millisecond))
	defer pub.Close()

	userID := id.UserID(uuid.New())
	require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: userID, Action: string(audit.EventAccountFrozen)}))

	stored, err := pub.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "store already had the event and is not written twice")
	assert.Len(t, stream.received(), 1)
}

func TestClose_DrainsAsyncBuffer(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(64), WithWorkers(4))
	userID := id.UserID(uuid.New())

	actions := []audit.AuditEvent{audit.EventKYCInitiated, audit.EventKYCManualReview, audit.EventKYCApproved}
	for i := 0; i < 30; i++ {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: userID, Action: string(actions[i%len(actions)])}))
	}
	pub.Close()
	pub.Close()

	events, err := store.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, events, 30)
}

func TestEmit_AsyncBufferFullWithoutDeadLettersErrors(t *testing.T) {
	release := make(chan struct{})
	store := &blockingStore{InMemoryStore: memory.NewInMemoryStore(), release: release}
	pub := NewPublisher(store, WithAsyncBuffer(1), WithWorkers(1))

	var full atomic.Int32
	for i := 0; i < 5; i++ {
		if err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventAnonymizerDetected)}); errors.Is(err, ErrBufferFull) {
			full.Add(1)
		}
	}
	assert.Positive(t, full.Load())

	close(release)
	pub.Close()
}

// flakyStore fails the first n appends.
type flakyStore struct {
	*memory.InMemoryStore
	failures atomic.Int32
}

func newFlakyStore(n int32) *flakyStore {
	s := &flakyStore{InMemoryStore: memory.NewInMemoryStore()}
	s.failures.Store(n)
	return s
}

func (s *flakyStore) Append(ctx context.Context, event audit.Event) error {
	if s.failures.Add(-1) >= 0 {
		return errors.New("store unavailable")
	}
	return s.InMemoryStore.Append(ctx, event)
}

func TestPublisher_RetriesUntilDelivered(t *testing.T) {
	store := newFlakyStore(2)
	dlq := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithDeadLetterStore(dlq), WithRetry(3, time.Millisecond, 2*time.Millisecond))
	defer pub.Close()

	userID := id.UserID(uuid.New())
	require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: userID, Action: string(audit.EventKYCApproved)}))

	events, err := pub.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	letters, err := dlq.ListDeadLetters(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, letters)
}

func TestPublisher_ExhaustedAttemptsGoToDeadLetter(t *testing.T) {
	store := newFlakyStore(100)
	dlq := memory.NewInMemoryStore()
	pub := NewPublisher(store,
		WithAsyncBuffer(4),
		WithDeadLetterStore(dlq),
		WithRetry(3, time.Millisecond, 2*time.Millisecond),
	)

	userID := id.UserID(uuid.New())
	require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: userID, Action: string(audit.EventPaymentBlocked)}))
	pub.Close()

	letters, err := dlq.ListDeadLetters(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, 3, letters[0].Attempts)
	assert.Equal(t, string(audit.EventPaymentBlocked), letters[0].Event.Action)
	assert.Equal(t, audit.CategoryCompliance, letters[0].Event.Category)
}

func TestPublisher_ReplayRedeliversDeadLetters(t *testing.T) {
	store := newFlakyStore(3)
	dlq := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithDeadLetterStore(dlq), WithRetry(3, time.Millisecond, time.Millisecond))
	defer pub.Close()

	userID := id.UserID(uuid.New())
	err := pub.Emit(context.Background(), audit.Event{UserID: userID, Action: string(audit.EventKYCRejected)})
	require.Error(t, err, "sync mode fails closed")

	n, err := pub.Replay(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	events, err := pub.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	letters, err := dlq.ListDeadLetters(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, letters)
}

func TestPublisher_FullBufferSpillsToDeadLetter(t *testing.T) {
	block := make(chan struct{})
	store := &blockingStore{InMemoryStore: memory.NewInMemoryStore(), release: block}
	dlq := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1), WithDeadLetterStore(dlq))

	for range 5 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{
			UserID: id.UserID(uuid.New()),
			Action: string(audit.EventAccessBlocked),
		}))
	}

	letters, err := dlq.ListDeadLetters(context.Background(), 10)
	require.NoError(t, err)
	assert.NotEmpty(t, letters, "overflow must be kept, not dropped")
	for _, dl := range letters {
		assert.Equal(t, "buffer_full", dl.Cause)
	}

	close(block)
	pub.Close()
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventKYCInitiated)})
	assert.ErrorIs(t, err, ErrClosed)
}

// blockingStore holds every append until release is closed.
type blockingStore struct {
	*memory.InMemoryStore
	release chan struct{}
}

func (s *blockingStore) Append(ctx context.Context, event audit.Event) error {
	<-s.release
	return s.InMemoryStore.Append(ctx, event)
}
