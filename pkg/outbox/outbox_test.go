package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"portfoliobuilder/pkg/trace"
)

type fakeStore struct {
	pending []*Event
	failed  []*Event
	byID    map[int64]*Event
	sent    []int64
	marked  []int64

	limit      int
	maxRetries []int
}

func (s *fakeStore) GetPendingEvents(_ context.Context, limit int) ([]*Event, error) {
	s.limit = limit
	return s.pending, nil
}
func (s *fakeStore) GetFailedEvents(context.Context, int) ([]*Event, error) { return s.failed, nil }
func (s *fakeStore) GetEventByID(_ context.Context, id int64) (*Event, error) {
	if e, ok := s.byID[id]; ok {
		return e, nil
	}
	return nil, ErrEventNotFound
}
func (s *fakeStore) MarkAsSent(_ context.Context, id int64) error {
	s.sent = append(s.sent, id)
	return nil
}
func (s *fakeStore) MarkAsFailed(_ context.Context, id int64, maxRetries int) error {
	s.marked = append(s.marked, id)
	s.maxRetries = append(s.maxRetries, maxRetries)
	return nil
}

type published struct {
	routingKey string
	traceID    string
	payload    any
}

type fakePublisher struct {
	err   error
	calls []published
}

func (p *fakePublisher) PublishWithContext(ctx context.Context, routingKey string, payload any) error {
	p.calls = append(p.calls, published{routingKey: routingKey, traceID: trace.FromContext(ctx), payload: payload})
	return p.err
}

func event(id int64, payload string) *Event {
	return &Event{ID: id, RoutingKey: "project.created", Payload: json.RawMessage(payload), Status: StatusPending}
}

func TestDispatcher_PublishesAndMarksSent(t *testing.T) {
	store := &fakeStore{pending: []*Event{
		event(1, `{"project_id":"a","trace_id":"t-1"}`),
		event(2, `{"project_id":"b"}`),
	}}
	pub := &fakePublisher{}

	sent := NewDispatcher(store, pub, zap.NewNop()).ProcessPendingEvents(context.Background())

	assert.Equal(t, 2, sent)
	assert.Equal(t, []int64{1, 2}, store.sent)
	require.Len(t, pub.calls, 2)
	assert.Equal(t, "t-1", pub.calls[0].traceID)
	assert.Equal(t, "", pub.calls[1].traceID)
	assert.JSONEq(t, `{"project_id":"a","trace_id":"t-1"}`, string(pub.calls[0].payload.(json.RawMessage)))
}

func TestDispatcher_MarksFailuresAndStopsWhenBreakerOpens(t *testing.T) {
	var events []*Event
	for i := int64(1); i <= 8; i++ {
		events = append(events, event(i, `{}`))
	}
	store := &fakeStore{pending: events}
	pub := &fakePublisher{err: errors.New("channel closed")}

	sent := NewDispatcher(store, pub, zap.NewNop()).ProcessPendingEvents(context.Background())

	assert.Zero(t, sent)
	assert.Len(t, pub.calls, 5)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, store.marked)
	assert.Empty(t, store.sent)
}

func TestDispatcher_InvalidPayloadIsMarkedFailed(t *testing.T) {
	store := &fakeStore{pending: []*Event{event(9, `{not json`)}}
	pub := &fakePublisher{}

	NewDispatcher(store, pub, zap.NewNop()).ProcessPendingEvents(context.Background())

	assert.Empty(t, pub.calls)
	assert.Equal(t, []int64{9}, store.marked)
}

func TestDispatcher_UsesConfiguredLimits(t *testing.T) {
	store := &fakeStore{pending: []*Event{event(1, `{}`)}}
	pub := &fakePublisher{err: errors.New("down")}

	NewDispatcher(store, pub, zap.NewNop()).
		WithBatchSize(7).
		WithMaxRetries(2).
		ProcessPendingEvents(context.Background())

	assert.Equal(t, 7, store.limit)
	assert.Equal(t, []int{2}, store.maxRetries)
}

func TestDispatcher_NonPositiveSettingsKeepDefaults(t *testing.T) {
	store := &fakeStore{pending: []*Event{event(1, `{}`)}}
	pub := &fakePublisher{err: errors.New("down")}

	NewDispatcher(store, pub, zap.NewNop()).
		WithBatchSize(0).
		WithMaxRetries(-1).
		WithInterval(0).
		ProcessPendingEvents(context.Background())

	assert.Equal(t, 100, store.limit)
	assert.Equal(t, []int{5}, store.maxRetries)
}

func TestDispatcher_StartStopsOnCancel(t *testing.T) {
	store := &fakeStore{}
	d := NewDispatcher(store, &fakePublisher{}, zap.NewNop()).WithInterval(time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

func TestReplayService_ReplayFailedEvents(t *testing.T) {
	e1, e2 := event(1, `{}`), event(2, `{}`)
	store := &fakeStore{
		failed: []*Event{e1, e2},
		byID:   map[int64]*Event{1: e1},
	}
	pub := &fakePublisher{}

	n, err := NewReplayService(store, pub, zap.NewNop()).ReplayFailedEvents(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{1}, store.sent)
}

func TestReplayService_PublishFailureMarksFailed(t *testing.T) {
	e := event(3, `{}`)
	store := &fakeStore{byID: map[int64]*Event{3: e}}
	pub := &fakePublisher{err: errors.New("down")}

	err := NewReplayService(store, pub, zap.NewNop()).WithMaxRetries(2).ReplayEvent(context.Background(), 3)

	assert.Error(t, err)
	assert.Equal(t, []int64{3}, store.marked)
	assert.Equal(t, []int{2}, store.maxRetries)
}

func TestNextRetry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	status, count, at := nextRetry(0, 5, now)
	assert.Equal(t, StatusPending, status)
	assert.Equal(t, 1, count)
	require.NotNil(t, at)
	assert.Equal(t, now.Add(5*time.Second), *at)

	status, count, at = nextRetry(4, 5, now)
	assert.Equal(t, StatusFailed, status)
	assert.Equal(t, 5, count)
	assert.Nil(t, at)
}
