package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"ospreyBack/internal/models"
	"ospreyBack/internal/reqctx"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewEvent(t *testing.T) {
	ctx := reqctx.WithIDs(context.Background(), "req-9", "trace-9")
	ev, err := NewEvent(ctx, models.TopicLeadCreated, models.LeadCreatedData{Name: "Jane", ServiceType: "general"})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "req-9", ev.RequestID)

	var data models.LeadCreatedData
	require.NoError(t, json.Unmarshal(ev.Data, &data))
	assert.Equal(t, "Jane", data.Name)
}

func TestInMemoryQueueDeliversToAllSubscribers(t *testing.T) {
	q := NewInMemoryQueue(nil)
	var wg sync.WaitGroup
	wg.Add(2)
	var got atomic.Int32
	for i := 0; i < 2; i++ {
		require.NoError(t, q.Subscribe("t", func(ctx context.Context, ev models.Event) error {
			got.Add(1)
			wg.Done()
			return nil
		}))
	}

	require.NoError(t, q.Publish(context.Background(), models.Event{ID: "1", Topic: "t"}))
	wg.Wait()
	assert.EqualValues(t, 2, got.Load())
	require.NoError(t, q.Close())
}

func TestInMemoryQueueRetries(t *testing.T) {
	q := NewInMemoryQueue(nil)
	q.Backoff = func(int) time.Duration { return time.Millisecond }

	var calls atomic.Int32
	done := make(chan struct{})
	require.NoError(t, q.Subscribe("t", func(ctx context.Context, ev models.Event) error {
		n := calls.Add(1)
		if n < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}))

	require.NoError(t, q.Publish(context.Background(), models.Event{ID: "1", Topic: "t"}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not succeed after retries")
	}
	require.NoError(t, q.Close())
	assert.EqualValues(t, 3, calls.Load())
}

func TestInMemoryQueueGivesUp(t *testing.T) {
	q := NewInMemoryQueue(nil)
	q.Backoff = func(int) time.Duration { return time.Millisecond }
	var calls atomic.Int32
	require.NoError(t, q.Subscribe("t", func(ctx context.Context, ev models.Event) error {
		calls.Add(1)
		return errors.New("permanent")
	}))

	require.NoError(t, q.Publish(context.Background(), models.Event{ID: "1", Topic: "t"}))
	require.Eventually(t, func() bool { return calls.Load() == int32(DefaultMaxRetries+1) }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, q.Close())
	assert.EqualValues(t, DefaultMaxRetries+1, calls.Load())
}

func TestInMemoryQueueClosed(t *testing.T) {
	q := NewInMemoryQueue(nil)
	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Publish(context.Background(), models.Event{Topic: "t"}), ErrClosed)
	assert.ErrorIs(t, q.Subscribe("t", nil), ErrClosed)
	assert.NoError(t, q.Close())
}

func TestPublishWithoutSubscribers(t *testing.T) {
	q := NewInMemoryQueue(nil)
	defer q.Close()
	assert.NoError(t, q.Publish(context.Background(), models.Event{Topic: "nobody"}))
}

func TestRetryCount(t *testing.T) {
	assert.EqualValues(t, 0, retryCount(nil))
	assert.EqualValues(t, 2, retryCount(amqp.Table{retryHeader: int32(2)}))
	assert.EqualValues(t, 3, retryCount(amqp.Table{retryHeader: int64(3)}))
}

func TestSubscriptionQueueNames(t *testing.T) {
	assert.Equal(t, "osprey.lead.created.0", subscriptionQueue("osprey.", models.TopicLeadCreated, 0))
	assert.Equal(t, "osprey.lead.created.1", subscriptionQueue("osprey.", models.TopicLeadCreated, 1))
}
