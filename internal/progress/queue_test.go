package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_PublishAndTryNext(t *testing.T) {
	q := NewQueue()

	ok := q.Publish(Event{Kind: KindStatus, Message: "fetching records"})
	require.True(t, ok)

	e, ok := q.TryNext()
	require.True(t, ok)
	assert.Equal(t, KindStatus, e.Kind)
	assert.Equal(t, "fetching records", e.Message)
}

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue()

	for i := 1; i <= 3; i++ {
		q.Publish(Event{Kind: KindRecord, Current: i, Total: 3})
	}

	for i := 1; i <= 3; i++ {
		e, ok := q.TryNext()
		require.True(t, ok)
		assert.Equal(t, i, e.Current)
	}
}

func TestQueue_TryNextEmpty(t *testing.T) {
	q := NewQueue()

	_, ok := q.TryNext()
	assert.False(t, ok)
}

func TestQueue_WaitSignalsAvailability(t *testing.T) {
	q := NewQueue()

	go q.Publish(Event{Kind: KindStatus, Message: "go"})

	select {
	case <-q.Wait():
		e, ok := q.TryNext()
		require.True(t, ok)
		assert.Equal(t, "go", e.Message)
	case <-time.After(time.Second):
		t.Fatal("Wait never signaled")
	}
}

func TestQueue_PublishAfterClose(t *testing.T) {
	q := NewQueue()
	q.Close()

	ok := q.Publish(Event{Kind: KindStatus})
	assert.False(t, ok)
	assert.True(t, q.Closed())
}

func TestQueue_CloseIsIdempotent(t *testing.T) {
	q := NewQueue()
	q.Close()
	q.Close()
}

func TestQueue_CloseWakesWaiter(t *testing.T) {
	q := NewQueue()

	woke := make(chan struct{})
	go func() {
		<-q.Wait()
		close(woke)
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("Close did not wake waiter")
	}
}
