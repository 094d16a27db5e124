package wshub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BacklogReplayedToLateSubscriber(t *testing.T) {
	h := New(nil)
	h.Publish("r1", EventStatus, map[string]int{"progress": 10})
	h.Publish("r1", EventStatus, map[string]int{"progress": 25})

	ch, pending := h.Subscribe("r1", "s1", "sub1")
	require.Equal(t, 2, pending)

	first := <-ch
	second := <-ch
	assert.Equal(t, uint64(1), first.seq)
	assert.Equal(t, uint64(2), second.seq)
}

func TestHub_PublishOrderPreservedForLiveSubscriber(t *testing.T) {
	h := New(nil)
	ch, _ := h.Subscribe("r2", "s1", "sub1")

	h.Publish("r2", EventStatus, map[string]int{"progress": 10})
	h.Publish("r2", EventStatus, map[string]int{"progress": 40})

	assert.Equal(t, uint64(1), (<-ch).seq)
	assert.Equal(t, uint64(2), (<-ch).seq)
}

func TestHub_HasActiveSubscribers(t *testing.T) {
	h := New(nil)
	assert.False(t, h.HasActiveSubscribers("r3", "s1"))

	_, _ = h.Subscribe("r3", "s1", "sub1")
	assert.True(t, h.HasActiveSubscribers("r3", "s1"))
	assert.False(t, h.HasActiveSubscribers("r3", "other-session"))
}

func TestHub_DuplicateSubscribeIsIdempotent(t *testing.T) {
	h := New(nil)
	ch1, _ := h.Subscribe("r4", "s1", "sub1")
	ch2, _ := h.Subscribe("r4", "s1", "sub1")
	assert.Equal(t, ch1, ch2)
}

func TestHub_PublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	h := New(nil)
	_, _ = h.Subscribe("r5", "s1", "sub1") // never drained: its backlogSize buffer fills up

	done := make(chan struct{})
	go func() {
		for i := 0; i < backlogSize+5; i++ {
			h.Publish("r5", EventStatus, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
