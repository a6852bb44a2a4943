package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishQueuesEvent(t *testing.T) {
	h := NewHub()
	h.Publish(Event{Type: "sale_created", Action: "checkout", Message: "hello"})

	msg := <-h.Broadcast
	var got Event
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "sale_created", got.Type)
	assert.Equal(t, "hello", got.Message)
}

func TestPublishNeverBlocks(t *testing.T) {
	h := NewHub()
	for i := 0; i < cap(h.Broadcast)+10; i++ {
		h.Publish(Event{Type: "stock_update"})
	}
	assert.Len(t, h.Broadcast, cap(h.Broadcast))
}

func TestNilHubPublish(t *testing.T) {
	var h *Hub
	assert.NotPanics(t, func() { h.Publish(Event{Type: "x"}) })
}

func TestRunStops(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()
	h.Stop()
	<-done
	assert.Equal(t, 0, h.ClientCount())
}

func TestJoinAndLeaveReturnAfterStop(t *testing.T) {
	h := NewHub()
	h.Stop()

	done := make(chan bool)
	go func() {
		joined := h.Join(nil)
		h.Leave(nil)
		done <- joined
	}()

	select {
	case joined := <-done:
		assert.False(t, joined)
	case <-time.After(time.Second):
		t.Fatal("Join/Leave blocked on a stopped hub")
	}
}
