package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBridgeWithoutRedisDeliversLocally(t *testing.T) {
	hub := NewHub()
	bridge := NewBridge(hub, nil, "learnhub:notifications")

	ch, unsubscribe := hub.Subscribe(11)
	defer unsubscribe()

	n := sample(11)
	bridge.PublishNotification(11, n)

	select {
	case got := <-ch:
		assert.Equal(t, n.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("expected a local delivery without redis")
	}
}

func TestBridgeIgnoresEmptyPublishes(t *testing.T) {
	hub := NewHub()
	bridge := NewBridge(hub, nil, "learnhub:notifications")

	ch, unsubscribe := hub.Subscribe(11)
	defer unsubscribe()

	bridge.PublishNotification(0, sample(11))
	bridge.PublishNotification(11, nil)

	select {
	case <-ch:
		t.Fatal("zero user id or nil notification must not be delivered")
	case <-time.After(50 * time.Millisecond):
	}
}
