package realtime

import (
	"sync"
	"testing"
	"time"

	"learnhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sample(userID int64) *models.Notification {
	return &models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Kind:      models.KindSystemMessage,
		Title:     "Hello",
		Body:      "World",
		CreatedAt: time.Now().UTC(),
	}
}

func TestHubDeliversToSubscriber(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe(42)
	defer unsubscribe()

	n := sample(42)
	hub.Publish(42, n)

	select {
	case got := <-ch:
		assert.Equal(t, n.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("expected a delivery")
	}
}

func TestHubFansOutToAllSessionsOfUser(t *testing.T) {
	hub := NewHub()

	ch1, unsub1 := hub.Subscribe(7)
	ch2, unsub2 := hub.Subscribe(7)
	defer unsub1()
	defer unsub2()

	hub.Publish(7, sample(7))

	for _, ch := range []<-chan *models.Notification{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("every session of the recipient should receive the event")
		}
	}
}

func TestHubDoesNotCrossUsers(t *testing.T) {
	hub := NewHub()

	mine, unsubMine := hub.Subscribe(1)
	other, unsubOther := hub.Subscribe(2)
	defer unsubMine()
	defer unsubOther()

	hub.Publish(1, sample(1))

	select {
	case <-mine:
	case <-time.After(time.Second):
		t.Fatal("owner should receive the event")
	}
	select {
	case n := <-other:
		t.Fatalf("user 2 received user 1's notification: %+v", n)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubPublishWithoutSubscribersIsNoop(t *testing.T) {
	hub := NewHub()
	// Must not block or panic.
	hub.Publish(99, sample(99))
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe(5)
	defer unsubscribe()

	// Fill the buffer and then some. The extra publishes must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(5, sample(5))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	// The buffered portion is still there.
	require.NotNil(t, <-ch)
}

func TestHubConcurrentSubscribeUnsubscribeWhilePublishing(t *testing.T) {
	hub := NewHub()

	// Sessions of one recipient churn while publishers keep delivering to the
	// same recipient. A publish must never reach a channel that is being torn
	// down; before the registry serialized delete and send this panicked with
	// a send on a closed channel.
	done := make(chan struct{})
	var publishers sync.WaitGroup
	for i := 0; i < 4; i++ {
		publishers.Add(1)
		go func() {
			defer publishers.Done()
			n := sample(1)
			for {
				select {
				case <-done:
					return
				default:
					hub.Publish(1, n)
				}
			}
		}()
	}

	var churners sync.WaitGroup
	for i := 0; i < 4; i++ {
		churners.Add(1)
		go func() {
			defer churners.Done()
			for j := 0; j < 500; j++ {
				ch, unsubscribe := hub.Subscribe(1)
				// Drain a little so senders hit both full and empty buffers.
				select {
				case <-ch:
				default:
				}
				unsubscribe()
			}
		}()
	}

	finished := make(chan struct{})
	go func() {
		churners.Wait()
		close(done)
		publishers.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(10 * time.Second):
		t.Fatal("hub deadlocked under concurrent subscribe/unsubscribe and publish")
	}
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe(3)
	unsubscribe()

	// Closed channel reads immediately with zero value.
	n, ok := <-ch
	assert.Nil(t, n)
	assert.False(t, ok)

	hub.Publish(3, sample(3))
}
