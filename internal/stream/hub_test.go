package stream

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/models"
)

func TestPublishReachesSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")
	defer hub.Unsubscribe(sub)

	delivered := hub.Publish("user-1", Event{Type: "notification", Items: []models.Notification{{Type: models.NotificationOrderCreated}}})
	require.Equal(t, 1, delivered)

	ev := <-sub.C
	assert.Equal(t, "notification", ev.Type)
	require.Len(t, ev.Items, 1)
	assert.Equal(t, models.NotificationOrderCreated, ev.Items[0].Type)
}

func TestPublishWithoutSubscriberIsLost(t *testing.T) {
	hub := NewHub()

	delivered := hub.Publish("nobody", Event{Type: "notification"})
	assert.Equal(t, 0, delivered)
}

func TestPublishFansOutToAllConnections(t *testing.T) {
	hub := NewHub()
	first := hub.Subscribe("user-1")
	second := hub.Subscribe("user-1")
	other := hub.Subscribe("user-2")
	defer hub.Unsubscribe(first)
	defer hub.Unsubscribe(second)
	defer hub.Unsubscribe(other)

	delivered := hub.Publish("user-1", Event{Type: "notification"})
	assert.Equal(t, 2, delivered)
	assert.Len(t, first.C, 1)
	assert.Len(t, second.C, 1)
	assert.Len(t, other.C, 0)
}

func TestUnsubscribeRemovesConnection(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")
	require.Equal(t, 1, hub.Connections("user-1"))

	hub.Unsubscribe(sub)
	assert.Equal(t, 0, hub.Connections("user-1"))

	// Channel is closed so a stream loop drains and exits.
	_, open := <-sub.C
	assert.False(t, open)

	// Double unsubscribe is harmless.
	hub.Unsubscribe(sub)
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")
	defer hub.Unsubscribe(sub)

	// Fill the buffer without draining, then keep publishing.
	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish("user-1", Event{Type: "notification"})
	}
	assert.Len(t, sub.C, subscriberBuffer)
}

func TestConcurrentPublishAndChurn(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sub := hub.Subscribe("user-1")
				hub.Publish("user-1", Event{Type: "notification"})
				hub.Unsubscribe(sub)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.Connections("user-1"))
}
