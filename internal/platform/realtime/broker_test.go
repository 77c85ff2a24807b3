package realtime

import (
	"testing"
	"time"
)

func receiveEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()

	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestBroker_PublishReachesTopicSubscribers(t *testing.T) {
	t.Parallel()

	broker := NewBroker(4)
	defer broker.Close()

	chat := broker.Subscribe(ChatTopic("s-1"))
	defer chat.Close()
	other := broker.Subscribe(ChatTopic("s-2"))
	defer other.Close()

	broker.Publish(t.Context(), Event{
		Topic: ChatTopic("s-1"),
		Kind:  "chat.message",
	})

	ev := receiveEvent(t, chat)
	if ev.Kind != "chat.message" {
		t.Fatalf("kind = %q, want chat.message", ev.Kind)
	}

	select {
	case ev := <-other.Events():
		t.Fatalf("unrelated topic received %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()

	broker := NewBroker(1)
	defer broker.Close()

	sub := broker.Subscribe("standings")
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			broker.Publish(t.Context(), Event{Topic: "standings", Kind: "standings.updated"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}
}

func TestBroker_CloseEndsSubscriptions(t *testing.T) {
	t.Parallel()

	broker := NewBroker(4)
	sub := broker.Subscribe("standings")

	broker.Close()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	if got := broker.SubscriberCount("standings"); got != 0 {
		t.Fatalf("subscriber count = %d, want 0", got)
	}
}

func TestBroker_UnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	broker := NewBroker(4)
	defer broker.Close()

	sub := broker.Subscribe(LeaderboardTopic("lb-1"))
	sub.Close()

	if got := broker.SubscriberCount(LeaderboardTopic("lb-1")); got != 0 {
		t.Fatalf("subscriber count = %d, want 0", got)
	}
}
