package notify

import (
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan Notification) Notification {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		return Notification{}
	}
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	b := NewBus()

	first, cancelFirst := b.Subscribe()
	defer cancelFirst()
	second, cancelSecond := b.Subscribe()
	defer cancelSecond()

	b.Success("order created")

	for _, ch := range []<-chan Notification{first, second} {
		n := recv(t, ch)
		if n.Kind != KindSuccess || n.Message != "order created" {
			t.Fatalf("unexpected notification %+v", n)
		}
		if n.ID == "" || n.At.IsZero() {
			t.Fatalf("notification missing assigned fields: %+v", n)
		}
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := NewBus()

	ch, cancel := b.Subscribe()
	cancel()

	if _, open := <-ch; open {
		t.Fatal("channel not closed on cancel")
	}

	// Publishing after cancel must not panic or block.
	b.Error("nobody listening")
}

func TestPublishNeverBlocksOnLaggingSubscriber(t *testing.T) {
	b := NewBus()

	ch, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer+10; i++ {
			b.Info("flood")
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}

	if got := len(ch); got != subscriberBuffer {
		t.Fatalf("expected %d buffered notifications, got %d", subscriberBuffer, got)
	}
}

func TestDedupKeySuppressesWithinWindow(t *testing.T) {
	b := NewBus()
	base := time.Now()
	b.now = func() time.Time { return base }

	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish(Notification{Kind: KindError, Message: "network down", DedupKey: "net-down"})
	b.Publish(Notification{Kind: KindError, Message: "network down", DedupKey: "net-down"})

	recv(t, ch)
	select {
	case n := <-ch:
		t.Fatalf("duplicate inside the window delivered: %+v", n)
	default:
	}

	// Past the window the same key flows again.
	b.now = func() time.Time { return base.Add(dedupWindow + time.Millisecond) }
	b.Publish(Notification{Kind: KindError, Message: "network down", DedupKey: "net-down"})
	if n := recv(t, ch); n.Message != "network down" {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestNoDedupWithoutKey(t *testing.T) {
	b := NewBus()

	ch, cancel := b.Subscribe()
	defer cancel()

	b.Success("saved")
	b.Success("saved")

	recv(t, ch)
	recv(t, ch)
}
