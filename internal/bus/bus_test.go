package bus

import (
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	b := New()
	sub := b.Subscribe(TopicToast)
	defer b.Unsubscribe(sub)

	b.Publish(TopicToast, ToastEvent{Severity: "success", Message: "saved"})

	select {
	case event := <-sub.Ch():
		toast, ok := event.Payload.(ToastEvent)
		if !ok {
			t.Fatalf("payload type = %T, want ToastEvent", event.Payload)
		}
		if toast.Message != "saved" {
			t.Fatalf("message = %q, want %q", toast.Message, "saved")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestBus_PrefixMatching(t *testing.T) {
	b := New()

	viewSub := b.Subscribe("view.")
	defer b.Unsubscribe(viewSub)
	allSub := b.Subscribe("")
	defer b.Unsubscribe(allSub)

	b.Publish(TopicRowsUpdated, RowsUpdatedEvent{ViewID: "tasks-table"})
	b.Publish(TopicAuthExpired, AuthExpiredEvent{})

	select {
	case event := <-viewSub.Ch():
		if event.Topic != TopicRowsUpdated {
			t.Fatalf("topic = %q, want %q", event.Topic, TopicRowsUpdated)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for view event")
	}
	select {
	case event := <-viewSub.Ch():
		t.Fatalf("unexpected second event on view prefix: %v", event)
	case <-time.After(50 * time.Millisecond):
	}

	received := 0
	for i := 0; i < 2; i++ {
		select {
		case <-allSub.Ch():
			received++
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for catch-all event")
		}
	}
	if received != 2 {
		t.Fatalf("catch-all received %d events, want 2", received)
	}
}

func TestBus_NonBlockingPublish(t *testing.T) {
	b := New()
	sub := b.Subscribe("")
	defer b.Unsubscribe(sub)

	// Overflow the buffer without a reader; Publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			b.Publish(TopicToast, ToastEvent{Message: "x"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	b := New()
	sub := b.Subscribe("")
	b.Unsubscribe(sub)
	if _, ok := <-sub.Ch(); ok {
		t.Fatal("channel still open after Unsubscribe")
	}
	// Double unsubscribe is a no-op.
	b.Unsubscribe(sub)
	if got := b.SubscriberCount(); got != 0 {
		t.Fatalf("SubscriberCount = %d, want 0", got)
	}
}
