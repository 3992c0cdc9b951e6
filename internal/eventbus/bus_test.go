package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kilianp07/gridpilot/core/model"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish("hello")
	if v := <-ch; v != "hello" {
		t.Fatalf("expected hello got %v", v)
	}
	bus.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after unsubscribe")
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	bus := NewTyped[int](WithBuffer(1))
	ch := bus.Subscribe()
	bus.Publish(1)
	bus.Publish(2)
	if got := bus.Dropped(); got != 1 {
		t.Fatalf("dropped = %d, want 1", got)
	}
	if v := <-ch; v != 1 {
		t.Fatalf("got %d, want 1", v)
	}
}

func TestPublishWaitDeliversToSlowSubscriber(t *testing.T) {
	bus := NewTyped[model.TelemetryPacket](WithBuffer(0))
	ch := bus.Subscribe()
	got := make(chan model.TelemetryPacket, 1)
	go func() { got <- <-ch }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := bus.PublishWait(ctx, model.TelemetryPacket{AssetID: "a"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if p := <-got; p.AssetID != "a" {
		t.Fatalf("unexpected packet %+v", p)
	}
	if bus.Dropped() != 0 {
		t.Fatalf("blocking publish must not drop")
	}
}

func TestPublishWaitHonoursContext(t *testing.T) {
	bus := NewTyped[int](WithBuffer(0))
	bus.Subscribe()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := bus.PublishWait(ctx, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNoReplayForLateSubscribers(t *testing.T) {
	bus := NewTyped[int]()
	bus.Publish(1)
	ch := bus.Subscribe()
	select {
	case v := <-ch:
		t.Fatalf("late subscriber received %d", v)
	default:
	}
}

func TestCloseAndUnsubscribeAfterClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	bus.Unsubscribe(ch1)
	bus.Publish("ignored")
	if err := bus.PublishWait(context.Background(), "ignored"); err != nil {
		t.Fatalf("publish on closed bus: %v", err)
	}
	if _, ok := <-bus.Subscribe(); ok {
		t.Fatalf("subscribe after close should return a closed channel")
	}
}
