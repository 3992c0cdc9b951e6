package mqtt

import (
	"errors"
	"sync"

	coremqtt "github.com/kilianp07/gridpilot/core/mqtt"
)

// MemoryBroker is an in-process broker used when no MQTT server is
// configured and in tests. Handlers run synchronously on Publish.
type MemoryBroker struct {
	mu       sync.RWMutex
	subs     []memorySub
	closed   bool
	Messages []Message
	FailOn   map[string]error
}

// Message is a payload delivered through the MemoryBroker.
type Message struct {
	Topic   string
	Payload []byte
}

type memorySub struct {
	filter string
	h      coremqtt.Handler
}

var _ coremqtt.Client = (*MemoryBroker)(nil)

// NewMemoryBroker returns an empty broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{FailOn: map[string]error{}}
}

// Subscribe implements coremqtt.Subscriber.
func (b *MemoryBroker) Subscribe(topic string, h coremqtt.Handler) error {
	if h == nil {
		return errors.New("nil handler")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return coremqtt.ErrNotConnected
	}
	b.subs = append(b.subs, memorySub{filter: topic, h: h})
	return nil
}

// Publish records the message and delivers it to matching subscribers.
func (b *MemoryBroker) Publish(topic string, payload []byte) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return coremqtt.ErrNotConnected
	}
	if err := b.FailOn[topic]; err != nil {
		b.mu.Unlock()
		return err
	}
	cp := append([]byte(nil), payload...)
	b.Messages = append(b.Messages, Message{Topic: topic, Payload: cp})
	var targets []coremqtt.Handler
	for _, s := range b.subs {
		if coremqtt.Match(s.filter, topic) {
			targets = append(targets, s.h)
		}
	}
	b.mu.Unlock()
	for _, h := range targets {
		h(topic, cp)
	}
	return nil
}

// Published returns a copy of the messages sent to topic.
func (b *MemoryBroker) Published(topic string) []Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Message
	for _, m := range b.Messages {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

// Subscriptions returns the number of active subscriptions.
func (b *MemoryBroker) Subscriptions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Disconnect drops every subscription.
func (b *MemoryBroker) Disconnect() {
	b.mu.Lock()
	b.closed = true
	b.subs = nil
	b.mu.Unlock()
}
