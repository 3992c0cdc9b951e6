// Package mqtt defines the broker contracts used by telemetry ingestion.
// infra/mqtt provides the Paho implementation and an in-memory broker.
package mqtt

// Handler receives the topic and raw payload of a message.
type Handler func(topic string, payload []byte)

// Publisher sends a payload to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Subscriber registers a handler for a topic filter. Filters may use the
// MQTT wildcards "+" and "#".
type Subscriber interface {
	Subscribe(topic string, h Handler) error
}

// Client is a connection able to publish and subscribe.
type Client interface {
	Publisher
	Subscriber
	Disconnect()
}
