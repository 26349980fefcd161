package mqtt

import "context"

// State is the connection state of a bus client.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Message is an inbound bus message.
type Message struct {
	Topic   string
	Payload []byte
}

// Handler processes inbound messages. Handlers for one client are invoked
// sequentially in arrival order.
type Handler func(Message)

// Publisher sends payloads to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Subscriber registers a handler for a topic. Subscriptions survive reconnects.
type Subscriber interface {
	Subscribe(topic string, h Handler) error
}

// Client is a publish/subscribe bus connection.
type Client interface {
	Publisher
	Subscriber
	// Connect establishes the connection. It never reconnects implicitly once
	// closed; call Connect again.
	Connect(ctx context.Context) error
	// Close terminates the connection. It fails with ErrNotConnected when no
	// connection was ever established.
	Close() error
	State() State
}
