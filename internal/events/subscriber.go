package events

// Subscriber consumes raw event payloads from the bus.
type Subscriber interface {
	// Subscribe returns a channel of payloads for topic along with a
	// cancel function that unsubscribes and closes the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}
