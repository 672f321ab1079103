package messaging

import (
	"fmt"
	"sync"
)

// SimpleBroker implements the Broker interface.
// subscribers is a map where keys are observer IDs and values are
// channels for receiving observations.
type SimpleBroker struct {
	subscribers map[string]chan<- Observation
	mu          sync.RWMutex
}

// NewBroker creates a new observation broker.
func NewBroker() *SimpleBroker {
	return &SimpleBroker{
		subscribers: make(map[string]chan<- Observation),
	}
}

// Publish broadcasts an observation to every subscriber. Sends are
// non-blocking: a full subscriber channel is reported as an error so
// that a slow observer can never stall a trial.
func (b *SimpleBroker) Publish(obs Observation) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- obs:
			// Observation sent successfully
		default:
			return fmt.Errorf("observer %s's channel is full", id)
		}
	}

	return nil
}

// Subscribe registers an observer to receive observations.
func (b *SimpleBroker) Subscribe(id string, ch chan<- Observation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[id]; exists {
		return fmt.Errorf("observer %s is already subscribed", id)
	}

	b.subscribers[id] = ch
	return nil
}

// Unsubscribe removes an observer's subscription.
func (b *SimpleBroker) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[id]; !exists {
		return fmt.Errorf("observer %s is not subscribed", id)
	}

	delete(b.subscribers, id)
	return nil
}

// Reset drops all subscriptions.
func (b *SimpleBroker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = make(map[string]chan<- Observation)
}
