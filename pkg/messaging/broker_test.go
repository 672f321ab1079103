package messaging

import (
	"testing"
	"time"
)

func TestBroker(t *testing.T) {
	t.Run("test broadcast", func(t *testing.T) {
		broker := NewBroker()
		t.Cleanup(func() {
			broker.Reset()
		})
		ch1 := make(chan Observation, 1)
		ch2 := make(chan Observation, 1)

		if err := broker.Subscribe("console", ch1); err != nil {
			t.Fatalf("Failed to subscribe console: %v", err)
		}
		if err := broker.Subscribe("collector", ch2); err != nil {
			t.Fatalf("Failed to subscribe collector: %v", err)
		}

		obs := Observation{
			Kind:      KindProgress,
			Trial:     3,
			Day:       2000,
			BestKnown: 42,
			Timestamp: time.Now(),
		}

		if err := broker.Publish(obs); err != nil {
			t.Fatalf("Failed to publish observation: %v", err)
		}

		for _, ch := range []chan Observation{ch1, ch2} {
			select {
			case received := <-ch:
				if received.Trial != 3 || received.Day != 2000 || received.BestKnown != 42 {
					t.Errorf("Unexpected observation received: %+v", received)
				}
			case <-time.After(time.Second):
				t.Error("Timeout waiting for observation")
			}
		}
	})

	t.Run("test subscription management", func(t *testing.T) {
		broker := NewBroker()
		t.Cleanup(func() {
			broker.Reset()
		})
		ch := make(chan Observation, 1)

		// Test subscribe
		if err := broker.Subscribe("console", ch); err != nil {
			t.Fatalf("Failed to subscribe: %v", err)
		}

		// Test duplicate subscription
		if err := broker.Subscribe("console", ch); err == nil {
			t.Error("Expected error for duplicate subscription, got nil")
		}

		// Test unsubscribe
		if err := broker.Unsubscribe("console"); err != nil {
			t.Fatalf("Failed to unsubscribe: %v", err)
		}

		// Test unsubscribe non-existent observer
		if err := broker.Unsubscribe("console"); err == nil {
			t.Error("Expected error for unsubscribing non-existent observer, got nil")
		}
	})

	t.Run("test channel full behavior", func(t *testing.T) {
		broker := NewBroker()
		t.Cleanup(func() {
			broker.Reset()
		})
		ch := make(chan Observation, 1) // Buffer size of 1

		if err := broker.Subscribe("console", ch); err != nil {
			t.Fatalf("Failed to subscribe: %v", err)
		}

		obs := Observation{Kind: KindProgress, Day: 1}

		// Fill the channel
		if err := broker.Publish(obs); err != nil {
			t.Fatalf("Failed to publish first observation: %v", err)
		}

		// Try to send another observation to a full channel
		obs.Day = 2
		if err := broker.Publish(obs); err == nil {
			t.Error("Expected error when publishing to full channel, got nil")
		}
	})
}
