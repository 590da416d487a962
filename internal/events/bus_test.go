package events

import (
	"sync"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan CaptureStartedEvent, 1)

	unsub := bus.Subscribe(func(e CaptureStartedEvent) {
		received <- e
	})
	defer unsub()

	event := CaptureStartedEvent{
		ProfileID:  "door",
		DevicePath: "/dev/video0",
		Width:      1280,
		Height:     720,
		Format:     "MJPG",
	}
	bus.Publish(event)

	got := <-received
	if got.DevicePath != event.DevicePath || got.ProfileID != event.ProfileID {
		t.Errorf("got %+v, want %+v", got, event)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan CaptureErrorEvent, 1)

	unsub := bus.Subscribe(func(e CaptureErrorEvent) {
		received <- e
	})

	bus.Publish(CaptureErrorEvent{DevicePath: "/dev/video0"})
	<-received

	unsub()

	bus.Publish(CaptureErrorEvent{DevicePath: "/dev/video1"})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
		// Expected - no event
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	startReceived := make(chan bool, 1)
	stopReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ CaptureStartedEvent) {
		startReceived <- true
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(_ CaptureStoppedEvent) {
		stopReceived <- true
	})
	defer unsub2()

	bus.Publish(CaptureStartedEvent{ProfileID: "door"})
	<-startReceived

	select {
	case <-stopReceived:
		t.Fatal("Stop subscriber should NOT have received CaptureStartedEvent")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}

	bus.Publish(CaptureStoppedEvent{ProfileID: "door"})
	<-stopReceived
}

func TestBus_ThreadSafety(_ *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	numGoroutines := 10
	eventsPerGoroutine := 100
	expected := numGoroutines * eventsPerGoroutine

	receivedCh := make(chan bool, expected)

	unsub := bus.Subscribe(func(_ DeviceAttachedEvent) {
		receivedCh <- true
	})
	defer unsub()

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				bus.Publish(DeviceAttachedEvent{
					DevicePath: "/dev/video0",
					Timestamp:  time.Now().Format(time.RFC3339),
				})
			}
		}()
	}

	wg.Wait()

	for i := 0; i < expected; i++ {
		<-receivedCh
	}
}

func TestBus_AllEventTypes(t *testing.T) {
	bus := New()

	tests := []struct {
		name  string
		event Event
	}{
		{"CaptureStarted", CaptureStartedEvent{ProfileID: "a"}},
		{"CaptureStopped", CaptureStoppedEvent{ProfileID: "a"}},
		{"CaptureError", CaptureErrorEvent{ProfileID: "a"}},
		{"DeviceAttached", DeviceAttachedEvent{DevicePath: "/dev/video0"}},
		{"DeviceDetached", DeviceDetachedEvent{DevicePath: "/dev/video0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(_ *testing.T) {
			received := make(chan Event, 1)

			var unsub func()
			switch tt.event.(type) {
			case CaptureStartedEvent:
				unsub = bus.Subscribe(func(e CaptureStartedEvent) { received <- e })
			case CaptureStoppedEvent:
				unsub = bus.Subscribe(func(e CaptureStoppedEvent) { received <- e })
			case CaptureErrorEvent:
				unsub = bus.Subscribe(func(e CaptureErrorEvent) { received <- e })
			case DeviceAttachedEvent:
				unsub = bus.Subscribe(func(e DeviceAttachedEvent) { received <- e })
			case DeviceDetachedEvent:
				unsub = bus.Subscribe(func(e DeviceDetachedEvent) { received <- e })
			}
			defer unsub()

			bus.Publish(tt.event)
			<-received
		})
	}
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 10)

	unsub := SubscribeToChannel[CaptureStartedEvent](bus, ch)
	defer unsub()

	event := CaptureStartedEvent{ProfileID: "door", DevicePath: "/dev/video0"}
	bus.Publish(event)

	received := <-ch
	got, ok := received.(CaptureStartedEvent)
	if !ok {
		t.Fatalf("Expected CaptureStartedEvent, got %T", received)
	}
	if got.ProfileID != event.ProfileID {
		t.Errorf("ProfileID = %q, want %q", got.ProfileID, event.ProfileID)
	}
}

func TestSubscribeToChannel_NonBlocking(_ *testing.T) {
	bus := New()
	ch := make(chan any) // No buffer

	unsub := SubscribeToChannel[CaptureStoppedEvent](bus, ch)
	defer unsub()

	done := make(chan bool, 1)
	go func() {
		bus.Publish(CaptureStoppedEvent{ProfileID: "door"})
		done <- true
	}()

	<-done // Should complete without blocking
}
