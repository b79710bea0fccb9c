package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribedHandlers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var seen []Event
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		seen = append(seen, event)
		return nil
	})
	dispatcher.Subscribe(EventSLASweepCompleted, func(_ context.Context, event Event) error {
		t.Fatal("handler for unrelated event type invoked")
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: 7})
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, int64(7), seen[0].TicketID)
}

func TestDispatcherHandlerErrorsDoNotFailPublish(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	called := 0
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, _ Event) error {
		called++
		return errors.New("delivery failed")
	})
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, _ Event) error {
		called++
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated})
	require.NoError(t, err)
	assert.Equal(t, 2, called)
}

func TestDispatcherNoSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	assert.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketStatusChanged}))
}
