package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribedHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var created, assigned []Event
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		created = append(created, e)
		return nil
	})
	d.Subscribe(EventTicketAssigned, func(_ context.Context, e Event) error {
		assigned = append(assigned, e)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t-1"}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t-2"}))

	require.Len(t, created, 2)
	require.Equal(t, "t-1", created[0].TicketID)
	require.Empty(t, assigned)
}

func TestDispatcherFailingHandlerDoesNotBlockOthers(t *testing.T) {
	d := NewInMemoryDispatcher()

	reached := false
	d.Subscribe(EventTicketSLABreached, func(context.Context, Event) error {
		return errors.New("smtp down")
	})
	d.Subscribe(EventTicketSLABreached, func(context.Context, Event) error {
		reached = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketSLABreached}))
	require.True(t, reached)
}

func TestDispatcherIgnoresUnknownEventType(t *testing.T) {
	d := NewInMemoryDispatcher()
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventType("nobody_listens")}))
}
