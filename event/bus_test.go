package event_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smilemakc/simcore/event"
)

type tick struct{ n int }

func TestEmitDoesNotInvokeHandlersDirectly(t *testing.T) {
	b := event.New()
	invoked := false
	event.SubscribeToEvent(b, func(tick) { invoked = true })

	thunks := event.EmitEvent(b, tick{n: 1})
	require.False(t, invoked, "EmitEvent must defer dispatch, not call handlers inline")
	require.Len(t, thunks, 1)

	thunks[0]()
	require.True(t, invoked)
}

func TestHandlersRunInSubscriptionOrder(t *testing.T) {
	b := event.New()
	var order []int
	event.SubscribeToEvent(b, func(tick) { order = append(order, 1) })
	event.SubscribeToEvent(b, func(tick) { order = append(order, 2) })
	event.SubscribeToEvent(b, func(tick) { order = append(order, 3) })

	for _, th := range event.EmitEvent(b, tick{}) {
		th()
	}
	require.Equal(t, []int{1, 2, 3}, order)
}

func TestSubscribersAddedDuringDispatchApplyOnlyToNextEmit(t *testing.T) {
	b := event.New()
	var fired []string
	event.SubscribeToEvent(b, func(tick) {
		fired = append(fired, "first")
		event.SubscribeToEvent(b, func(tick) { fired = append(fired, "late") })
	})

	for _, th := range event.EmitEvent(b, tick{}) {
		th()
	}
	require.Equal(t, []string{"first"}, fired)

	fired = nil
	for _, th := range event.EmitEvent(b, tick{}) {
		th()
	}
	require.Equal(t, []string{"first", "late"}, fired)
}
