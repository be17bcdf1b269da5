package gui

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMultiObserver_FiltersNilObservers(t *testing.T) {
	obs1 := &recordingObserver{}
	obs2 := &recordingObserver{}

	multi := NewMultiObserver(obs1, nil, obs2, nil)

	require.Len(t, multi.observers, 2)
	assert.Same(t, obs1, multi.observers[0])
	assert.Same(t, obs2, multi.observers[1])
	assert.Empty(t, NewMultiObserver(nil, nil).observers)
}

func TestMultiObserver_FanOut(t *testing.T) {
	obs1 := &recordingObserver{}
	obs2 := &recordingObserver{}
	multi := NewMultiObserver(obs1, obs2)

	op := OperationInfo{Seq: 1, Name: "send"}
	d := DeliveryInfo{Op: 1, Seq: 1, Kind: DeliverSend}
	multi.OnOperationStart(op)
	multi.OnDeliveryStart(d)
	multi.OnDeliveryEnd(d, "reacted")
	multi.OnOperationEnd(op, errors.New("boom"))

	for _, o := range []*recordingObserver{obs1, obs2} {
		assert.Equal(t, []string{"start:send", "end:send"}, o.ops)
		assert.Equal(t, []DeliveryInfo{d}, o.deliveries)
		assert.Equal(t, []string{"reacted"}, o.results)
	}
}

func TestMultiObserver_PanicIsolated(t *testing.T) {
	obs := &recordingObserver{}
	multi := NewMultiObserver(panickingObserver{}, obs)

	assert.NotPanics(t, func() { multi.OnDeliveryStart(DeliveryInfo{Seq: 7}) })
	require.Len(t, obs.deliveries, 1)
	assert.Equal(t, 7, obs.deliveries[0].Seq)
}

func TestDeliveryKind_String(t *testing.T) {
	tests := []struct {
		kind DeliveryKind
		want string
	}{
		{DeliverBubble, "bubble"},
		{DeliverDirected, "directed"},
		{DeliverReturnable, "returnable"},
		{DeliverReturn, "return"},
		{DeliverSend, "send"},
		{DeliverCall, "call"},
		{DeliverHook, "hook"},
		{DeliveryKind(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}
