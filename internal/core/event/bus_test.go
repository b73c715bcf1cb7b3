package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBusDeliversAfterSwap(t *testing.T) {
	b := NewBus()
	var got []PlayerDisconnected
	Subscribe(b, func(ev PlayerDisconnected) { got = append(got, ev) })

	id := uuid.New()
	Emit(b, PlayerDisconnected{PlayerID: id, Name: "Steve", SessionID: 3})

	b.DispatchAll()
	assert.Empty(t, got, "events stay in the back buffer until swapped")

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []PlayerDisconnected{{PlayerID: id, Name: "Steve", SessionID: 3}}, got)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Len(t, got, 1, "front buffer is cleared on the following swap")
}

func TestBusRoutesByType(t *testing.T) {
	b := NewBus()
	var joined, left int
	Subscribe(b, func(PlayerJoined) { joined++ })
	Subscribe(b, func(PlayerDisconnected) { left++ })

	Emit(b, PlayerJoined{Name: "Alex"})
	Emit(b, PlayerJoined{Name: "Steve"})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 2, joined)
	assert.Equal(t, 0, left)
}
