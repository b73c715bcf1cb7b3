package system

import (
	"time"

	"github.com/witherbar/server/internal/core/event"
	coresys "github.com/witherbar/server/internal/core/system"
)

// EventDispatchSystem swaps the event bus buffers and delivers the events
// emitted since the previous swap. Phase 1 (PreUpdate), so disconnects seen by
// the input system are handled before the bar sweep runs.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
