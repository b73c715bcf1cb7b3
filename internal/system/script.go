package system

import (
	"fmt"
	"sort"
	"time"

	"github.com/witherbar/server/internal/bossbar"
	"github.com/witherbar/server/internal/core/event"
	coresys "github.com/witherbar/server/internal/core/system"
	"github.com/witherbar/server/internal/scripting"
	"github.com/witherbar/server/internal/world"
)

// ScriptSystem drives the Lua hooks: on_join when a player enters and
// on_tick once per tick. Phase 2 (Update), registered before the rotation so
// a script that pins a bar wins the same tick.
type ScriptSystem struct {
	engine *scripting.Engine
	ticks  bossbar.TickSource
}

func NewScriptSystem(engine *scripting.Engine, ticks bossbar.TickSource, bus *event.Bus) *ScriptSystem {
	s := &ScriptSystem{engine: engine, ticks: ticks}
	event.Subscribe(bus, func(ev event.PlayerJoined) {
		engine.OnJoin(ev.Name)
	})
	return s
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ScriptSystem) Update(_ time.Duration) {
	s.engine.OnTick(s.ticks.CurrentTick())
}

// ScriptBars exposes the bar service to scripts, addressing players by name.
// It implements scripting.BarAPI.
type ScriptBars struct {
	world *world.State
	bars  *bossbar.Service
}

func NewScriptBars(ws *world.State, bars *bossbar.Service) *ScriptBars {
	return &ScriptBars{world: ws, bars: bars}
}

func (a *ScriptBars) Show(name, text string, fraction float64) error {
	p := a.world.GetByName(name)
	if p == nil {
		return fmt.Errorf("player %s is not online", name)
	}
	if err := a.bars.Show(p, text, fraction); err != nil {
		return err
	}
	p.BarPinned = true
	return nil
}

func (a *ScriptBars) Remove(name string) bool {
	p := a.world.GetByName(name)
	if p == nil {
		return false
	}
	had := a.bars.Active(p.ID)
	a.bars.Remove(p)
	p.BarPinned = true
	return had
}

func (a *ScriptBars) Release(name string) bool {
	p := a.world.GetByName(name)
	if p == nil {
		return false
	}
	p.BarPinned = false
	return true
}

func (a *ScriptBars) Players() []string {
	var names []string
	a.world.AllPlayers(func(p *world.PlayerInfo) {
		names = append(names, p.Name)
	})
	sort.Strings(names)
	return names
}
