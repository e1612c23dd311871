package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/poketrainer/internal/game/creature"
)

// RegisterModules installs the trainer.* helper table into L:
//
//	trainer.chance(rarity)  table chance for a rarity
//	trainer.band(chance)    "high", "medium" or "low"
//	trainer.roll()          percentile draw in [0, 100)
//	trainer.log(msg)        debug log line
//
// Precondition: L must come from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState) {
	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"chance": func(L *lua.LState) int {
			L.Push(lua.LNumber(creature.CaptureChance(L.CheckString(1))))
			return 1
		},
		"band": func(L *lua.LState) int {
			L.Push(lua.LString(creature.ChanceBand(L.CheckInt(1))))
			return 1
		},
		"roll": func(L *lua.LState) int {
			L.Push(lua.LNumber(m.roller.Percentile("script")))
			return 1
		},
		"log": func(L *lua.LState) int {
			m.logger.Debug("lua", zap.String("msg", L.CheckString(1)))
			return 0
		},
	})
	L.SetGlobal("trainer", mod)
}
