package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/poketrainer/internal/scripting"
)

func TestNewSandboxedState_UnsafeLibsAbsent(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	for _, name := range []string{"os", "io", "debug", "dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandboxedState_SafeLibsAvailable(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	err := scripting.RunBounded(L, 0, func() error {
		return L.DoString(`
			assert(math.floor(2.7) == 2)
			assert(string.upper("pika") == "PIKA")
			local t = {3, 1, 2}
			table.sort(t)
			assert(t[1] == 1)
		`)
	})
	assert.NoError(t, err)
}

func TestRunBounded_InfiniteLoopStops(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	err := scripting.RunBounded(L, 50, func() error { return L.DoString(`while true do end`) })
	assert.Error(t, err)
}

func TestRunBounded_BudgetIsPerCall(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	for i := 0; i < 20; i++ {
		err := scripting.RunBounded(L, 200, func() error {
			return L.DoString(`local s = 0 for i = 1, 10 do s = s + i end`)
		})
		require.NoError(t, err, "call %d", i)
	}
}

func TestProperty_RunBoundedAlwaysStopsLoops(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 500).Draw(rt, "limit")
		L := scripting.NewSandboxedState()
		defer L.Close()
		if err := scripting.RunBounded(L, limit, func() error { return L.DoString(`while true do end`) }); err == nil {
			rt.Fatalf("limit=%d: loop was not stopped", limit)
		}
	})
}
