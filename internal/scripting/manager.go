package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/poketrainer/internal/game/creature"
	"github.com/cory-johannsen/poketrainer/internal/game/dice"
)

// GlobalScope is the reserved scope for shared scripts. CallHook falls back
// to it when the requested scope has no VM or does not define the hook.
const GlobalScope = "__global__"

// HookCaptureChance is called as capture_chance(id, name, rarity, chance) and
// may return a replacement chance.
const HookCaptureChance = "capture_chance"

type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed VM per scope. Scopes are creature types, so
// content can ship per-type capture rules next to a global default.
//
// Manager is safe for concurrent use; calls into one VM are serialized.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager with no scopes loaded.
//
// Precondition: roller and logger must be non-nil.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// LoadScope creates a VM for scope and runs every *.lua file in scriptDir in
// lexicographic order. A previous VM for the scope is replaced.
//
// Precondition: scope must be non-empty; scriptDir must be readable.
func (m *Manager) LoadScope(scope, scriptDir string, instLimit int) error {
	return m.loadInto(strings.ToLower(scope), scriptDir, instLimit)
}

// LoadGlobal loads scriptDir into GlobalScope.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(GlobalScope, scriptDir, instLimit)
}

// LoadTree loads scriptDir into GlobalScope and each immediate subdirectory
// into the scope of the same name. A missing scriptDir is not an error.
func (m *Manager) LoadTree(scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if os.IsNotExist(err) {
		m.logger.Info("scripting: no script dir", zap.String("dir", scriptDir))
		return nil
	}
	if err != nil {
		return fmt.Errorf("scripting: reading %q: %w", scriptDir, err)
	}
	if err := m.LoadGlobal(scriptDir, instLimit); err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := m.LoadScope(e.Name(), filepath.Join(scriptDir, e.Name()), instLimit); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(files)

	L := NewSandboxedState()
	m.RegisterModules(L)
	for _, path := range files {
		err := RunBounded(L, instLimit, func() error { return L.DoFile(path) })
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()

	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.logger.Debug("scripting: scope loaded", zap.String("scope", key), zap.Int("files", len(files)))
	return nil
}

// Scopes returns the loaded scope names, sorted.
func (m *Manager) Scopes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.vms))
	for k := range m.vms {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CallHook calls the global function hook in scope's VM. If that VM is
// missing or does not define hook, GlobalScope is tried. It returns
// (LNil, nil) if no VM defines the hook. Lua runtime errors, including a
// spent opcode budget, are logged and swallowed.
//
// Postcondition: Returns the hook's first return value, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	key := strings.ToLower(scope)
	m.mu.RLock()
	candidates := make([]*vm, 0, 2)
	if v, ok := m.vms[key]; ok {
		candidates = append(candidates, v)
	}
	if g, ok := m.vms[GlobalScope]; ok && key != GlobalScope {
		candidates = append(candidates, g)
	}
	m.mu.RUnlock()

	for _, v := range candidates {
		if ret, found := m.call(v, scope, hook, args); found {
			return ret, nil
		}
	}
	return lua.LNil, nil
}

// call runs hook in v. found is false when v does not define hook.
func (m *Manager) call(v *vm, scope, hook string, args []lua.LValue) (ret lua.LValue, found bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fn := v.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, false
	}
	err := RunBounded(v.L, v.limit, func() error {
		return v.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, true
	}
	ret = v.L.Get(-1)
	v.L.Pop(1)
	return ret, true
}

// CaptureChance runs the capture_chance hook in the creature's type scope.
// A missing hook or a non-numeric result keeps base.
func (m *Manager) CaptureChance(c creature.Creature, base int) int {
	ret, _ := m.CallHook(c.Type, HookCaptureChance,
		lua.LNumber(c.ID),
		lua.LString(c.Name),
		lua.LString(c.Rarity),
		lua.LNumber(base),
	)
	n, ok := ret.(lua.LNumber)
	if !ok {
		return base
	}
	return int(n)
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
		delete(m.vms, k)
	}
}
