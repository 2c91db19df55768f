// Package scripting runs the NPC dialog scripts. Dialog content lives in
// Lua next to the map data, so content updates never need a server rebuild.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/coemu/server/internal/msg"
)

// Engine wraps a single gopher-lua VM holding the loaded dialog scripts.
// NPC activation arrives from every game connection task, so NpcDialog
// holds the engine's mutex for each VM call.
type Engine struct {
	mu      sync.Mutex
	vm      *lua.LState
	dialogs map[uint32]string // npc id -> lua dialog function name
	log     *zap.Logger
}

// index is the YAML sidecar mapping NPC ids to script files and entry
// function names.
type index struct {
	Dialogs []struct {
		NpcID    uint32 `yaml:"npc_id"`
		Script   string `yaml:"script"`
		Function string `yaml:"function"`
	} `yaml:"dialogs"`
}

// NewEngine loads the dialog index and every referenced script from
// scriptsDir. A missing directory yields an engine with no dialogs, not an
// error; content is optional in development.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:      vm,
		dialogs: make(map[uint32]string),
		log:     log,
	}

	idxPath := filepath.Join(scriptsDir, "dialogs.yaml")
	raw, err := os.ReadFile(idxPath)
	if os.IsNotExist(err) {
		return e, nil
	}
	if err != nil {
		vm.Close()
		return nil, fmt.Errorf("read dialog index: %w", err)
	}

	var idx index
	if err := yaml.Unmarshal(raw, &idx); err != nil {
		vm.Close()
		return nil, fmt.Errorf("parse dialog index: %w", err)
	}

	loaded := make(map[string]bool)
	for _, d := range idx.Dialogs {
		path := filepath.Join(scriptsDir, d.Script)
		if !loaded[path] {
			if err := vm.DoFile(path); err != nil {
				vm.Close()
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
			loaded[path] = true
			log.Debug("loaded lua script", zap.String("file", path))
		}
		e.dialogs[d.NpcID] = d.Function
	}
	return e, nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// HasDialog reports whether a dialog script is registered for the NPC.
func (e *Engine) HasDialog(npcID uint32) bool {
	_, ok := e.dialogs[npcID]
	return ok
}

// NpcDialog runs the NPC's dialog function and converts the returned table
// into the packet sequence. The Lua side returns:
//
//	{ text = "...", avatar = 47,
//	  options = { {id = 1, text = "..."}, {id = 255, text = "..."} },
//	  edits   = { {id = 2, text = "..."} } }
func (e *Engine) NpcDialog(npcID uint32, playerName string, optionID uint8) ([]*msg.TaskDialog, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fname, ok := e.dialogs[npcID]
	if !ok {
		return nil, nil
	}
	fn := e.vm.GetGlobal(fname)
	if fn == lua.LNil {
		return nil, fmt.Errorf("lua function %q not found", fname)
	}

	err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(npcID), lua.LString(playerName), lua.LNumber(optionID))
	if err != nil {
		return nil, fmt.Errorf("run dialog %q: %w", fname, err)
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		// nil return means the dialog ends silently (e.g. option 255).
		return nil, nil
	}
	return dialogFromTable(tbl), nil
}

func dialogFromTable(tbl *lua.LTable) []*msg.TaskDialog {
	text := lua.LVAsString(tbl.RawGetString("text"))
	avatar := uint16(lua.LVAsNumber(tbl.RawGetString("avatar")))

	d := msg.NewDialog(text)
	if opts, ok := tbl.RawGetString("options").(*lua.LTable); ok {
		opts.ForEach(func(_, v lua.LValue) {
			opt, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			id := uint8(lua.LVAsNumber(opt.RawGetString("id")))
			d.WithOption(id, lua.LVAsString(opt.RawGetString("text")))
		})
	}
	if edits, ok := tbl.RawGetString("edits").(*lua.LTable); ok {
		edits.ForEach(func(_, v lua.LValue) {
			edit, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			id := uint8(lua.LVAsNumber(edit.RawGetString("id")))
			d.WithEdit(id, lua.LVAsString(edit.RawGetString("text")))
		})
	}
	return d.Build(avatar)
}
