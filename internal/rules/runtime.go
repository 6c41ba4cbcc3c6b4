package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/mpataki/slicer/internal/models"
)

// RuleError reports a rule script that failed to load or run.
type RuleError struct {
	Rule string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// Rule is a Lua script defining check(interpretation).
type Rule struct {
	Name string
	Path string
}

// Runtime evaluates rule scripts in a sandboxed Lua state
type Runtime struct {
	findings []string
	logs     []string
	current  string
}

func NewRuntime() *Runtime {
	return &Runtime{}
}

// Discover lists *.lua rules in dirs. A rule in an earlier dir shadows one
// with the same name in a later dir. Missing dirs are skipped.
func Discover(dirs []string) ([]Rule, error) {
	seen := make(map[string]bool)
	var found []Rule

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), ".lua")
			if seen[name] {
				continue
			}
			seen[name] = true
			found = append(found, Rule{Name: name, Path: filepath.Join(dir, entry.Name())})
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found, nil
}

// Run evaluates every rule against interp and returns their findings in rule
// order, each prefixed with the rule name.
func (r *Runtime) Run(rules []Rule, interp *models.Interpretation) ([]string, error) {
	data, err := toPlain(interp)
	if err != nil {
		return nil, err
	}

	for _, rule := range rules {
		script, err := os.ReadFile(rule.Path)
		if err != nil {
			return nil, &RuleError{Rule: rule.Name, Err: err}
		}
		if err := r.runScript(rule.Name, string(script), data); err != nil {
			return nil, &RuleError{Rule: rule.Name, Err: err}
		}
	}

	return r.findings, nil
}

func (r *Runtime) runScript(name, script string, data any) error {
	r.current = name

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // Don't load any libraries by default
	})
	defer L.Close()

	r.openSafeLibs(L)
	r.registerAPI(L)

	if err := L.DoString(script); err != nil {
		return fmt.Errorf("failed to load script: %w", err)
	}

	check := L.GetGlobal("check")
	if check.Type() != lua.LTFunction {
		return fmt.Errorf("script must define a 'check' function")
	}

	L.Push(check)
	L.Push(goToLua(L, data))
	if err := L.PCall(1, 0, nil); err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	return nil
}

// openSafeLibs loads only the deterministic, side-effect free libraries
func (r *Runtime) openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)

	L.SetGlobal("loadfile", lua.LNil)
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("load", lua.LNil)
	L.SetGlobal("loadstring", lua.LNil)
	L.SetGlobal("print", lua.LNil) // Use log() instead

	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	math := L.GetGlobal("math")
	if tbl, ok := math.(*lua.LTable); ok {
		L.SetField(tbl, "random", lua.LNil)
		L.SetField(tbl, "randomseed", lua.LNil)
	}
}

func (r *Runtime) registerAPI(L *lua.LState) {
	L.SetGlobal("warn", L.NewFunction(r.luaWarn))
	L.SetGlobal("log", L.NewFunction(r.luaLog))
}

// luaWarn implements warn(message)
func (r *Runtime) luaWarn(L *lua.LState) int {
	message := L.CheckString(1)
	r.findings = append(r.findings, r.current+": "+message)
	return 0
}

// luaLog implements log(message)
func (r *Runtime) luaLog(L *lua.LState) int {
	message := L.CheckString(1)
	r.logs = append(r.logs, r.current+": "+message)
	return 0
}

// Logs returns the messages rules passed to log().
func (r *Runtime) Logs() []string {
	return r.logs
}

// toPlain round-trips through JSON so rules see the same field names as the
// JSON output.
func toPlain(interp *models.Interpretation) (any, error) {
	data, err := json.Marshal(interp)
	if err != nil {
		return nil, err
	}
	var plain any
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, err
	}
	return plain, nil
}

// goToLua converts a decoded JSON value to a Lua value
func goToLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []any:
		tbl := L.NewTable()
		for i, item := range val {
			L.SetTable(tbl, lua.LNumber(i+1), goToLua(L, item))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		for k, item := range val {
			L.SetField(tbl, k, goToLua(L, item))
		}
		return tbl
	default:
		return lua.LString(fmt.Sprintf("%v", val))
	}
}
