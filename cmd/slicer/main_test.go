package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const todo = `{"slices": [
	{"title": "Add Item", "sliceType": "STATE_CHANGE",
		"commands": [{"id": "c", "title": "Add Item"}],
		"events": [{"id": "e", "title": "Item Added"}]},
	{"title": "Tick", "sliceType": "AUTOMATION",
		"events": [{"id": "x", "title": "Clock Ticked", "context": "EXTERNAL"}]}
]}`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SLICER_DATA_DIR", filepath.Join(dir, "data"))
	path := filepath.Join(dir, "todo.json")
	if err := os.WriteFile(path, []byte(todo), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%s %v: %v\n%s", cmd.Name(), args, err, out.String())
	}
	return out.String()
}

func TestInterpretCommand(t *testing.T) {
	path := setup(t)

	out := execute(t, newInterpretCommand(), path)
	if !strings.Contains(out, "Add Item ➜ Item Added") {
		t.Errorf("missing visual flow:\n%s", out)
	}

	out = execute(t, newInterpretCommand(), "--format", "json", "--save", path)
	if !strings.Contains(out, `"totalExternalEvents": 1`) || !strings.Contains(out, "Saved analysis #1") {
		t.Errorf("unexpected json output:\n%s", out)
	}

	out = execute(t, newHistoryCommand())
	if !strings.Contains(out, "#1 "+path) {
		t.Errorf("history missing analysis:\n%s", out)
	}

	out = execute(t, newShowCommand(), "1", "--format", "markdown")
	if !strings.Contains(out, "## 3. External Event Simulator") {
		t.Errorf("show output:\n%s", out)
	}

	out = execute(t, newDeleteCommand(), "1")
	if !strings.Contains(out, "Deleted analysis #1") {
		t.Errorf("delete output:\n%s", out)
	}
}

func TestInterpretCommand_BadFormat(t *testing.T) {
	path := setup(t)
	cmd := newInterpretCommand()
	cmd.SetArgs([]string{"--format", "html", path})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestScaffoldCommand_DryRun(t *testing.T) {
	path := setup(t)
	out := execute(t, newScaffoldCommand(), "--dry-run", "--out", "plan", path)

	for _, want := range []string{
		filepath.Join("plan", "slices", "01-add-item") + "\tAdd Item",
		filepath.Join("plan", "simulator") + "\tExternal Event Simulator",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if _, err := os.Stat("plan"); !os.IsNotExist(err) {
		t.Error("dry run should not write files")
	}
}

func TestNoRulesFlag(t *testing.T) {
	path := setup(t)
	rulesDir := filepath.Join(os.Getenv("SLICER_DATA_DIR"), "rules")
	if err := os.MkdirAll(rulesDir, 0755); err != nil {
		t.Fatal(err)
	}
	script := `function check(interp) warn("needs review") end`
	if err := os.WriteFile(filepath.Join(rulesDir, "review.lua"), []byte(script), 0644); err != nil {
		t.Fatal(err)
	}

	out := execute(t, newRootCommand(), "interpret", path)
	if !strings.Contains(out, "review: needs review") {
		t.Errorf("expected rule finding:\n%s", out)
	}

	for _, args := range [][]string{
		{"interpret", "--no-rules", path},
		{"--no-rules", "interpret", path},
	} {
		out := execute(t, newRootCommand(), args...)
		if strings.Contains(out, "needs review") {
			t.Errorf("%v: rules should be skipped:\n%s", args, out)
		}
	}

	execute(t, newRootCommand(), "history", "--no-rules")
	execute(t, newRootCommand(), "scaffold", "--no-rules", "--dry-run", "--out", "plan", path)
}
