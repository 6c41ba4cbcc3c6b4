package interpret

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mpataki/slicer/internal/models"
)

const todoDocument = `{
	"slices": [
		{
			"title": "Add Item",
			"sliceType": "STATE_CHANGE",
			"screens": [{"id": "s1", "title": "Todo Screen"}],
			"commands": [{"id": "c1", "title": "Add Item"}],
			"events": [{"id": "e1", "title": "Item Added", "dependencies": [
				{"type": "READMODEL", "direction": "OUTBOUND", "id": "r1"}
			]}]
		},
		{
			"title": "Complete Item",
			"sliceType": "STATE_CHANGE",
			"commands": [{"id": "c2", "title": "Mark Item Done"}],
			"events": [{"id": "e2", "title": "Item Completed", "description": "raw"}]
		},
		{
			"title": "Open Items",
			"sliceType": "STATE_VIEW",
			"screens": [{"id": "s2", "title": "Items Screen", "dependencies": [
				{"type": "READMODEL", "direction": "INBOUND", "id": "r1"}
			]}],
			"readmodels": [{"id": "r1", "title": "Open Items", "description": "items", "dependencies": [
				{"type": "EVENT", "direction": "OUTBOUND", "id": "e2"}
			]}]
		}
	]
}`

func TestInterpret_InvalidJSON(t *testing.T) {
	got := Interpret([]byte(`{"slices": [`))
	if len(got.Slices) != 0 {
		t.Errorf("expected no slices, got %d", len(got.Slices))
	}
	if len(got.Warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %v", got.Warnings)
	}
	if !strings.HasPrefix(got.Warnings[0], "Invalid JSON: ") {
		t.Errorf("unexpected warning %q", got.Warnings[0])
	}
}

func TestInterpret_StructuralFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing slices", `{"title": "x"}`},
		{"slices not a list", `{"slices": {"a": 1}}`},
		{"slices null", `{"slices": null}`},
		{"root is array", `[1, 2]`},
		{"root is null", `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpret([]byte(tt.input))
			if got.Slices == nil || len(got.Slices) != 0 {
				t.Errorf("expected empty non-nil slices, got %v", got.Slices)
			}
			if len(got.Warnings) != 1 {
				t.Fatalf("expected one warning, got %v", got.Warnings)
			}
			if !strings.HasPrefix(got.Warnings[0], "Invalid document") {
				t.Errorf("unexpected warning %q", got.Warnings[0])
			}
		})
	}
}

func TestInterpret_ListPattern(t *testing.T) {
	got := Interpret([]byte(todoDocument))

	view := got.Slices[2]
	if view.ReadModel == nil || !view.ReadModel.IsListPattern {
		t.Fatalf("expected list pattern, got %+v", view.ReadModel)
	}
	if view.ReadModel.InboundEvents != "Item Added" {
		t.Errorf("inbound = %q", view.ReadModel.InboundEvents)
	}
	if view.ReadModel.OutboundEvents != "Item Completed" {
		t.Errorf("outbound = %q", view.ReadModel.OutboundEvents)
	}
	if !reflect.DeepEqual(view.ReadModel.Screens, []string{"Items Screen"}) {
		t.Errorf("screens = %v", view.ReadModel.Screens)
	}

	want := "Item Added ➜ Open Items [todo/list] ➜ ↩ Item Completed ➜ Items Screen"
	if view.VisualFlow != want {
		t.Errorf("visual flow\n got: %q\nwant: %q", view.VisualFlow, want)
	}

	var found bool
	for _, w := range got.Warnings {
		if strings.Contains(w, "added by: Item Added") && strings.Contains(w, "removed by: Item Completed") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected list pattern warning, got %v", got.Warnings)
	}

	last := view.Flow[len(view.Flow)-1]
	if last.Type != models.StepEvent || last.Title != "Item Completed" || last.Description != completionDescription {
		t.Errorf("expected completion step last, got %+v", last)
	}
}

func TestInterpret_StateViewWithoutReadModel(t *testing.T) {
	got := Interpret([]byte(`{"slices": [{"title": "Empty View", "sliceType": "STATE_VIEW",
		"screens": [{"id": "s", "title": "Screen"}]}]}`))

	if len(got.Warnings) != 1 || !strings.Contains(got.Warnings[0], `"Empty View"`) {
		t.Fatalf("expected warning naming the slice, got %v", got.Warnings)
	}
	for _, step := range got.Slices[0].Flow {
		if step.Type == models.StepReadModel {
			t.Errorf("unexpected read model step %+v", step)
		}
	}
	if got.Slices[0].ReadModel != nil {
		t.Errorf("expected no read model details")
	}
}

func TestInterpret_EmptyInboundWarning(t *testing.T) {
	got := Interpret([]byte(`{"slices": [{"title": "V", "sliceType": "STATE_VIEW",
		"readmodels": [{"id": "r", "title": "Lonely"}]}]}`))

	if len(got.Warnings) != 1 || !strings.Contains(got.Warnings[0], "no inbound events") {
		t.Fatalf("unexpected warnings %v", got.Warnings)
	}
	d := got.Slices[0].ReadModel
	if d.InboundEvents != noneLabel || d.OutboundEvents != noneLabel || d.IsListPattern {
		t.Errorf("unexpected details %+v", d)
	}
	if got.Slices[0].VisualFlow != "Lonely" {
		t.Errorf("visual flow = %q", got.Slices[0].VisualFlow)
	}
}

func TestInterpret_DistinctEventTitles(t *testing.T) {
	got := Interpret([]byte(`{"slices": [
		{"title": "A", "sliceType": "STATE_CHANGE", "events": [
			{"id": "1", "title": "Paid"},
			{"id": "x1", "title": "Webhook", "context": "EXTERNAL"}
		]},
		{"title": "B", "sliceType": "STATE_CHANGE", "events": [
			{"id": "2", "title": "Paid"},
			{"id": "3", "title": "paid"},
			{"id": "x2", "title": "Webhook (external)", "context": "EXTERNAL"}
		]}
	]}`))

	if got.Summary.TotalEvents != 2 {
		t.Errorf("TotalEvents = %d, want 2", got.Summary.TotalEvents)
	}
	if got.Summary.TotalExternalEvents != 1 {
		t.Errorf("TotalExternalEvents = %d, want 1", got.Summary.TotalExternalEvents)
	}
	if got.Summary.TotalSlices != 2 {
		t.Errorf("TotalSlices = %d, want 2", got.Summary.TotalSlices)
	}

	if len(got.Slices) != 3 {
		t.Fatalf("expected simulator slice, got %d slices", len(got.Slices))
	}
	sim := got.Slices[2]
	if sim.Index != 3 || !sim.Synthetic || sim.SliceType != simulatorType {
		t.Errorf("unexpected simulator slice %+v", sim)
	}
	if !reflect.DeepEqual(sim.ExternalEvents, []string{"Webhook"}) {
		t.Errorf("external events = %v", sim.ExternalEvents)
	}
	if sim.VisualFlow != "Event Simulator ➜ Simulate External Event ➜ [Webhook]" {
		t.Errorf("simulator flow = %q", sim.VisualFlow)
	}
}

func TestInterpret_NoSimulatorWithoutExternalEvents(t *testing.T) {
	got := Interpret([]byte(todoDocument))
	if len(got.Slices) != 3 {
		t.Fatalf("expected 3 slices, got %d", len(got.Slices))
	}
	for i, sl := range got.Slices {
		if sl.Index != i+1 {
			t.Errorf("slice %d has index %d", i, sl.Index)
		}
	}
}

func TestInterpret_Summary(t *testing.T) {
	got := Interpret([]byte(`{"slices": [
		{"title": "A", "sliceType": "STATE_CHANGE",
			"screens": [{"id": "s1", "title": "One"}],
			"commands": [{"id": "c1", "title": "Do"}, {"id": "c2", "title": "Do"}],
			"specifications": [{"title": "spec"}]},
		{"title": "B", "sliceType": "STATE_VIEW",
			"screens": [{"id": "s1", "title": "One again"}, {"id": "s2", "title": "Two"}],
			"readmodels": [{"id": "r1", "title": "R"}, {"id": "r2", "title": "R"}]}
	]}`))

	want := models.Summary{
		TotalSlices:         2,
		TotalCommands:       2,
		TotalScreens:        2,
		TotalReadModels:     2,
		TotalSpecifications: 1,
	}
	if got.Summary != want {
		t.Errorf("summary\n got: %+v\nwant: %+v", got.Summary, want)
	}
}

func TestInterpret_Deterministic(t *testing.T) {
	doc := []byte(todoDocument)
	first := Interpret(doc)
	second := Interpret(doc)
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical interpretations for identical input")
	}
}

func TestInterpret_NullEntriesTolerated(t *testing.T) {
	got := Interpret([]byte(`{"slices": [null, {"title": "X", "sliceType": "STATE_CHANGE",
		"commands": [null, {"id": "c", "title": "C"}]}]}`))
	if len(got.Slices) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(got.Slices))
	}
	if got.Slices[1].Index != 2 || got.Slices[1].VisualFlow != "C" {
		t.Errorf("unexpected slice %+v", got.Slices[1])
	}
}

func TestInterpret_ScalarIDsAndTitles(t *testing.T) {
	got := Interpret([]byte(`{"slices": [
		{"title": "Place", "sliceType": "STATE_CHANGE",
			"commands": [{"id": 42, "title": "Place Order"}],
			"events": [{"id": 7, "title": 2024, "dependencies": [{"type": "READMODEL", "direction": "OUTBOUND", "id": 9}]}]}
	]}`))
	if len(got.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", got.Warnings)
	}
	if got.Slices[0].VisualFlow != "Place Order ➜ 2024" {
		t.Errorf("visual flow = %q", got.Slices[0].VisualFlow)
	}
}

func TestInterpret_UnreadableSliceKeepsOthers(t *testing.T) {
	got := Interpret([]byte(`{"slices": [
		{"title": "Place", "sliceType": "STATE_CHANGE",
			"commands": [{"id": "c1", "title": "Place Order"}],
			"events": [{"id": "e1", "title": "Order Placed"}]},
		{"title": "Broken", "sliceType": "STATE_CHANGE",
			"commands": [{"id": {"nested": true}, "title": "Bad"}]},
		"not a slice",
		{"title": "Ship", "sliceType": "STATE_CHANGE",
			"commands": [{"id": "c2", "title": "Ship Order"}]}
	]}`))

	if len(got.Slices) != 4 {
		t.Fatalf("expected 4 slices, got %d", len(got.Slices))
	}
	if got.Slices[0].VisualFlow != "Place Order ➜ Order Placed" {
		t.Errorf("first slice flow = %q", got.Slices[0].VisualFlow)
	}
	if got.Slices[3].VisualFlow != "Ship Order" {
		t.Errorf("last slice flow = %q", got.Slices[3].VisualFlow)
	}

	broken := got.Slices[1]
	if broken.Title != "Broken" || broken.SliceType != "STATE_CHANGE" || len(broken.Flow) != 0 {
		t.Errorf("unexpected placeholder %+v", broken)
	}
	if got.Summary.TotalSlices != 4 || got.Summary.TotalCommands != 2 {
		t.Errorf("unexpected summary %+v", got.Summary)
	}

	if len(got.Warnings) != 2 {
		t.Fatalf("expected two warnings, got %v", got.Warnings)
	}
	if !strings.HasPrefix(got.Warnings[0], `Slice 2 "Broken": slice could not be read`) {
		t.Errorf("warning = %q", got.Warnings[0])
	}
	if !strings.HasPrefix(got.Warnings[1], `Slice 3 "": slice could not be read`) {
		t.Errorf("warning = %q", got.Warnings[1])
	}
}

func TestInterpret_ScreensClaimedByEarlierReadModel(t *testing.T) {
	got := Interpret([]byte(`{"slices": [
		{"title": "Feed", "sliceType": "STATE_CHANGE",
			"events": [{"id": "e1", "title": "Posted", "dependencies": [
				{"type": "READMODEL", "direction": "OUTBOUND", "id": "r1"}]}]},
		{"title": "Boards", "sliceType": "STATE_VIEW",
			"screens": [
				{"id": "s1", "title": "Wall", "dependencies": [{"type": "READMODEL", "direction": "INBOUND", "id": "r1"}]},
				{"id": "s2", "title": "Stats", "dependencies": [{"type": "READMODEL", "direction": "INBOUND", "id": "r2"}]}
			],
			"readmodels": [
				{"id": "r1", "title": "Timeline"},
				{"id": "r2", "title": "Counters", "dependencies": [
					{"type": "SCREEN", "direction": "OUTBOUND", "id": "s1"}]}
			]}
	]}`))

	view := got.Slices[1]
	want := "Posted ➜ Timeline ➜ Wall ➜ Counters ➜ Stats"
	if view.VisualFlow != want {
		t.Errorf("visual flow\n got: %q\nwant: %q", view.VisualFlow, want)
	}
	var screens []string
	for _, step := range view.Flow {
		if step.Type == models.StepScreen {
			screens = append(screens, step.Title)
		}
	}
	if !reflect.DeepEqual(screens, []string{"Wall", "Stats"}) {
		t.Errorf("screen steps = %v", screens)
	}
	if view.ReadModel.Title != "Timeline" || !reflect.DeepEqual(view.ReadModel.Screens, []string{"Wall"}) {
		t.Errorf("read model details = %+v", view.ReadModel)
	}
}
