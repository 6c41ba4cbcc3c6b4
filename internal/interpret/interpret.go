package interpret

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"

	"github.com/mpataki/slicer/internal/models"
)

// Interpret parses text as an event-model document and interprets it.
func Interpret(text []byte) *models.Interpretation {
	doc, unreadable, problem := decode(text)
	if problem != "" {
		return &models.Interpretation{
			Slices:   []*models.SliceDetail{},
			Warnings: []string{problem},
		}
	}

	warn := &warnings{}
	syn := &synthesizer{
		events:   buildEventIndex(doc.Slices),
		elements: buildElementIndex(doc.Slices),
		warn:     warn,
	}

	details := make([]*models.SliceDetail, 0, len(doc.Slices)+1)
	for i, sl := range doc.Slices {
		ref := sliceRef{index: i + 1, title: sl.Title}
		var flow *sliceFlow
		if err, bad := unreadable[i]; bad {
			warn.add("%s: slice could not be read, its elements are ignored: %v", ref, err)
			flow = &sliceFlow{steps: []*models.FlowStep{}}
		} else {
			flow = syn.synthesize(ref, sl)
		}
		tests := normalizeSpecifications(ref, sl.Specifications, warn)

		details = append(details, &models.SliceDetail{
			Index:          ref.index,
			Title:          sl.Title,
			SliceType:      sl.SliceType,
			Screens:        titles(sl.Screens),
			Commands:       titles(sl.Commands),
			Events:         internalTitles(sl.Events),
			ExternalEvents: externalTitles(sl.Events),
			ReadModels:     titles(sl.ReadModels),
			Flow:           flow.steps,
			VisualFlow:     composeVisualFlow(flow),
			BDDTests:       tests,
			ReadModel:      flow.readModel,
		})
	}

	external := extractExternalEvents(doc.Slices)
	if sim := simulatorSlice(len(doc.Slices)+1, external); sim != nil {
		details = append(details, sim)
	}

	return &models.Interpretation{
		Summary:  summarize(doc, external),
		Slices:   details,
		Warnings: warn.list(),
	}
}

// decode applies the shape guard. The returned string is the single warning
// describing why the document was rejected. Past the guard each slice is
// decoded on its own: a slice that cannot be read is replaced by an empty
// one carrying whatever title and type it declared, and its error is
// returned by position.
func decode(text []byte) (*models.Document, map[int]error, string) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(text, &root); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, nil, "Invalid JSON: " + err.Error()
		}
		return nil, nil, `Invalid document: expected a JSON object with a "slices" list`
	}

	raw := bytes.TrimSpace(root["slices"])
	if len(raw) == 0 || raw[0] != '[' {
		return nil, nil, `Invalid document: "slices" must be a list`
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, nil, "Invalid document: " + err.Error()
	}

	doc := &models.Document{Slices: make([]*models.Slice, len(entries))}
	unreadable := make(map[int]error)
	for i, entry := range entries {
		var sl *models.Slice
		if err := json.Unmarshal(entry, &sl); err != nil {
			unreadable[i] = err
			sl = &models.Slice{
				Title:     gjson.GetBytes(entry, "title").String(),
				SliceType: gjson.GetBytes(entry, "sliceType").String(),
			}
		}
		doc.Slices[i] = sl
	}
	compact(doc)
	return doc, unreadable, ""
}

// compact replaces null slices with empty ones and drops null entries, so the
// rest of the package never sees a nil element. Slice positions are kept.
func compact(doc *models.Document) {
	for i, sl := range doc.Slices {
		if sl == nil {
			doc.Slices[i] = &models.Slice{}
			continue
		}
		sl.Screens = dropNil(sl.Screens)
		sl.Commands = dropNil(sl.Commands)
		sl.Events = dropNil(sl.Events)
		sl.ReadModels = dropNil(sl.ReadModels)
		sl.Specifications = dropNil(sl.Specifications)
		for _, els := range [][]*models.Element{sl.Screens, sl.Commands, sl.Events, sl.ReadModels} {
			for _, el := range els {
				el.Dependencies = dropNil(el.Dependencies)
			}
		}
		for _, spec := range sl.Specifications {
			spec.Comments = dropNil(spec.Comments)
			spec.Given = dropNil(spec.Given)
			spec.When = dropNil(spec.When)
			spec.Then = dropNil(spec.Then)
			for _, steps := range [][]*models.Step{spec.Given, spec.When, spec.Then} {
				for _, step := range steps {
					step.Fields = dropNil(step.Fields)
				}
			}
		}
	}
}

func dropNil[T any](items []*T) []*T {
	out := items[:0:0]
	for _, item := range items {
		if item != nil {
			out = append(out, item)
		}
	}
	return out
}

func titles(els []*models.Element) []string {
	out := make([]string, 0, len(els))
	for _, el := range els {
		out = append(out, el.Title)
	}
	return out
}

func internalTitles(events []*models.Element) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		if !ev.IsExternal() {
			out = append(out, ev.Title)
		}
	}
	return out
}

func externalTitles(events []*models.Element) []string {
	var out []string
	for _, ev := range events {
		if ev.IsExternal() {
			out = append(out, cleanExternalTitle(ev.Title))
		}
	}
	return out
}
