package interpret

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mpataki/slicer/internal/models"
)

func normalizeSpecifications(ref sliceRef, specs []*models.Specification, warn *warnings) []*models.BDDTest {
	tests := make([]*models.BDDTest, 0, len(specs))
	for _, spec := range specs {
		test := &models.BDDTest{
			Title:    spec.Title,
			Comments: make([]string, 0, len(spec.Comments)),
		}
		for _, c := range spec.Comments {
			test.Comments = append(test.Comments, c.Description)
		}
		test.Given = normalizeSteps(ref, spec.Title, "given", spec.Given, warn)
		test.When = normalizeSteps(ref, spec.Title, "when", spec.When, warn)
		test.Then = normalizeSteps(ref, spec.Title, "then", spec.Then, warn)
		tests = append(tests, test)
	}
	return tests
}

func normalizeSteps(ref sliceRef, spec, phase string, steps []*models.Step, warn *warnings) []*models.BDDStep {
	out := make([]*models.BDDStep, 0, len(steps))
	for _, step := range steps {
		values, ok := renderExamples(step.Examples)
		if ok {
			if len(step.Fields) > 0 {
				warn.add("%s: specification %q %s step %q declares both fields and examples, examples take precedence",
					ref, spec, phase, step.Title)
			}
		} else {
			values = renderFields(step.Fields)
		}
		out = append(out, &models.BDDStep{Title: step.Title, Type: step.Type, Values: values})
	}
	return out
}

// renderExamples renders a non-empty example list as "(k=v, k=v); (k=v)".
// Object keys keep the order in which they appear in the document.
func renderExamples(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	list := gjson.ParseBytes(raw)
	if !list.IsArray() {
		return "", false
	}
	items := list.Array()
	if len(items) == 0 {
		return "", false
	}

	groups := make([]string, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			groups = append(groups, stringify(item))
			continue
		}
		var pairs []string
		item.ForEach(func(key, value gjson.Result) bool {
			pairs = append(pairs, key.String()+"="+stringify(value))
			return true
		})
		groups = append(groups, "("+strings.Join(pairs, ", ")+")")
	}
	return strings.Join(groups, "; "), true
}

func renderFields(fields []*models.Field) string {
	var pairs []string
	for _, f := range fields {
		if f.Name == "" {
			continue
		}
		pairs = append(pairs, f.Name+"="+fieldValue(f.Example))
	}
	if len(pairs) == 0 {
		return noneLabel
	}
	return strings.Join(pairs, ", ")
}

// stringify renders an example value with double quotes removed. Strings
// are decoded first so escapes come out as the characters they stand for.
func stringify(v gjson.Result) string {
	s := v.Raw
	if v.Type == gjson.String {
		s = v.String()
	}
	return strings.ReplaceAll(s, `"`, "")
}

// fieldValue uses the decoded value for scalars and the JSON text for
// objects and arrays, with double quotes removed either way.
func fieldValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	v := gjson.ParseBytes(raw)
	if v.Type == gjson.Null {
		return ""
	}
	return stringify(v)
}
