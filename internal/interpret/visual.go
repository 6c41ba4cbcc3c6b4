package interpret

import "strings"

const (
	arrow        = " ➜ "
	backRefToken = "↩ "
)

// composeVisualFlow renders the flow as one arrow-joined line. For list
// read models the completion events are folded into a back-reference placed
// right after the read model.
func composeVisualFlow(f *sliceFlow) string {
	if f.readModel != nil && f.readModel.IsListPattern && len(f.completions) > 0 {
		if line, ok := pivotFlow(f); ok {
			return line
		}
	}
	return strings.Join(uniqueTitles(f, nil), arrow)
}

func pivotFlow(f *sliceFlow) (string, bool) {
	skip := make(map[string]bool, len(f.completions))
	for _, t := range f.completions {
		skip[t] = true
	}
	forward := uniqueTitles(f, skip)

	at := -1
	for i, t := range forward {
		if t == f.readModelDisplay || t == f.readModelTitle {
			at = i
			break
		}
	}
	if at < 0 {
		return "", false
	}

	line := make([]string, 0, len(forward)+1)
	line = append(line, forward[:at+1]...)
	line = append(line, backRefToken+strings.Join(f.completions, ", "))
	line = append(line, forward[at+1:]...)
	return strings.Join(line, arrow), true
}

// uniqueTitles keeps the first occurrence of each title, ignoring step type.
func uniqueTitles(f *sliceFlow, skip map[string]bool) []string {
	seen := make(map[string]bool, len(f.steps))
	out := make([]string, 0, len(f.steps))
	for _, step := range f.steps {
		if seen[step.Title] || skip[step.Title] {
			continue
		}
		seen[step.Title] = true
		out = append(out, step.Title)
	}
	return out
}
