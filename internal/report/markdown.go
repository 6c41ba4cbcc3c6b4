package report

import (
	"fmt"
	"strings"

	"github.com/mpataki/slicer/internal/models"
)

// Markdown renders the full document: summary table, one section per slice
// with its flow, read model and behavioral tests, then the warnings.
func Markdown(interp *models.Interpretation, findings []string) string {
	var b strings.Builder
	s := interp.Summary

	b.WriteString("# Event Model\n\n")
	b.WriteString("| Slices | Commands | Events | External events | Screens | Read models | Specifications |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d | %d | %d |\n",
		s.TotalSlices, s.TotalCommands, s.TotalEvents, s.TotalExternalEvents,
		s.TotalScreens, s.TotalReadModels, s.TotalSpecifications)

	for _, sl := range interp.Slices {
		SliceMarkdown(&b, sl)
	}

	if len(interp.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range interp.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	if len(findings) > 0 {
		b.WriteString("\n## Rule findings\n\n")
		for _, f := range findings {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return b.String()
}

// SliceMarkdown writes the section for one slice.
func SliceMarkdown(b *strings.Builder, sl *models.SliceDetail) {
	fmt.Fprintf(b, "\n## %d. %s\n\n", sl.Index, sl.Title)
	fmt.Fprintf(b, "Type: `%s`\n\n", sl.SliceType)
	if sl.VisualFlow != "" {
		fmt.Fprintf(b, "**Flow:** %s\n\n", sl.VisualFlow)
	}

	for _, step := range sl.Flow {
		fmt.Fprintf(b, "- **%s** %s", step.Type, step.Title)
		if step.Description != "" {
			fmt.Fprintf(b, ": %s", step.Description)
		}
		b.WriteString("\n")
	}

	if len(sl.ExternalEvents) > 0 {
		fmt.Fprintf(b, "\nExternal events: %s\n", strings.Join(sl.ExternalEvents, ", "))
	}

	if rm := sl.ReadModel; rm != nil {
		fmt.Fprintf(b, "\n### Read model: %s\n\n", rm.Title)
		fmt.Fprintf(b, "- Inbound events (%d): %s\n", rm.InboundCount, rm.InboundEvents)
		fmt.Fprintf(b, "- Outbound events (%d): %s\n", rm.OutboundCount, rm.OutboundEvents)
		fmt.Fprintf(b, "- Screens (%d): %s\n", rm.ScreenCount, strings.Join(rm.Screens, ", "))
		if rm.IsListPattern {
			b.WriteString("- Pattern: todo/list\n")
		}
	}

	for _, test := range sl.BDDTests {
		fmt.Fprintf(b, "\n### Scenario: %s\n\n", test.Title)
		for _, c := range test.Comments {
			fmt.Fprintf(b, "> %s\n", c)
		}
		if len(test.Comments) > 0 {
			b.WriteString("\n")
		}
		writeSteps(b, "Given", test.Given)
		writeSteps(b, "When", test.When)
		writeSteps(b, "Then", test.Then)
	}
}

func writeSteps(b *strings.Builder, keyword string, steps []*models.BDDStep) {
	for i, step := range steps {
		word := keyword
		if i > 0 {
			word = "And"
		}
		fmt.Fprintf(b, "- %s %s `%s`\n", word, step.Title, step.Values)
	}
}
