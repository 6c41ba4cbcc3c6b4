// Package report renders an Interpretation for people and for other tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mpataki/slicer/internal/models"
)

type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatMarkdown, FormatJSON, FormatYAML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, markdown, json or yaml)", s)
	}
}

// Write renders interp in the given format. findings are rule warnings
// reported next to, not inside, the interpretation.
func Write(w io.Writer, f Format, interp *models.Interpretation, findings []string) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(envelope{Interpretation: *interp, RuleFindings: findings})
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(envelope{Interpretation: *interp, RuleFindings: findings}); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(interp, findings))
		return err
	default:
		_, err := io.WriteString(w, Text(interp, findings))
		return err
	}
}

type envelope struct {
	models.Interpretation `yaml:",inline"`
	RuleFindings          []string `json:"ruleFindings,omitempty" yaml:"rule_findings,omitempty"`
}

// Text is a compact terminal summary: counts, one line per slice, warnings.
func Text(interp *models.Interpretation, findings []string) string {
	var b strings.Builder
	s := interp.Summary
	fmt.Fprintf(&b, "Slices: %d  Commands: %d  Events: %d  External: %d  Screens: %d  Read models: %d  Specs: %d\n",
		s.TotalSlices, s.TotalCommands, s.TotalEvents, s.TotalExternalEvents,
		s.TotalScreens, s.TotalReadModels, s.TotalSpecifications)

	if len(interp.Slices) > 0 {
		b.WriteString("\n")
	}
	for _, sl := range interp.Slices {
		fmt.Fprintf(&b, "%2d. %s [%s]\n", sl.Index, sl.Title, sl.SliceType)
		if sl.VisualFlow != "" {
			fmt.Fprintf(&b, "    %s\n", sl.VisualFlow)
		}
	}

	writeList(&b, "Warnings", interp.Warnings)
	writeList(&b, "Rule findings", findings)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}
