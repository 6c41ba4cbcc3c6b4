package scaffold

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mpataki/slicer/internal/models"
	"github.com/mpataki/slicer/internal/report"
)

// Entry is the planned location of one slice.
type Entry struct {
	Dir   string
	Slice *models.SliceDetail
}

type Scaffold struct {
	Path    string
	Entries []Entry
}

// Plan maps slices to directories under baseDir. Real slices go to
// slices/NN-<slug>; synthetic slices have no source element and go to
// simulator/.
func Plan(baseDir string, interp *models.Interpretation) *Scaffold {
	s := &Scaffold{Path: baseDir}
	for _, sl := range interp.Slices {
		dir := filepath.Join(baseDir, "slices", fmt.Sprintf("%02d-%s", sl.Index, Slug(sl.Title)))
		if sl.Synthetic {
			dir = filepath.Join(baseDir, "simulator")
		}
		s.Entries = append(s.Entries, Entry{Dir: dir, Slice: sl})
	}
	return s
}

// Create writes the planned layout: interpretation.json at the root and a
// README.md plus slice.json per slice.
func Create(baseDir string, interp *models.Interpretation) (*Scaffold, error) {
	s := Plan(baseDir, interp)

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scaffold directory: %w", err)
	}
	if err := writeJSON(filepath.Join(baseDir, "interpretation.json"), interp); err != nil {
		return nil, err
	}

	for _, e := range s.Entries {
		if err := os.MkdirAll(e.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", e.Dir, err)
		}
		if err := writeJSON(filepath.Join(e.Dir, "slice.json"), e.Slice); err != nil {
			return nil, err
		}
		notes := Notes(e.Slice, interp.Warnings)
		if err := os.WriteFile(filepath.Join(e.Dir, "README.md"), []byte(notes), 0644); err != nil {
			return nil, fmt.Errorf("failed to write notes for %s: %w", e.Slice.Title, err)
		}
	}

	return s, nil
}

// Notes is the prose README for one slice.
func Notes(sl *models.SliceDetail, warnings []string) string {
	var b strings.Builder
	report.SliceMarkdown(&b, sl)

	if sl.Synthetic {
		b.WriteString("\nThis slice is generated. Use it to raise the external events above by hand;\n")
		b.WriteString("they are simulated, never received from a real upstream system.\n")
	}

	prefix := fmt.Sprintf("Slice %d %q", sl.Index, sl.Title)
	var own []string
	for _, w := range warnings {
		if strings.HasPrefix(w, prefix) {
			own = append(own, w)
		}
	}
	if len(own) > 0 {
		b.WriteString("\n### Warnings\n\n")
		for _, w := range own {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return strings.TrimPrefix(b.String(), "\n")
}

// Slug folds accents and reduces a title to lowercase ASCII words joined by
// dashes.
func Slug(title string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "slice"
	}
	return b.String()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
