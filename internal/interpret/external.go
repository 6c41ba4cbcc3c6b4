package interpret

import (
	"strings"

	"github.com/mpataki/slicer/internal/models"
)

const (
	simulatorTitle   = "External Event Simulator"
	simulatorType    = "EXTERNAL_SIMULATOR"
	simulatorScreen  = "Event Simulator"
	simulatorCommand = "Simulate External Event"
	externalTag      = "(external)"
)

// orderedSet keeps the first-seen order of distinct strings.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (o *orderedSet) add(s string) bool {
	if _, ok := o.seen[s]; ok {
		return false
	}
	o.seen[s] = struct{}{}
	o.items = append(o.items, s)
	return true
}

func (o *orderedSet) len() int {
	return len(o.items)
}

func (o *orderedSet) list() []string {
	return append([]string(nil), o.items...)
}

func cleanExternalTitle(title string) string {
	return strings.TrimSpace(strings.ReplaceAll(title, externalTag, ""))
}

// extractExternalEvents collects distinct external event titles across all
// slices in document order.
func extractExternalEvents(slices []*models.Slice) *orderedSet {
	set := newOrderedSet()
	for _, sl := range slices {
		for _, ev := range sl.Events {
			if !ev.IsExternal() {
				continue
			}
			if t := cleanExternalTitle(ev.Title); t != "" {
				set.add(t)
			}
		}
	}
	return set
}

// simulatorSlice builds the synthetic slice that lets a reader trigger every
// external event by hand. It returns nil when there are none.
func simulatorSlice(index int, external *orderedSet) *models.SliceDetail {
	if external.len() == 0 {
		return nil
	}
	events := external.list()
	return &models.SliceDetail{
		Index:          index,
		Title:          simulatorTitle,
		SliceType:      simulatorType,
		Screens:        []string{simulatorScreen},
		Commands:       []string{simulatorCommand},
		Events:         []string{},
		ExternalEvents: events,
		ReadModels:     []string{},
		Flow: []*models.FlowStep{
			{Type: models.StepScreen, Title: simulatorScreen},
			{Type: models.StepCommand, Title: simulatorCommand},
		},
		VisualFlow: simulatorScreen + arrow + simulatorCommand + arrow + "[" + strings.Join(events, ", ") + "]",
		BDDTests:   []*models.BDDTest{},
		Synthetic:  true,
	}
}
