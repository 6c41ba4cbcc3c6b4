package interpret

import (
	"strings"

	"github.com/mpataki/slicer/internal/models"
)

const (
	listMarker            = " [todo/list]"
	listDescriptionPrefix = "Todo list: "
	completionMarker      = " ✓ completes todo"
	completionDescription = "Marks the todo item as done and removes it from the list"
	externalMarker        = " (external)"
	noneLabel             = "(none)"
)

// sliceFlow is the synthesizer output for one slice.
type sliceFlow struct {
	steps     []*models.FlowStep
	readModel *models.ReadModelDetails

	// Set only for STATE_VIEW slices with a primary read model.
	readModelTitle   string
	readModelDisplay string
	completions      []string
}

func (f *sliceFlow) add(t models.FlowStepType, title, description string) {
	f.steps = append(f.steps, &models.FlowStep{Type: t, Title: title, Description: description})
}

func (f *sliceFlow) addAll(t models.FlowStepType, els []*models.Element) {
	for _, el := range els {
		f.add(t, el.Title, el.Description)
	}
}

type synthesizer struct {
	events   *index
	elements *index
	warn     *warnings
}

func (s *synthesizer) synthesize(ref sliceRef, sl *models.Slice) *sliceFlow {
	switch ParseSliceKind(sl.SliceType) {
	case KindStateView:
		return s.stateView(ref, sl)
	case KindStateChange:
		return s.stateChange(sl)
	case KindAutomation:
		return s.automation(ref, sl)
	default:
		return s.unknown(ref, sl)
	}
}

func (s *synthesizer) stateView(ref sliceRef, sl *models.Slice) *sliceFlow {
	flow := &sliceFlow{steps: []*models.FlowStep{}}
	if len(sl.ReadModels) == 0 {
		s.warn.add("%s: STATE_VIEW slice has no read model, flow skipped", ref)
		return flow
	}

	rm := sl.ReadModels[0]
	used := make(map[string]bool)
	inbound := s.resolve(s.inboundEventIDs(rm))
	outbound := s.resolve(declaredEventIDs(rm, models.DirectionOutbound))
	screens := consumerScreens(sl.Screens, rm, used)
	isList := len(inbound) > 0 && len(outbound) > 0

	display, description := rm.Title, rm.Description
	if isList {
		display = rm.Title + listMarker
		description = listDescriptionPrefix + rm.Description
	}

	flow.addAll(models.StepEvent, inbound)
	flow.add(models.StepReadModel, display, description)
	flow.addAll(models.StepScreen, screens)

	inTitles := titles(inbound)
	outTitles := titles(outbound)
	if isList {
		for _, ev := range outbound {
			flow.add(models.StepEvent, ev.Title, completionDescription)
		}
		flow.completions = outTitles
		s.warn.add("%s: read model %q follows the todo/list pattern (added by: %s; removed by: %s)",
			ref, rm.Title, strings.Join(inTitles, ", "), strings.Join(outTitles, ", "))
	} else if len(inbound) == 0 {
		s.warn.add("%s: read model %q has no inbound events", ref, rm.Title)
	}

	// Later read models follow with the screens the earlier ones left over.
	for _, extra := range sl.ReadModels[1:] {
		flow.add(models.StepReadModel, extra.Title, extra.Description)
		flow.addAll(models.StepScreen, consumerScreens(sl.Screens, extra, used))
	}

	flow.readModelTitle = rm.Title
	flow.readModelDisplay = display
	flow.readModel = &models.ReadModelDetails{
		Title:          display,
		InboundEvents:  joinOrNone(inTitles),
		OutboundEvents: joinOrNone(outTitles),
		Screens:        titles(screens),
		IsListPattern:  isList,
		InboundCount:   len(inbound),
		OutboundCount:  len(outbound),
		ScreenCount:    len(screens),
	}
	return flow
}

// inboundEventIDs returns the read model's declared inbound event ids
// followed by every indexed event that points at the read model through an
// outbound dependency.
func (s *synthesizer) inboundEventIDs(rm *models.Element) []string {
	ids := declaredEventIDs(rm, models.DirectionInbound)
	if rm.ID == "" {
		return ids
	}
	s.events.each(func(ev *models.Element) {
		if ev.DependsOn(rm.ID, models.DirectionOutbound) {
			ids = append(ids, ev.ID)
		}
	})
	return ids
}

func declaredEventIDs(el *models.Element, dir models.Direction) []string {
	var ids []string
	for _, dep := range el.Dependencies {
		if dep.Type == models.ElementEvent && dep.Direction == dir {
			ids = append(ids, dep.ID)
		}
	}
	return ids
}

// resolve looks ids up in the event index, then the element index. Unknown
// ids are dropped and each id resolves at most once.
func (s *synthesizer) resolve(ids []string) []*models.Element {
	seen := make(map[string]bool, len(ids))
	var out []*models.Element
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		el, ok := s.events.get(id)
		if !ok {
			el, ok = s.elements.get(id)
		}
		if ok {
			out = append(out, el)
		}
	}
	return out
}

// consumerScreens returns the slice screens fed by rm that no earlier read
// model of the same slice has claimed.
func consumerScreens(screens []*models.Element, rm *models.Element, used map[string]bool) []*models.Element {
	var out []*models.Element
	for _, sc := range screens {
		if used[sc.ID] {
			continue
		}
		if sc.DependsOn(rm.ID, "") || rm.DependsOn(sc.ID, models.DirectionOutbound) {
			used[sc.ID] = true
			out = append(out, sc)
		}
	}
	return out
}

func (s *synthesizer) stateChange(sl *models.Slice) *sliceFlow {
	completing := false
	for _, els := range [][]*models.Element{sl.Commands, sl.Events} {
		for _, el := range els {
			if isCompletionTitle(el.Title) {
				completing = true
			}
		}
	}

	flow := &sliceFlow{steps: []*models.FlowStep{}}
	flow.addAll(models.StepScreen, sl.Screens)
	flow.addAll(models.StepCommand, sl.Commands)
	for _, ev := range sl.Events {
		if completing && isCompletionEvent(ev.Title) {
			flow.add(models.StepEvent, ev.Title+completionMarker, completionDescription)
			continue
		}
		flow.add(models.StepEvent, ev.Title, ev.Description)
	}
	return flow
}

func isCompletionTitle(title string) bool {
	t := strings.ToLower(title)
	return strings.Contains(t, "prepared") || strings.Contains(t, "mark") || strings.Contains(t, "complete")
}

func isCompletionEvent(title string) bool {
	t := strings.ToLower(title)
	return strings.Contains(t, "prepared") || strings.Contains(t, "complete")
}

func (s *synthesizer) automation(ref sliceRef, sl *models.Slice) *sliceFlow {
	flow := &sliceFlow{steps: []*models.FlowStep{}}
	var external []string
	for _, ev := range sl.Events {
		if ev.IsExternal() {
			flow.add(models.StepEvent, ev.Title+externalMarker, ev.Description)
			external = append(external, ev.Title)
		}
	}
	flow.addAll(models.StepCommand, sl.Commands)
	for _, ev := range sl.Events {
		if !ev.IsExternal() {
			flow.add(models.StepEvent, ev.Title, ev.Description)
		}
	}
	s.warn.add("%s: automation slice triggered by external events: %s", ref, joinOrNone(external))
	return flow
}

func (s *synthesizer) unknown(ref sliceRef, sl *models.Slice) *sliceFlow {
	s.warn.add("%s: unrecognized sliceType %q, elements listed in declared order", ref, sl.SliceType)
	flow := &sliceFlow{steps: []*models.FlowStep{}}
	flow.addAll(models.StepScreen, sl.Screens)
	flow.addAll(models.StepCommand, sl.Commands)
	flow.addAll(models.StepEvent, sl.Events)
	return flow
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return noneLabel
	}
	return strings.Join(items, ", ")
}
