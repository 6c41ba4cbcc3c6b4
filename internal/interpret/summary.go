package interpret

import "github.com/mpataki/slicer/internal/models"

// summarize counts over the input document only; the simulator slice is
// never included.
func summarize(doc *models.Document, external *orderedSet) models.Summary {
	sum := models.Summary{
		TotalSlices:         len(doc.Slices),
		TotalExternalEvents: external.len(),
	}
	events := newOrderedSet()
	screens := newOrderedSet()
	for _, sl := range doc.Slices {
		sum.TotalCommands += len(sl.Commands)
		sum.TotalReadModels += len(sl.ReadModels)
		sum.TotalSpecifications += len(sl.Specifications)
		for _, ev := range sl.Events {
			if !ev.IsExternal() {
				events.add(ev.Title)
			}
		}
		for _, sc := range sl.Screens {
			screens.add(sc.ID)
		}
	}
	sum.TotalEvents = events.len()
	sum.TotalScreens = screens.len()
	return sum
}
