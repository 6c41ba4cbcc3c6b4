package interpret

import "github.com/mpataki/slicer/internal/models"

// index maps element ids to elements. A later element with the same id
// replaces the earlier one, but iteration keeps the order in which each id
// was first seen so reverse lookups are deterministic.
type index struct {
	order []string
	byID  map[string]*models.Element
}

func newIndex() *index {
	return &index{byID: make(map[string]*models.Element)}
}

func (ix *index) put(el *models.Element) {
	if el.ID == "" {
		return
	}
	if _, ok := ix.byID[el.ID]; !ok {
		ix.order = append(ix.order, el.ID)
	}
	ix.byID[el.ID] = el
}

func (ix *index) get(id string) (*models.Element, bool) {
	el, ok := ix.byID[id]
	return el, ok
}

func (ix *index) each(fn func(*models.Element)) {
	for _, id := range ix.order {
		fn(ix.byID[id])
	}
}

func buildEventIndex(slices []*models.Slice) *index {
	ix := newIndex()
	for _, sl := range slices {
		for _, ev := range sl.Events {
			ix.put(ev)
		}
	}
	return ix
}

func buildElementIndex(slices []*models.Slice) *index {
	ix := newIndex()
	for _, sl := range slices {
		for _, els := range [][]*models.Element{sl.Commands, sl.Events, sl.ReadModels, sl.Screens} {
			for _, el := range els {
				ix.put(el)
			}
		}
	}
	return ix
}
