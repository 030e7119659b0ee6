package atomsite

import (
	"slices"
)

// MarkSelection sets the selection state of every atom. First everything
// is set to Ignored, then the selected atoms to Selected, then the
// targets to Target, so an atom in both lists ends up as a Target.
// Since it starts again from nothing, calling it twice with the same
// lists gives the same result as calling it once.
// If either list has an id we do not have, nothing is changed and an
// UnknownSelectionIDError is returned.
func (site *AtomSite) MarkSelection(target, selected []int64) error {
	var unknown []int64
	for _, id := range slices.Concat(selected, target) {
		if !site.Has(id) {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) != 0 {
		slices.Sort(unknown)
		return &UnknownSelectionIDError{IDs: slices.Compact(unknown)}
	}
	for i := range site.recs {
		site.recs[i].State = Ignored
	}
	for _, id := range selected {
		site.recs[site.index[id]].State = Selected
	}
	for _, id := range target {
		site.recs[site.index[id]].State = Target
	}
	return nil
}

// Selection returns the ids of atoms in a given state, in file order.
func (site *AtomSite) Selection(st State) []int64 {
	var ret []int64
	for i := range site.recs {
		if site.recs[i].State == st {
			ret = append(ret, site.recs[i].ID)
		}
	}
	return ret
}
