// Package atomsite holds the atoms of a structure, indexed by their id.
// It is built from the _atom_site category of an mmcif table. Atoms can
// then be filtered by the values of their attributes and marked as the
// target of some calculation, selected (around the target) or ignored.
package atomsite

import (
	"fmt"
	"io"
	"log"
	"slices"
	"strings"

	"github.com/andrew-torda/rotag/pdb/cifval"
	"github.com/andrew-torda/rotag/pdb/mmcif"
)

// State says what an atom is doing in a selection.
type State uint8

const (
	Ignored State = iota
	Selected
	Target
)

// String gives the name of the state.
func (s State) String() string {
	switch s {
	case Selected:
		return "Selected"
	case Target:
		return "Target"
	}
	return "Ignored"
}

// Code is the one letter form written in files.
func (s State) Code() string { return s.String()[:1] }

// ParseState takes the one letter code or the name, in any case.
func ParseState(s string) (State, bool) {
	for _, st := range []State{Ignored, Selected, Target} {
		if strings.EqualFold(s, st.Code()) || strings.EqualFold(s, st.String()) {
			return st, true
		}
	}
	return Ignored, false
}

// Record is one atom. The values from the file are in a fixed array, so
// there is no looking up of tag strings.
type Record struct {
	ID    int64
	vals  [nStandard]cifval.Value
	State State
	Group cifval.Value // given by the caller, we do not look at it
}

// Get returns the value of a field. Fields that were not in the file
// are null.
func (r *Record) Get(f Field) cifval.Value {
	switch {
	case f == SelectionState:
		return cifval.Text(r.State.Code())
	case f == SelectionGroup:
		return r.Group
	case f >= nField:
		return cifval.Null()
	}
	return r.vals[f]
}

// AtomSite is the set of atoms, kept in file order. Only one caller
// should change one at a time.
type AtomSite struct {
	ids      []int64
	recs     []Record
	index    map[int64]int // id to position in recs
	declared [nStandard]bool
	warnings []error
	logger   *log.Logger
}

func newSite() *AtomSite {
	return &AtomSite{
		index:  make(map[int64]int),
		logger: log.New(io.Discard, "", 0),
	}
}

// Build makes an AtomSite from the _atom_site tags of a table. Tags that
// are not there are left null. If the table has rotag_selection_state or
// rotag_selection_group columns, they are read, so a file we wrote can be
// read back. Otherwise every atom starts off ignored.
// Two atoms with the same id are an error and nothing is returned.
// A table with no ids at all gives an empty AtomSite and a warning, since
// it might just be a file of parameters.
func Build(tbl *mmcif.Table) (*AtomSite, error) {
	site := newSite()
	if !tbl.Has(ID.String()) {
		site.warn(&mmcif.MissingCategoryWarning{Category: strings.TrimSuffix(prefix, ".")})
		return site, nil
	}
	var cols [nStandard][]cifval.Value
	for f := range nStandard {
		if tbl.Has(fieldNames[f]) {
			site.declared[f] = true
			cols[f] = tbl.Values(fieldNames[f])
		}
	}
	states := tbl.Values(SelectionState.String())
	groups := tbl.Values(SelectionGroup.String())

	n := tbl.Length(ID.String())
	site.ids = make([]int64, 0, n)
	site.recs = make([]Record, 0, n)
	for i := range n {
		var rec Record
		for f := range nStandard {
			if site.declared[f] {
				rec.vals[f] = cols[f][i]
			}
		}
		if states != nil {
			st, ok := ParseState(states[i].String())
			if !ok && !states[i].IsNull() {
				return nil, fmt.Errorf("%s row %d: %q is not a selection state",
					SelectionState, i, states[i].String())
			}
			rec.State = st
		}
		if groups != nil {
			rec.Group = groups[i]
		}
		if err := site.add(rec, i); err != nil {
			return nil, err
		}
	}
	return site, nil
}

// add puts a record on the end. The id comes from the id field.
func (site *AtomSite) add(rec Record, row int) error {
	id, err := rec.vals[ID].Int()
	if err != nil {
		return fmt.Errorf("%s row %d: %w", ID, row, err)
	}
	if j, dup := site.index[id]; dup {
		return &DuplicateIDError{ID: id, Rows: [2]int{j, row}}
	}
	rec.ID = id
	site.index[id] = len(site.recs)
	site.ids = append(site.ids, id)
	site.recs = append(site.recs, rec)
	return nil
}

// SetLogger says where warnings go. By default they are thrown away, but
// are still kept in Warnings().
func (site *AtomSite) SetLogger(l *log.Logger) {
	if l != nil {
		site.logger = l
	}
}

func (site *AtomSite) warn(err error) {
	site.warnings = append(site.warnings, err)
	site.logger.Println("warning:", err)
}

// Warnings returns the non-fatal problems from building or filtering.
func (site *AtomSite) Warnings() []error { return site.warnings }

// Len is the number of atoms.
func (site *AtomSite) Len() int { return len(site.recs) }

// IDs returns the atom ids in file order.
func (site *AtomSite) IDs() []int64 { return slices.Clone(site.ids) }

// Has is true if there is an atom with this id.
func (site *AtomSite) Has(id int64) bool {
	_, ok := site.index[id]
	return ok
}

// Record returns a copy of the atom with this id.
func (site *AtomSite) Record(id int64) (Record, bool) {
	i, ok := site.index[id]
	if !ok {
		return Record{}, false
	}
	return site.recs[i], true
}

// present is true for the fields an atom has. That is the ones that
// were in the file, plus the selection fields, which every atom has.
func (site *AtomSite) present(f Field) bool {
	if f == SelectionState || f == SelectionGroup {
		return true
	}
	return f < nField && site.declared[f]
}

// Fields returns the fields the atoms have, in the standard order.
func (site *AtomSite) Fields() []Field {
	var ret []Field
	for f := range nField {
		if site.present(f) {
			ret = append(ret, f)
		}
	}
	return ret
}

// Value returns the value of tag for atom id. An unknown atom or tag
// gives a null.
func (site *AtomSite) Value(id int64, tag string) cifval.Value {
	f, ok := Lookup(tag)
	i, ok2 := site.index[id]
	if !ok || !ok2 || !site.present(f) {
		return cifval.Null()
	}
	return site.recs[i].Get(f)
}

// Values returns the column for tag, in the order of the atoms. An
// unknown tag gives an empty slice.
func (site *AtomSite) Values(tag string) []cifval.Value {
	f, ok := Lookup(tag)
	if !ok || !site.present(f) {
		return nil
	}
	ret := make([]cifval.Value, len(site.recs))
	for i := range site.recs {
		ret[i] = site.recs[i].Get(f)
	}
	return ret
}

// State returns the selection state of an atom.
func (site *AtomSite) State(id int64) (State, bool) {
	i, ok := site.index[id]
	if !ok {
		return Ignored, false
	}
	return site.recs[i].State, true
}

// SetGroup stores a label for an atom. We never look at it.
func (site *AtomSite) SetGroup(id int64, label string) error {
	i, ok := site.index[id]
	if !ok {
		return &UnknownSelectionIDError{IDs: []int64{id}}
	}
	site.recs[i].Group = cifval.Text(label)
	return nil
}

// empty returns a site with no atoms, but the same fields and logger.
func (site *AtomSite) empty(n int) *AtomSite {
	ret := newSite()
	ret.declared = site.declared
	ret.logger = site.logger
	ret.ids = make([]int64, 0, n)
	ret.recs = make([]Record, 0, n)
	return ret
}
