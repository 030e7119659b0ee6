package atomsite

import (
	"fmt"
	"slices"
	"strings"
)

// Selector is a set of allowed (or forbidden) values for each tag. A tag
// with no values puts no constraint on atoms. A nil Selector is empty.
type Selector struct {
	sets map[Field]map[string]bool
}

// NewSelector returns an empty Selector.
func NewSelector() *Selector {
	return &Selector{sets: make(map[Field]map[string]bool)}
}

// Add puts values on the list for tag. The tag can be the full name or
// just the attribute, like "type_symbol".
func (s *Selector) Add(tag string, values ...string) error {
	f, ok := Lookup(tag)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	if s.sets == nil {
		s.sets = make(map[Field]map[string]bool)
	}
	set := s.sets[f]
	if set == nil {
		set = make(map[string]bool)
		s.sets[f] = set
	}
	for _, v := range values {
		set[v] = true
	}
	return nil
}

// ParseSelector reads terms like "type_symbol=C,N" and
// "label_comp_id=ALA", as given on a command line.
func ParseSelector(terms []string) (*Selector, error) {
	s := NewSelector()
	for _, term := range terms {
		tag, vals, ok := strings.Cut(term, "=")
		if !ok || vals == "" {
			return nil, fmt.Errorf("selection %q is not tag=value,value", term)
		}
		if err := s.Add(tag, strings.Split(vals, ",")...); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// values returns the set for a field, nil if there is none.
func (s *Selector) values(f Field) map[string]bool {
	if s == nil {
		return nil
	}
	return s.sets[f]
}

// Empty is true if the selector does not constrain anything.
func (s *Selector) Empty() bool {
	if s == nil {
		return true
	}
	for _, set := range s.sets {
		if len(set) > 0 {
			return false
		}
	}
	return true
}

// String lists the constraints, sorted, for messages.
func (s *Selector) String() string {
	if s == nil {
		return ""
	}
	var terms []string
	for f, set := range s.sets {
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		slices.Sort(vals)
		terms = append(terms, f.String()+"="+strings.Join(vals, ","))
	}
	slices.Sort(terms)
	return strings.Join(terms, " ")
}

// reject looks at the fields of an atom in the standard order and
// returns the first one that makes it fail.
func (site *AtomSite) reject(rec *Record, include, exclude *Selector) (Field, bool) {
	for f := range nField {
		if !site.present(f) {
			continue
		}
		inc, exc := include.values(f), exclude.values(f)
		if len(inc) == 0 && len(exc) == 0 {
			continue
		}
		v := rec.Get(f).String()
		if len(inc) != 0 && !inc[v] {
			return f, true
		}
		if exc[v] {
			return f, true
		}
	}
	return 0, false
}

// Filter returns a new AtomSite with the atoms that pass. An atom is kept
// if, for every tag it has, its value is on the include list (or there is
// no include list for the tag) and not on the exclude list. Atoms keep
// their selection state and group. The input is not changed.
// An empty input gives an empty result with an ErrNoAtoms warning.
func (site *AtomSite) Filter(include, exclude *Selector) *AtomSite {
	ret := site.empty(len(site.recs))
	if len(site.recs) == 0 {
		ret.warn(ErrNoAtoms)
		return ret
	}
	for i := range site.recs {
		if _, bad := site.reject(&site.recs[i], include, exclude); bad {
			continue
		}
		ret.index[site.recs[i].ID] = len(ret.recs)
		ret.ids = append(ret.ids, site.recs[i].ID)
		ret.recs = append(ret.recs, site.recs[i])
	}
	return ret
}

// Rejection says which tag, if any, stops atom id getting through a
// filter. ok is false if the atom passes or is not there.
func (site *AtomSite) Rejection(id int64, include, exclude *Selector) (tag string, ok bool) {
	i, found := site.index[id]
	if !found {
		return "", false
	}
	if f, bad := site.reject(&site.recs[i], include, exclude); bad {
		return f.String(), true
	}
	return "", false
}
