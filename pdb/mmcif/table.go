package mmcif

import (
	"fmt"
	"slices"

	"github.com/andrew-torda/rotag/pdb/cifval"
)

// column is everything we have for one tag.
type column struct {
	vals     []cifval.Value
	category string
	order    int  // position of the attribute in its category
	inLoop   bool // the category was a loop
}

// Table stores values by tag. It is built once from data blocks and not
// changed after that, so it can be read from anywhere.
type Table struct {
	cols   map[string]*column
	tags   []string // in the order we first saw them
	catLen map[string]int
}

// NewTable puts the categories of one or more blocks into a Table. If a
// category turns up more than once, its rows are added on the end. An
// attribute missing from one of the pieces gets nulls for those rows,
// so all the tags of a category stay the same length.
func NewTable(blocks ...DataBlock) (*Table, error) {
	t := &Table{
		cols:   make(map[string]*column),
		catLen: make(map[string]int),
	}
	for _, b := range blocks {
		for i := range b.Categories {
			t.addCategory(&b.Categories[i])
		}
	}
	if err := t.check(); err != nil {
		return nil, err
	}
	return t, nil
}

// addCategory appends the rows of c.
func (t *Table) addCategory(c *Category) {
	before := t.catLen[c.Name]
	nrow := len(c.Rows)
	for i := range c.Attributes {
		tag := c.Tag(i)
		col, ok := t.cols[tag]
		if !ok {
			col = &column{category: c.Name, order: t.nAttr(c.Name)}
			col.vals = nulls(col.vals, before)
			t.cols[tag] = col
			t.tags = append(t.tags, tag)
		}
		col.inLoop = col.inLoop || c.IsLoop
		for _, row := range c.Rows {
			col.vals = append(col.vals, row[i].Value())
		}
	}
	t.catLen[c.Name] = before + nrow
	for _, tag := range t.tags { // pad the ones this piece did not have
		if col := t.cols[tag]; col.category == c.Name && len(col.vals) < before+nrow {
			col.vals = nulls(col.vals, before+nrow-len(col.vals))
		}
	}
}

// nAttr is the number of tags we already have for a category.
func (t *Table) nAttr(category string) int {
	n := 0
	for _, col := range t.cols {
		if col.category == category {
			n++
		}
	}
	return n
}

func nulls(v []cifval.Value, n int) []cifval.Value {
	for ; n > 0; n-- {
		v = append(v, cifval.Null())
	}
	return v
}

// check makes sure every tag of a category has the same number of values.
// This can only go wrong if a category names the same attribute twice.
func (t *Table) check() error {
	for _, tag := range t.tags {
		col := t.cols[tag]
		if want := t.catLen[col.category]; len(col.vals) != want {
			return &FormatError{Category: col.category,
				Desc: fmt.Sprintf("%s has %d values, but the category has %d rows", tag, len(col.vals), want)}
		}
	}
	return nil
}

// Values returns a copy of the values for tag, in file order. An
// unknown tag gives an empty slice, not an error.
func (t *Table) Values(tag string) []cifval.Value {
	col, ok := t.cols[NormTag(tag)]
	if !ok {
		return nil
	}
	return slices.Clone(col.vals)
}

// Value returns the value of tag in row i, or a null if there is no such
// tag or row.
func (t *Table) Value(tag string, i int) cifval.Value {
	col, ok := t.cols[NormTag(tag)]
	if !ok || i < 0 || i >= len(col.vals) {
		return cifval.Null()
	}
	return col.vals[i]
}

// Length is the number of rows for tag, zero if we have not seen it.
func (t *Table) Length(tag string) int {
	if col, ok := t.cols[NormTag(tag)]; ok {
		return len(col.vals)
	}
	return 0
}

// Has is true if the tag was in the input.
func (t *Table) Has(tag string) bool {
	_, ok := t.cols[NormTag(tag)]
	return ok
}

// Tags returns the tags in the order they were first seen.
func (t *Table) Tags() []string { return slices.Clone(t.tags) }

// Order is the position of the tag within its category, so
// "_atom_site.group_pdb" is usually 0. ok is false for an unknown tag.
func (t *Table) Order(tag string) (n int, ok bool) {
	col, ok := t.cols[NormTag(tag)]
	if !ok {
		return 0, false
	}
	return col.order, true
}

// InLoop says whether the tag came from a loop.
func (t *Table) InLoop(tag string) bool {
	col, ok := t.cols[NormTag(tag)]
	return ok && col.inLoop
}
