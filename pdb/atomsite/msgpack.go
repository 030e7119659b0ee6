package atomsite

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/andrew-torda/rotag/pdb/cifval"
)

// Increment when the layout of wireSite changes.
const wireSchema uint16 = 1

var ErrSchema = errors.New("atom site dump has wrong schema version")

// wireSite is how an AtomSite is written with msgpack. Values keep their
// kind, so quoted text that looks like a number stays text.
type wireSite struct {
	Schema uint16
	Tags   []string
	Rows   [][]wireValue
}

type wireValue struct {
	_msgpack struct{} `msgpack:",as_array"`
	Text     string
	Kind     cifval.Kind
}

func toWire(v cifval.Value) wireValue {
	return wireValue{Text: v.String(), Kind: v.Kind()}
}

func (w wireValue) value() cifval.Value {
	if w.Kind == cifval.KindText {
		return cifval.Text(w.Text)
	}
	return cifval.Parse(w.Text)
}

// WriteMsgpack writes the atom site, including selection state and
// group, so it can be read back quickly by ReadMsgpack. If fields are
// given, only those are written. ReadMsgpack needs the ID field.
func (site *AtomSite) WriteMsgpack(w io.Writer, fields ...Field) error {
	if len(fields) == 0 {
		fields = site.Fields()
	}
	ws := wireSite{Schema: wireSchema, Tags: make([]string, len(fields))}
	for i, f := range fields {
		ws.Tags[i] = f.String()
	}
	ws.Rows = make([][]wireValue, len(site.recs))
	for i := range site.recs {
		row := make([]wireValue, len(fields))
		for j, f := range fields {
			row[j] = toWire(site.recs[i].Get(f))
		}
		ws.Rows[i] = row
	}
	return msgpack.NewEncoder(w).Encode(&ws)
}

// ReadMsgpack reads back what WriteMsgpack wrote.
func ReadMsgpack(r io.Reader) (*AtomSite, error) {
	var ws wireSite
	if err := msgpack.NewDecoder(r).Decode(&ws); err != nil {
		return nil, err
	}
	if ws.Schema != wireSchema {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchema, ws.Schema, wireSchema)
	}
	fields := make([]Field, len(ws.Tags))
	site := newSite()
	for i, tag := range ws.Tags {
		f, ok := Lookup(tag)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
		}
		fields[i] = f
		if int(f) < nStandard {
			site.declared[f] = true
		}
	}
	for i, row := range ws.Rows {
		if len(row) != len(fields) {
			return nil, fmt.Errorf("row %d has %d values for %d tags", i, len(row), len(fields))
		}
		var rec Record
		for j, f := range fields {
			v := row[j].value()
			switch f {
			case SelectionState:
				st, ok := ParseState(v.String())
				if !ok && !v.IsNull() {
					return nil, fmt.Errorf("%s row %d: %q is not a selection state", f, i, v.String())
				}
				rec.State = st
			case SelectionGroup:
				rec.Group = v
			default:
				rec.vals[f] = v
			}
		}
		if err := site.add(rec, i); err != nil {
			return nil, err
		}
	}
	return site, nil
}
