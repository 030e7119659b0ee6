package atomsite

import (
	"github.com/andrew-torda/rotag/pdb/mmcif"
)

// Field names one of the atom site attributes we know about. The order
// is the order they are written out in.
type Field uint8

const (
	GroupPDB Field = iota
	ID
	TypeSymbol
	LabelAtomID
	LabelAltID
	LabelCompID
	LabelAsymID
	LabelEntityID
	LabelSeqID
	CartnX
	CartnY
	CartnZ
	Occupancy
	BIsoOrEquiv
	AuthSeqID
	AuthCompID
	AuthAsymID
	AuthAtomID
	ModelNum
	SelectionState // not from the PDB, our own bookkeeping
	SelectionGroup
	nField
)

// nStandard is the number of fields that come from the file.
const nStandard = int(SelectionState)

const prefix = "_atom_site."

var fieldNames = [nField]string{
	prefix + "group_pdb",
	prefix + "id",
	prefix + "type_symbol",
	prefix + "label_atom_id",
	prefix + "label_alt_id",
	prefix + "label_comp_id",
	prefix + "label_asym_id",
	prefix + "label_entity_id",
	prefix + "label_seq_id",
	prefix + "cartn_x",
	prefix + "cartn_y",
	prefix + "cartn_z",
	prefix + "occupancy",
	prefix + "b_iso_or_equiv",
	prefix + "auth_seq_id",
	prefix + "auth_comp_id",
	prefix + "auth_asym_id",
	prefix + "auth_atom_id",
	prefix + "pdbx_pdb_model_num",
	prefix + "rotag_selection_state",
	prefix + "rotag_selection_group",
}

var fieldIndex = func() map[string]Field {
	m := make(map[string]Field, len(fieldNames))
	for i, s := range fieldNames {
		m[s] = Field(i)
	}
	return m
}()

// String gives the full tag, like "_atom_site.cartn_x".
func (f Field) String() string {
	if f >= nField {
		return "_atom_site.unknown"
	}
	return fieldNames[f]
}

// Lookup finds the field for a tag. The tag may be given in full, or
// just the attribute, so "_atom_site.Cartn_x" and "cartn_x" both work.
func Lookup(tag string) (Field, bool) {
	tag = mmcif.NormTag(tag)
	if f, ok := fieldIndex[tag]; ok {
		return f, true
	}
	f, ok := fieldIndex[prefix+tag]
	return f, ok
}

// Names returns all the tags we know about, in order.
func Names() []string {
	ret := make([]string, nField)
	copy(ret, fieldNames[:])
	return ret
}
