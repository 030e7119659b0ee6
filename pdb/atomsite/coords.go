package atomsite

import (
	"errors"
	"fmt"
	"strconv"

	"fortio.org/safecast"
	"github.com/andrew-torda/matrix"
)

// ErrNoCoords is returned when there are no cartn_x, y, z columns.
var ErrNoCoords = errors.New("atom site has no coordinates")

var xyz = [3]Field{CartnX, CartnY, CartnZ}

// Coords returns an N x 3 matrix of coordinates, one row per atom in the
// order of IDs(). A coordinate that is not a number is an error.
func (site *AtomSite) Coords() (*matrix.FMatrix2d, error) {
	for _, f := range xyz {
		if !site.declared[f] {
			return nil, fmt.Errorf("%w: missing %s", ErrNoCoords, f)
		}
	}
	m := matrix.NewFMatrix2d(len(site.recs), 3)
	for i := range site.recs {
		for j, f := range xyz {
			x, err := site.recs[i].vals[f].Float()
			if err != nil {
				return nil, fmt.Errorf("atom %d %s: %w", site.recs[i].ID, f, err)
			}
			m.Mat[i][j] = float32(x)
		}
	}
	return m, nil
}

// Models returns the model numbers, in the order they first turn up.
// Without a model number column, every atom is in model 1.
func (site *AtomSite) Models() ([]int32, error) {
	if !site.declared[ModelNum] {
		return []int32{1}, nil
	}
	var ret []int32
	seen := make(map[int32]bool)
	for i := range site.recs {
		n, err := site.recs[i].vals[ModelNum].Int()
		if err != nil {
			return nil, fmt.Errorf("atom %d: %w", site.recs[i].ID, err)
		}
		mdl, err := safecast.Conv[int32](n)
		if err != nil {
			return nil, fmt.Errorf("atom %d model %d: %w", site.recs[i].ID, n, err)
		}
		if !seen[mdl] {
			seen[mdl] = true
			ret = append(ret, mdl)
		}
	}
	return ret, nil
}

// Model returns a new AtomSite with only the atoms of one model.
func (site *AtomSite) Model(n int32) *AtomSite {
	if !site.declared[ModelNum] {
		return site.Filter(nil, nil)
	}
	sel := &Selector{sets: map[Field]map[string]bool{
		ModelNum: {strconv.Itoa(int(n)): true},
	}}
	return site.Filter(sel, nil)
}
