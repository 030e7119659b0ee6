package atomsite

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrDuplicateID        = errors.New("duplicate atom id")
	ErrUnknownSelectionID = errors.New("unknown atom id in selection")
	ErrUnknownTag         = errors.New("unknown atom site tag")
	ErrNoAtoms            = errors.New("no atoms loaded")
)

// DuplicateIDError is returned by Build when two rows have the same id.
type DuplicateIDError struct {
	ID   int64
	Rows [2]int // the two rows, counting from zero
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("atom id %d in rows %d and %d", e.ID, e.Rows[0], e.Rows[1])
}

func (e *DuplicateIDError) Is(target error) bool { return target == ErrDuplicateID }

// UnknownSelectionIDError lists ids that were asked for, but are not in
// the atom site. It means the caller has a bug.
type UnknownSelectionIDError struct {
	IDs []int64
}

func (e *UnknownSelectionIDError) Error() string {
	s := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		s[i] = strconv.FormatInt(id, 10)
	}
	return "atom ids not in atom site: " + strings.Join(s, ", ")
}

func (e *UnknownSelectionIDError) Is(target error) bool { return target == ErrUnknownSelectionID }
