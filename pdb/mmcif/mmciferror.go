// Errors and warnings from reading. A FormatError saves the line number
// and the line we were trying to read.
package mmcif

import (
	"errors"
	"strconv"
)

const maxMsgLen = 70

var (
	// ErrFormat is matched by every FormatError.
	ErrFormat = errors.New("mmcif format error")

	// ErrMissingCategory is matched by MissingCategoryWarning.
	ErrMissingCategory = errors.New("missing category")
)

// FormatError says something about the text is broken. It is fatal for the
// category (or block) it belongs to, but reading continues.
type FormatError struct {
	Line     int    // line number, counting from 1, or 0 if unknown
	Inline   string // the line that provoked the error
	Category string // category being read, if any
	Desc     string // description of error
}

func firstPart(s string) string {
	if len(s) > maxMsgLen {
		return s[:maxMsgLen]
	}
	return s
}

// Error puts together the line number, category and description. If we
// have the line, the start of it goes on the end.
func (e *FormatError) Error() string {
	var errmsg string
	if e.Line != 0 {
		errmsg = "Line: " + strconv.Itoa(e.Line) + " "
	}
	if e.Category != "" {
		errmsg += e.Category + ": "
	}
	errmsg += e.Desc
	if e.Inline != "" {
		errmsg += "\nLine starting with\n" + firstPart(e.Inline)
	}
	return errmsg
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// MissingCategoryWarning is not returned as an error. It is logged and
// kept in the reader's warnings. A category that is not there just has
// no rows.
type MissingCategoryWarning struct {
	Category string
}

func (w *MissingCategoryWarning) Error() string {
	return "category " + w.Category + " not found"
}

func (w *MissingCategoryWarning) Is(target error) bool { return target == ErrMissingCategory }
