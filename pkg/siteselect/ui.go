package siteselect

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ui writes warnings and errors, in colour if we are allowed. Files
// may be read in parallel, so writes are locked.
type ui struct {
	mu    sync.Mutex
	w     io.Writer
	warnC *color.Color
	errC  *color.Color
}

// isTerminal is true if w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newUI decides on colour. mode is auto, always or never. A bad mode
// gives an error and a ui without colour.
func newUI(w io.Writer, mode string) (*ui, error) {
	var on bool
	var err error
	switch mode {
	case "always":
		on = true
	case "never":
	case "auto", "":
		on = isTerminal(w)
	default:
		err = fmt.Errorf("--color should be auto, always or never, not %q", mode)
	}
	u := &ui{w: w, warnC: color.New(color.FgYellow), errC: color.New(color.FgRed, color.Bold)}
	for _, c := range []*color.Color{u.warnC, u.errC} {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return u, err
}

func (u *ui) warn(name string, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.warnC.Fprint(u.w, "warning:")
	fmt.Fprintf(u.w, " %s: %v\n", name, err)
}

func (u *ui) fail(err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.errC.Fprint(u.w, "error:")
	fmt.Fprintln(u.w, "", err)
}
