// Package pdb covers reading PDB coordinates from files or from the web.
// Go to a pdb website and download coordinates.
// pdb europe files are at https://www.ebi.ac.uk/pdbe/entry-files/download/5pti.cif
// The main point is to visit the web page and return a reader that
// can be used like the file readers.
package pdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andrew-torda/rotag/pdb/zwrap"
)

// Mirror is one place to get structures from. A file is at
// Base + code + Suffix.
type Mirror struct {
	Base   string
	Suffix string
}

// Mirrors are the three sites for structures. Some give gzipped data,
// but we look at what comes back, rather than trusting the name.
var Mirrors = []Mirror{
	{"https://files.rcsb.org/download/", ".cif.gz"},
	{"https://www.ebi.ac.uk/pdbe/entry-files/download/", ".cif"},
	{"https://ftp.pdbj.org/mmcif/", ".cif.gz"},
}

var ErrAcqCode = errors.New("PDB code should be four characters, starting with a digit")

// checkCode makes sure we have something like 5zck.
func checkCode(acqCode string) error {
	if len(acqCode) != 4 || acqCode[0] < '1' || acqCode[0] > '9' {
		return fmt.Errorf("%w, not %q", ErrAcqCode, acqCode)
	}
	for _, c := range acqCode[1:] {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return fmt.Errorf("%w, not %q", ErrAcqCode, acqCode)
		}
	}
	return nil
}

// OpenHTTP is given a four letter pdb code. It goes to the protein data
// bank and should return a reader. It can be cancelled through ctx.
// You can pick which site you want with siteNum. If you give a value that
// is too big, we use a modulo to wrap it around, rather than generate an
// error. This makes it easier to cycle through them or pick one at random.
func OpenHTTP(ctx context.Context, acqCode string, siteNum int) (io.ReadCloser, error) {
	return OpenMirror(ctx, http.DefaultClient, pickMirror(siteNum), acqCode)
}

// pickMirror wraps siteNum around the list of mirrors. Negative numbers
// are fine too.
func pickMirror(siteNum int) Mirror {
	n := len(Mirrors)
	return Mirrors[(siteNum%n+n)%n]
}

// OpenMirror fetches a structure from one mirror. If what comes back is
// gzipped, the reader decompresses it.
func OpenMirror(ctx context.Context, client *http.Client, m Mirror, acqCode string) (io.ReadCloser, error) {
	if err := checkCode(acqCode); err != nil {
		return nil, err
	}
	url := m.Base + strings.ToLower(acqCode) + m.Suffix
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("wanted %s using %s, got %s", acqCode, url, resp.Status)
	}
	rdr, err := zwrap.WrapReader(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return rdr, nil
}
