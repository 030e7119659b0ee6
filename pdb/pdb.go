// This is the upper level for reading PDB files.
// Decide if a file is compressed or not, and what format
// we are going to read. Then call the mmcif reader and build the
// atom site. Old format PDB files are recognised, but not read.

package pdb

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"

	"github.com/andrew-torda/rotag/pdb/atomsite"
	"github.com/andrew-torda/rotag/pdb/mmcif"
	"github.com/andrew-torda/rotag/pdb/zwrap"
)

// Where does input come from ?
const (
	FileSrc byte = iota
	HTTPSrc
)

// Format is the file format we guessed.
type Format byte

const (
	FormatUnknown Format = iota
	FormatLegacy         // old fixed column PDB format
	FormatMmcif
)

func (f Format) String() string {
	switch f {
	case FormatLegacy:
		return "pdb"
	case FormatMmcif:
		return "mmcif"
	}
	return "unknown"
}

var (
	ErrLegacyFormat  = errors.New("old PDB format files are not read, convert to mmcif")
	ErrUnknownFormat = errors.New("cannot recognise format")
)

// comparefirst says if a line starts with a word. It copes with lines
// shorter than the word.
func comparefirst(s, word string) bool {
	return len(s) >= len(word) && s[:len(word)] == word
}

// lookInFile opens a file and guesses if it is in old PDB format or
// in mmcif.
func lookInFile(fname string) (Format, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return FormatUnknown, err
	}
	defer fp.Close()

	rdr, e2 := zwrap.WrapMaybe(fp)
	if e2 != nil {
		return FormatUnknown, fmt.Errorf("reading %s: %w", fname, e2)
	}
	return lookInReader(fname, rdr)
}

// lookInReader reads the first lines and says if they look like mmcif
// or old PDB.
func lookInReader(name string, rdr io.Reader) (Format, error) {
	pdbWords := []string{"HEADER", "COMPND", "SOURCE", "REMARK", "SEQRES", "HETATM", "ATOM"}
	mmcifWords := []string{"data_", "_entry.id", "loop_"}
	const maxTestLines = 5000
	scnnr := bufio.NewScanner(bufio.NewReader(rdr))
	for i := 0; i < maxTestLines && scnnr.Scan(); i++ {
		s := scnnr.Text()
		for _, w := range mmcifWords {
			if comparefirst(s, w) {
				return FormatMmcif, nil
			}
		}
		for _, w := range pdbWords {
			if comparefirst(s, w) {
				return FormatLegacy, nil
			}
		}
	}
	if err := scnnr.Err(); err != nil {
		return FormatUnknown, fmt.Errorf("%s: %w", name, err)
	}
	return FormatUnknown, fmt.Errorf("%s: %w", name, ErrUnknownFormat)
}

// fromName guesses the format from a file name.
// We cannot use the function from filepath to get the file type,
// since it will return .gz if we feed it a.pdb.gz.
func fromName(fname string) Format {
	s := filepath.Base(filepath.FromSlash(strings.ReplaceAll(fname, "\\", "/")))
	i := strings.IndexByte(s, '.')
	if i == -1 {
		return FormatUnknown
	}
	s = strings.ToLower(s[i+1:]) // change .ent to ent
	switch {
	case strings.Contains(s, "cif"):
		return FormatMmcif
	case strings.Contains(s, "pdb") || strings.Contains(s, "ent"):
		return FormatLegacy
	}
	return FormatUnknown
}

// Sniff decides what format a file is in.
// Maybe it uses the file name or maybe it peeks inside.
func Sniff(fname string) (Format, error) {
	if f := fromName(fname); f != FormatUnknown {
		return f, nil
	}
	return lookInFile(fname)
}

// mapped is a file mapped into memory. Reads come from the mapping.
type mapped struct {
	*bytes.Reader
	mm mmap.MMap
	fp *os.File
}

func (m *mapped) Close() error {
	var err error
	if m.mm != nil {
		err = m.mm.Unmap()
	}
	return errors.Join(err, m.fp.Close())
}

// OpenFile maps a file into memory and returns a reader over it. If the
// file is gzipped, the reader decompresses it.
func OpenFile(fname string) (io.ReadCloser, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	info, err := fp.Stat()
	if err != nil {
		fp.Close()
		return nil, err
	}
	if info.IsDir() {
		fp.Close()
		return nil, fmt.Errorf("%s is a directory", fname)
	}
	m := &mapped{fp: fp}
	if info.Size() == 0 { // cannot map nothing
		m.Reader = bytes.NewReader(nil)
	} else {
		if m.mm, err = mmap.Map(fp, mmap.RDONLY, 0); err != nil {
			fp.Close()
			return nil, fmt.Errorf("mapping %s: %w", fname, err)
		}
		m.Reader = bytes.NewReader(m.mm)
	}
	rdr, err := zwrap.WrapMaybe(m)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("reading %s: %w", fname, err)
	}
	return rdr, nil
}

// Open gets a reader for a structure. For FileSrc, name is a file name.
// For HTTPSrc it is a four letter PDB code, fetched from the first
// mirror.
func Open(name string, srcType byte) (io.ReadCloser, error) {
	switch srcType {
	case FileSrc:
		typ, err := Sniff(name)
		switch {
		case err != nil:
			return nil, err
		case typ == FormatLegacy:
			return nil, fmt.Errorf("%s: %w", name, ErrLegacyFormat)
		}
		return OpenFile(name)
	case HTTPSrc:
		return OpenHTTP(context.Background(), name, 0)
	}
	return nil, fmt.Errorf("unknown source type %d", srcType)
}

// ReadAtomSite reads the _atom_site category and builds an AtomSite.
// Any format error is returned, we do not build from part of a file.
// Warnings go to logger, which may be nil.
func ReadAtomSite(r io.Reader, readUntilEnd bool, logger *log.Logger) (*atomsite.AtomSite, error) {
	mr := mmcif.NewReader(r)
	if mr == nil {
		return nil, errors.New("ReadAtomSite given nil reader")
	}
	mr.SetCategories([]string{"_atom_site"})
	mr.SetReadUntilEnd(readUntilEnd)
	mr.SetLogger(logger)
	blocks, err := mr.Scan()
	if err != nil {
		return nil, err
	}
	tbl, err := mmcif.NewTable(blocks...)
	if err != nil {
		return nil, err
	}
	site, err := atomsite.Build(tbl)
	if err != nil {
		return nil, err
	}
	site.SetLogger(logger)
	for _, w := range site.Warnings() {
		if logger != nil {
			logger.Println("warning:", w)
		}
	}
	return site, nil
}

// ReadParameters reads every category of every block, for force field
// parameters and the like. We do not look at what is in there.
func ReadParameters(r io.Reader, logger *log.Logger) (*mmcif.Table, error) {
	mr := mmcif.NewReader(r)
	if mr == nil {
		return nil, errors.New("ReadParameters given nil reader")
	}
	mr.SetReadUntilEnd(true)
	mr.SetLogger(logger)
	blocks, err := mr.Scan()
	if err != nil {
		return nil, err
	}
	return mmcif.NewTable(blocks...)
}

// LogWhere decides where to send output. "" throws it away, "stdout"
// and "stderr" are what they say, anything else is a file we append to.
func LogWhere(outinfo string) (*log.Logger, error) {
	var iowriter io.Writer
	switch outinfo { // Decide where to send the logged output
	case "":
		iowriter = io.Discard
	case "stdout":
		iowriter = os.Stdout
	case "stderr":
		iowriter = os.Stderr
	default:
		var err error
		iowriter, err = os.OpenFile(outinfo, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
	}
	return log.New(iowriter, "", log.Lshortfile), nil
}
