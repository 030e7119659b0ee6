package mmcif

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strings"

	"github.com/andrew-torda/rotag/pdb/cifval"
)

// Token is one value from the file. Quoted is set for anything that
// was in quotes or in a ;-delimited text field, since that changes how
// the value is classified.
type Token struct {
	Text   string
	Quoted bool
}

// Value gives the typed form of a token.
func (t Token) Value() cifval.Value { return cifval.New(t.Text, t.Quoted) }

// Category is a named group of attributes. Every row has one token per
// attribute. A category that is not a loop has exactly one row.
type Category struct {
	Name       string   // with the underscore, like "_atom_site"
	Attributes []string // like "id", "type_symbol"
	IsLoop     bool
	Rows       [][]Token
}

// Tag returns the full name of attribute i, like "_atom_site.id".
func (c *Category) Tag(i int) string { return c.Name + "." + c.Attributes[i] }

// DataBlock is everything after one data_ line.
type DataBlock struct {
	Name       string // the part after data_, empty for an implicit block
	Categories []Category
}

// Category returns the first category called name, or nil.
func (b *DataBlock) Category(name string) *Category {
	name = NormCategory(name)
	for i := range b.Categories {
		if b.Categories[i].Name == name {
			return &b.Categories[i]
		}
	}
	return nil
}

// Reader holds the instructions for reading and the state while
// reading. Make one with NewReader, set it up, then call Scan once.
type Reader struct {
	lineScanner
	wanted       map[string]bool // empty means keep everything
	readUntilEnd bool
	logger       *log.Logger
	blocks       []DataBlock
	cur          *blockBuilder
	cat          *catBuilder // category we are reading data for, or nil
	seen         map[string]bool
	errs         []error
	warnings     []error
}

// catBuilder collects the flat list of tokens for one category. The
// list is cut into rows when the block is finished.
type catBuilder struct {
	name   string
	attrs  []string
	isLoop bool
	toks   []Token
	line   int   // where the category started
	bad    error // set if we already know it will be thrown away
}

type blockBuilder struct {
	name        string
	implicit    bool // started without a data_ line
	cats        []*catBuilder
	loopPending bool // we have seen loop_, but not its first header
	bad         error
}

// NewReader returns a Reader for r. The caller decides if r is a file,
// compressed file or http body. A nil r gives a nil Reader.
func NewReader(r io.Reader) *Reader {
	if r == nil {
		return nil
	}
	return &Reader{
		lineScanner: newLineScanner(r),
		wanted:      make(map[string]bool),
		seen:        make(map[string]bool),
		logger:      log.New(io.Discard, "", 0),
	}
}

// SetCategories replaces the list of categories to keep. Names may be
// given with or without the leading underscore. An empty list means
// keep every category.
func (mr *Reader) SetCategories(s []string) {
	mr.wanted = make(map[string]bool)
	mr.AddCategories(s)
}

// AddCategories adds to the list of categories we will keep.
func (mr *Reader) AddCategories(s []string) {
	for _, c := range s {
		if c = NormCategory(c); c != "_" {
			mr.wanted[c] = true
		}
	}
}

// SetReadUntilEnd says whether to carry on to the end of the input.
// Without it, we stop after the first block, or as soon as every wanted
// category has been read.
func (mr *Reader) SetReadUntilEnd(b bool) { mr.readUntilEnd = b }

// SetLogger sets where warnings are written. The default throws them away.
func (mr *Reader) SetLogger(l *log.Logger) {
	if l != nil {
		mr.logger = l
	}
}

// Warnings returns the things that were not errors, but a caller might
// want to know about, like a category that was asked for and not found.
func (mr *Reader) Warnings() []error { return mr.warnings }

// Scan reads the input and returns the data blocks. Broken categories
// are left out of the blocks and each one adds a FormatError to the
// returned error, so a caller may still use what was read, but must
// look at the error first. A read error from the input stops us.
func (mr *Reader) Scan() ([]DataBlock, error) {
	for state := stateLine; state != nil; {
		state = state(mr)
	}
	if err := mr.Err(); err != nil {
		mr.errs = append(mr.errs, fmt.Errorf("reading line %d: %w", mr.n+1, err))
	}
	mr.finishBlock()
	for _, c := range mr.missing() {
		w := &MissingCategoryWarning{Category: c}
		mr.warnings = append(mr.warnings, w)
		mr.logger.Println("warning:", w)
	}
	return mr.blocks, errors.Join(mr.errs...)
}

// Scan is a shortcut to make a Reader, set it up and call its Scan.
func Scan(r io.Reader, wanted []string, readUntilEnd bool) ([]DataBlock, error) {
	mr := NewReader(r)
	if mr == nil {
		return nil, errors.New("mmcif.Scan given nil reader")
	}
	mr.SetCategories(wanted)
	mr.SetReadUntilEnd(readUntilEnd)
	return mr.Scan()
}

// missing returns the wanted categories that were not in any block.
func (mr *Reader) missing() []string {
	var ret []string
	for c := range mr.wanted {
		found := false
		for _, b := range mr.blocks {
			if b.Category(c) != nil {
				found = true
				break
			}
		}
		if !found {
			ret = append(ret, c)
		}
	}
	slices.Sort(ret)
	return ret
}

// lineScanner wraps bufio.Scanner, keeping the line number for error
// messages. Nothing is thrown away here, since comment and blank lines
// can be part of a text field.
type lineScanner struct {
	*bufio.Scanner
	line string // current line
	n    int    // line number, counting from 1
}

const maxLine = 64 * 1024 * 1024

func newLineScanner(r io.Reader) lineScanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLine)
	return lineScanner{Scanner: s}
}

// next moves to the next line. It is false at the end of input or on
// an error, which the caller can get from Err().
func (s *lineScanner) next() bool {
	if !s.Scan() {
		return false
	}
	s.n++
	s.line = s.Text()
	return true
}

// stateFn is the type of state function. It returns the next
// state function that should act on its input.
type stateFn func(*Reader) stateFn

// stateLine reads a line and decides what it is.
func stateLine(mr *Reader) stateFn {
	if !mr.next() {
		return nil
	}
	line := mr.line
	if strings.HasPrefix(line, ";") {
		return stateText
	}
	trim := strings.TrimSpace(line)
	switch {
	case trim == "":
		return stateLine
	case trim[0] == '#':
		if c := mr.cat; c != nil && c.isLoop && len(c.toks) == 0 {
			return stateLine // between loop headers, still the same loop
		}
		return mr.terminate(stateLine)
	case hasPrefixFold(trim, "data_"):
		return stateData
	case hasPrefixFold(trim, "loop_"):
		next := mr.terminate(stateLine)
		if next != nil {
			mr.block().loopPending = true
		}
		return next
	case trim[0] == '_':
		return stateTag
	}
	mr.block()
	if mr.cat == nil || mr.cat.bad != nil {
		return stateLine
	}
	toks, err := splitCifLine(trim)
	if err != nil {
		mr.catFail(mr.cat, err.Error())
		return stateLine
	}
	mr.cat.toks = append(mr.cat.toks, toks...)
	return stateLine
}

// terminate ends reading data for the current category. If that means
// we have everything we were asked for, we stop. Otherwise go on with
// next.
func (mr *Reader) terminate(next stateFn) stateFn {
	mr.cat = nil
	if mr.haveAll() {
		return nil
	}
	return next
}

// haveAll is true if we are not reading to the end and every wanted
// category has turned up in the current block.
func (mr *Reader) haveAll() bool {
	if mr.readUntilEnd || len(mr.wanted) == 0 {
		return false
	}
	for c := range mr.wanted {
		if !mr.seen[c] {
			return false
		}
	}
	return true
}

// stateData starts a new block. Unless we are reading to the end, a
// second block means we are finished.
func stateData(mr *Reader) stateFn {
	name := strings.TrimSpace(mr.line)[len("data_"):]
	mr.cat = nil
	switch {
	case mr.cur != nil && mr.cur.implicit && len(mr.cur.cats) == 0:
		mr.cur.name, mr.cur.implicit = name, false
		return stateLine
	case mr.cur != nil && !mr.readUntilEnd:
		return nil
	}
	mr.finishBlock()
	mr.cur = &blockBuilder{name: name}
	return stateLine
}

// stateTag handles a line starting with an underscore. It is either
// another attribute for the category we are reading, or the start of a
// new category.
func stateTag(mr *Reader) stateFn {
	b := mr.block()
	tag, rest := cutWord(strings.TrimSpace(mr.line))
	name, attr, ok := splitTag(tag)
	if !ok { // no dot, so it is nothing we can keep
		return mr.terminate(stateLine)
	}
	c := mr.cat
	if c == nil || c.name != name || b.loopPending || (c.isLoop && len(c.toks) > 0) {
		if mr.terminate(stateLine) == nil {
			return nil
		}
		isLoop := b.loopPending
		b.loopPending = false
		if len(mr.wanted) != 0 && !mr.wanted[name] {
			return stateLine
		}
		c = &catBuilder{name: name, isLoop: isLoop, line: mr.n}
		b.cats = append(b.cats, c)
		mr.cat = c
		mr.seen[name] = true
	}
	c.attrs = append(c.attrs, attr)
	if rest == "" || c.bad != nil {
		return stateLine
	}
	toks, err := splitCifLine(rest)
	if err != nil {
		mr.catFail(c, err.Error())
		return stateLine
	}
	c.toks = append(c.toks, toks...)
	return stateLine
}

// cutWord splits off the first word of s, which has no leading space.
func cutWord(s string) (word, rest string) {
	for i := 0; i < len(s); i++ {
		if iswhite(s[i]) {
			return s[:i], strings.TrimLeft(s[i:], " \t")
		}
	}
	return s, ""
}

// stateText reads a ; delimited text field. The first line is the
// current one, without its semicolon, then we keep going until a line
// that is only a semicolon.
func stateText(mr *Reader) stateFn {
	b := mr.block()
	start := mr.n
	var sb strings.Builder
	sb.WriteString(mr.line[1:])
	closed := false
	for mr.next() {
		if strings.TrimRight(mr.line, " \t") == ";" {
			closed = true
			break
		}
		sb.WriteByte('\n')
		sb.WriteString(mr.line)
	}
	if !closed {
		e := &FormatError{Line: start, Desc: "unterminated text field"}
		if mr.cat != nil {
			e.Category = mr.cat.name
		}
		mr.fail(e)
		b.bad = e
		return nil
	}
	if mr.cat != nil && mr.cat.bad == nil {
		mr.cat.toks = append(mr.cat.toks, Token{Text: sb.String(), Quoted: true})
	}
	return stateLine
}

// block returns the block we are filling, starting one if there is
// none yet.
func (mr *Reader) block() *blockBuilder {
	if mr.cur == nil {
		mr.cur = &blockBuilder{implicit: true}
	}
	return mr.cur
}

// fail saves an error and writes it to the log.
func (mr *Reader) fail(err error) {
	mr.errs = append(mr.errs, err)
	mr.logger.Println(err)
}

// catFail marks a category as broken. Its data will be dropped, but we
// carry on reading, so its lines are not taken for anything else.
func (mr *Reader) catFail(c *catBuilder, desc string) {
	if c.bad != nil {
		return
	}
	e := &FormatError{Line: mr.n, Inline: mr.line, Category: c.name, Desc: desc}
	c.bad = e
	mr.fail(e)
}

// finishBlock cuts the token lists of the current block into rows and
// moves the block into the list of finished blocks. Broken categories
// are dropped. A block with an unterminated text field is dropped.
func (mr *Reader) finishBlock() {
	b := mr.cur
	mr.cur, mr.cat = nil, nil
	mr.seen = make(map[string]bool)
	if b == nil || b.bad != nil {
		return
	}
	blk := DataBlock{Name: b.name}
	for _, c := range b.cats {
		if c.bad != nil {
			continue
		}
		rows, err := c.reshape()
		if err != nil {
			mr.fail(err)
			continue
		}
		blk.Categories = append(blk.Categories, Category{
			Name: c.name, Attributes: c.attrs, IsLoop: c.isLoop, Rows: rows})
	}
	mr.blocks = append(mr.blocks, blk)
}

// reshape turns the flat list of tokens into rows.
func (c *catBuilder) reshape() ([][]Token, error) {
	nattr := len(c.attrs)
	ntok := len(c.toks)
	if ntok%nattr != 0 {
		return nil, &FormatError{Line: c.line, Category: c.name,
			Desc: fmt.Sprintf("%d values will not go into rows of %d attributes", ntok, nattr)}
	}
	nrow := ntok / nattr
	if !c.isLoop && nrow != 1 {
		return nil, &FormatError{Line: c.line, Category: c.name,
			Desc: fmt.Sprintf("not a loop, but has %d rows", nrow)}
	}
	rows := make([][]Token, nrow)
	for i := range rows {
		rows[i] = c.toks[i*nattr : (i+1)*nattr : (i+1)*nattr]
	}
	return rows, nil
}

// hasPrefixFold is strings.HasPrefix, but ignoring ascii case.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
