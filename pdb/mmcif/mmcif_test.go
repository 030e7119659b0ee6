package mmcif_test

import (
	"bytes"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrew-torda/rotag/brokenio"
	"github.com/andrew-torda/rotag/pdb/cifval"
	. "github.com/andrew-torda/rotag/pdb/mmcif"
)

const testdata string = "testdata"

func TestMessyLine(t *testing.T) {
	// Some of these are from 2a9w.cif.
	var tests = []struct {
		in    string
		ntok  int
		first string
	}{
		{`GA9 non-polymer         . '3,3-BIS(3-BR-4-HYD)-7-CH-1H,3H-BEO[DE]ISO-1-ONE'`, 4, "GA9"},
		{`'4-CHL-3',3"-DIB-1,8-NAPHTH' 'C24 H13 Br2 Cl O4' 560.619`, 3, `4-CHL-3',3"-DIB-1,8-NAPHTH`},
		{`GLN 'L-peptide linking' y GLUTAMINE      ? 'C5 H10 N2 O3'`, 6, "GLN"},
		{`146.144`, 1, "146.144"},
		{`'a'b'`, 1, "a'b"},
		{`a"b"`, 1, `a"b"`},
		{`''`, 1, ""},
		{`"C5'" C5'`, 2, "C5'"},
		{"  lots\tof   space  ", 3, "lots"},
		{"", 0, ""},
		{"1 C # first atom", 2, "1"},
		{"# nothing but comment", 0, ""},
		{"a#b c", 2, "a#b"},
		{`'a #b' c #x 'y'`, 2, "a #b"},
	}
	for _, tt := range tests {
		toks, err := SplitCifLine(tt.in)
		if err != nil {
			t.Errorf("splitting %q: %v", tt.in, err)
			continue
		}
		if len(toks) != tt.ntok {
			t.Errorf("%q wanted %d pieces, got %d %v", tt.in, tt.ntok, len(toks), toks)
			continue
		}
		if tt.ntok > 0 && toks[0].Text != tt.first {
			t.Errorf("%q first piece wanted %q got %q", tt.in, tt.first, toks[0].Text)
		}
	}
}

func TestBadQuotes(t *testing.T) {
	for _, s := range []string{`'unterminated`, `a 'b c`, `'word1'"word2"`} {
		if _, err := SplitCifLine(s); err == nil {
			t.Errorf("%q should not split", s)
		}
	}
}

func TestSplitTag(t *testing.T) {
	var tests = []struct {
		in, cat, attr string
		ok            bool
	}{
		{"_atom_site.id", "_atom_site", "id", true},
		{"_Atom_Site.Cartn_X", "_atom_site", "cartn_x", true},
		{"_nodot", "", "", false},
		{"_.x", "", "", false},
		{"_a.", "", "", false},
	}
	for _, tt := range tests {
		cat, attr, ok := SplitTag(tt.in)
		if cat != tt.cat || attr != tt.attr || ok != tt.ok {
			t.Errorf("%q gave %q %q %v", tt.in, cat, attr, ok)
		}
	}
}

const scenA = `data_test
loop_
_atom_site.id
_atom_site.type_symbol
1 C
2 N
`

func mustTable(t *testing.T, in string, wanted []string, untilEnd bool) *Table {
	t.Helper()
	blocks, err := Scan(strings.NewReader(in), wanted, untilEnd)
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := NewTable(blocks...)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestScenarioA(t *testing.T) {
	blocks, err := Scan(strings.NewReader(scenA), nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].Name != "test" {
		t.Fatalf("wanted one block called test, got %+v", blocks)
	}
	c := blocks[0].Category("atom_site")
	if c == nil || !c.IsLoop || len(c.Rows) != 2 || len(c.Attributes) != 2 {
		t.Fatalf("bad atom_site category %+v", c)
	}
	tbl, err := NewTable(blocks...)
	if err != nil {
		t.Fatal(err)
	}
	got := tbl.Values("_atom_site.type_symbol")
	if len(got) != 2 || got[0].String() != "C" || got[1].String() != "N" {
		t.Errorf("type_symbol wanted C N, got %v", got)
	}
	if i, err := tbl.Value("_atom_site.id", 1).Int(); err != nil || i != 2 {
		t.Errorf("second id wanted 2, got %d %v", i, err)
	}
}

func TestAbsentTag(t *testing.T) {
	tbl := mustTable(t, scenA, nil, false)
	if v := tbl.Values("_atom_site.occupancy"); len(v) != 0 {
		t.Error("wanted empty values for missing tag, got", v)
	}
	if n := tbl.Length("_atom_site.occupancy"); n != 0 {
		t.Error("wanted zero length, got", n)
	}
	if v := tbl.Value("_atom_site.occupancy", 0); !v.IsNull() {
		t.Error("wanted null, got", v)
	}
	if v := tbl.Value("_atom_site.id", 2); !v.IsNull() {
		t.Error("row out of range should be null, got", v)
	}
	if tbl.Has("_atom_site.occupancy") || !tbl.Has("_ATOM_SITE.ID") {
		t.Error("Has is wrong")
	}
}

func getFp(dir, fname string, t *testing.T) io.ReadCloser {
	t.Helper()
	fp, err := os.Open(filepath.Join(dir, fname))
	if err != nil {
		t.Fatal(err)
	}
	return fp
}

// TestRowShape checks that every category comes out as a proper table.
func TestRowShape(t *testing.T) {
	fp := getFp(testdata, "small.cif", t)
	defer fp.Close()
	blocks, err := Scan(fp, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := NewTable(blocks...)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range blocks {
		for _, c := range b.Categories {
			for _, r := range c.Rows {
				if len(r) != len(c.Attributes) {
					t.Errorf("%s row of %d for %d attributes", c.Name, len(r), len(c.Attributes))
				}
			}
			if !c.IsLoop && len(c.Rows) != 1 {
				t.Errorf("%s not a loop, but %d rows", c.Name, len(c.Rows))
			}
			n := tbl.Length(c.Tag(0))
			for i := range c.Attributes {
				if m := tbl.Length(c.Tag(i)); m != n {
					t.Errorf("%s length %d, but %s is %d", c.Tag(i), m, c.Tag(0), n)
				}
			}
		}
	}
}

func TestSmallFile(t *testing.T) {
	var tests = []struct {
		wanted   []string
		untilEnd bool
		nblock   int
		ncat     []int
		natom    int
	}{
		{nil, false, 1, []int{5}, 10},
		{nil, true, 2, []int{5, 2}, 11},
		{[]string{"atom_site"}, false, 1, []int{1}, 10},
		{[]string{"_atom_site"}, true, 2, []int{1, 1}, 11},
		{[]string{"_entry", "_chem_comp"}, false, 1, []int{2}, 0},
		{[]string{"_refine"}, false, 1, []int{0}, 0},
	}
	for _, tt := range tests {
		fp := getFp(testdata, "small.cif", t)
		blocks, err := Scan(fp, tt.wanted, tt.untilEnd)
		fp.Close()
		if err != nil {
			t.Error(tt.wanted, err)
			continue
		}
		if len(blocks) != tt.nblock {
			t.Errorf("%v %v wanted %d blocks, got %d", tt.wanted, tt.untilEnd, tt.nblock, len(blocks))
			continue
		}
		for i, b := range blocks {
			if len(b.Categories) != tt.ncat[i] {
				t.Errorf("%v %v block %d wanted %d categories, got %d", tt.wanted, tt.untilEnd, i, tt.ncat[i], len(b.Categories))
			}
		}
		tbl, err := NewTable(blocks...)
		if err != nil {
			t.Error(err)
			continue
		}
		if n := tbl.Length("_atom_site.id"); n != tt.natom {
			t.Errorf("%v %v wanted %d atoms, got %d", tt.wanted, tt.untilEnd, tt.natom, n)
		}
	}
}

// TestMerge reads both blocks. The second has fewer attributes, so
// its rows are padded with nulls.
func TestMerge(t *testing.T) {
	fp := getFp(testdata, "small.cif", t)
	defer fp.Close()
	blocks, err := Scan(fp, []string{"_atom_site"}, true)
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := NewTable(blocks...)
	if err != nil {
		t.Fatal(err)
	}
	if v := tbl.Value("_atom_site.group_PDB", 10); !v.IsNull() {
		t.Error("padding should be null, got", v)
	}
	if v := tbl.Value("_atom_site.group_PDB", 6); v.String() != "HETATM" {
		t.Error("wanted HETATM, got", v)
	}
	if f, err := tbl.Value("_atom_site.Cartn_x", 10).Float(); err != nil || f != 1.0 {
		t.Error("wanted x of 1.0, got", f, err)
	}
	if n := tbl.Length("_atom_site.pdbx_PDB_model_num"); n != 11 {
		t.Error("wanted 11 model numbers, got", n)
	}
}

func TestOrder(t *testing.T) {
	fp := getFp(testdata, "small.cif", t)
	defer fp.Close()
	blocks, err := Scan(fp, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := NewTable(blocks...)
	if err != nil {
		t.Fatal(err)
	}
	if tags := tbl.Tags(); tags[0] != "_entry.id" || tags[1] != "_struct.entry_id" {
		t.Error("tags out of order", tags[:2])
	}
	if n, ok := tbl.Order("_atom_site.id"); !ok || n != 1 {
		t.Error("_atom_site.id should be at 1, got", n, ok)
	}
	if n, ok := tbl.Order("_struct.title"); !ok || n != 1 {
		t.Error("_struct.title should be at 1, got", n, ok)
	}
	if _, ok := tbl.Order("_nothing.here"); ok {
		t.Error("found order for unknown tag")
	}
	if !tbl.InLoop("_chem_comp.name") || tbl.InLoop("_entry.id") || tbl.InLoop("_nothing.here") {
		t.Error("InLoop wrong")
	}
	title := tbl.Value("_struct.title", 0)
	if title.Kind() != cifval.KindText || !strings.Contains(title.String(), "that\ngoes") {
		t.Errorf("multi-line title came out as %q", title.String())
	}
	if s := tbl.Value("_chem_comp.type", 1).String(); s != "L-peptide linking" {
		t.Errorf("quoted value came out as %q", s)
	}
	if v := tbl.Value("_chem_comp.mon_nstd_flag", 2); !v.IsNull() {
		t.Error("wanted null flag for water, got", v)
	}
}

func TestTextField(t *testing.T) {
	in := `data_t
_a.x
;first line
# not a comment
_not.a_tag
loop_

;
_a.y '.'
`
	tbl := mustTable(t, in, nil, false)
	want := "first line\n# not a comment\n_not.a_tag\nloop_\n"
	if got := tbl.Value("_a.x", 0); got.String() != want || got.Kind() != cifval.KindText {
		t.Errorf("wanted %q got %q", want, got.String())
	}
	if tbl.Has("_not.a_tag") {
		t.Error("line in text field was read as a tag")
	}
	if v := tbl.Value("_a.y", 0); v.Kind() != cifval.KindText {
		t.Error("quoted dot should be text, got", v.Kind())
	}
}

func TestCase(t *testing.T) {
	in := "DATA_up\nLOOP_\n_Atom_Site.ID\n_ATOM_SITE.Type_Symbol\n1 C\n"
	tbl := mustTable(t, in, []string{"_ATOM_SITE"}, false)
	if v := tbl.Values("_atom_site.type_symbol"); len(v) != 1 || v[0].String() != "C" {
		t.Error("case folding broken, got", v)
	}
}

func TestImplicitBlock(t *testing.T) {
	in := "# comment first\n_a.x 1\n_a.y 2\ndata_second\n_b.x 3\n"
	blocks, err := Scan(strings.NewReader(in), nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 2 || blocks[0].Name != "" || blocks[1].Name != "second" {
		t.Fatalf("wanted implicit block then second, got %+v", blocks)
	}
	if c := blocks[0].Category("_a"); c == nil || len(c.Attributes) != 2 || c.IsLoop {
		t.Error("bad implicit category", c)
	}
}

func TestBadCount(t *testing.T) {
	in := `data_x
loop_
_a.x
_a.y
1 2 3
loop_
_b.x
1
2
`
	blocks, err := Scan(strings.NewReader(in), nil, false)
	if !errors.Is(err, ErrFormat) {
		t.Fatal("wanted format error, got", err)
	}
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Category != "_a" || fe.Line != 3 {
		t.Errorf("wrong details in %#v", fe)
	}
	if len(blocks) != 1 || blocks[0].Category("_a") != nil {
		t.Fatal("broken category should be dropped")
	}
	if c := blocks[0].Category("_b"); c == nil || len(c.Rows) != 2 {
		t.Error("good category after a bad one was lost")
	}
}

// A # starting a word is a comment, in data lines, after inline values
// and between the headers of a loop.
func TestComments(t *testing.T) {
	in := `data_x
_cell.a 10.0 # angstrom
loop_
_a.x # first
#
_a.y
1 C # first row
2 N
`
	tbl := mustTable(t, in, nil, false)
	if v := tbl.Value("_cell.a", 0); v.String() != "10.0" || tbl.Length("_cell.a") != 1 {
		t.Error("_cell.a wanted 10.0, got", v)
	}
	if tbl.InLoop("_cell.a") {
		t.Error("_cell.a is not in a loop")
	}
	for _, tag := range []string{"_a.x", "_a.y"} {
		if n := tbl.Length(tag); n != 2 {
			t.Errorf("%s wanted 2 rows, got %d", tag, n)
		}
		if !tbl.InLoop(tag) {
			t.Error(tag, "should be in the loop")
		}
	}
	if got := tbl.Values("_a.y"); len(got) != 2 || got[0].String() != "C" || got[1].String() != "N" {
		t.Error("_a.y wanted C N, got", got)
	}
}

func TestNotLoop(t *testing.T) {
	_, err := Scan(strings.NewReader("_entry.id a b\n"), nil, false)
	if !errors.Is(err, ErrFormat) {
		t.Error("two values for a single item should fail, got", err)
	}
}

func TestUnterminated(t *testing.T) {
	var tests = []struct {
		in     string
		nblock int
	}{
		{"data_x\n_a.x 1\n_b.x\n;never\nclosed\n", 0},
		{"data_x\n_a.x 'open\n_b.x 1\n", 1},
		{"data_x\nloop_\n_a.x\n1 'open\n", 1},
	}
	for _, tt := range tests {
		blocks, err := Scan(strings.NewReader(tt.in), nil, false)
		if !errors.Is(err, ErrFormat) {
			t.Errorf("%q wanted format error, got %v", tt.in, err)
		}
		if len(blocks) != tt.nblock {
			t.Errorf("%q wanted %d blocks, got %d", tt.in, tt.nblock, len(blocks))
		}
		if len(blocks) > 0 && blocks[0].Category("_a") != nil {
			t.Errorf("%q broken category kept", tt.in)
		}
	}
}

// TestStopEarly checks we do not look at anything after the categories
// we want, unless asked to.
func TestStopEarly(t *testing.T) {
	in := "data_x\n_entry.id X\n#\n_junk.a\n;never closed\n"
	blocks, err := Scan(strings.NewReader(in), []string{"entry"}, false)
	if err != nil {
		t.Fatal("should have stopped before the junk, got", err)
	}
	if len(blocks) != 1 || blocks[0].Category("_entry") == nil {
		t.Fatal("lost _entry")
	}
	if _, err := Scan(strings.NewReader(in), []string{"entry"}, true); !errors.Is(err, ErrFormat) {
		t.Error("reading to the end should find the junk, got", err)
	}
}

func TestMissingCategory(t *testing.T) {
	var buf bytes.Buffer
	mr := NewReader(strings.NewReader(scenA))
	mr.SetCategories([]string{"_atom_site", "_refine"})
	mr.SetLogger(log.New(&buf, "", 0))
	blocks, err := mr.Scan()
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || len(blocks[0].Categories) != 1 {
		t.Error("wanted the one category there is")
	}
	w := mr.Warnings()
	if len(w) != 1 || !errors.Is(w[0], ErrMissingCategory) {
		t.Fatal("wanted one missing category warning, got", w)
	}
	if !strings.Contains(buf.String(), "_refine") {
		t.Error("warning not logged, log has", buf.String())
	}
}

func TestNilReader(t *testing.T) {
	if NewReader(nil) != nil {
		t.Error("nil in should give nil reader")
	}
	if _, err := Scan(nil, nil, false); err == nil {
		t.Error("Scan on nil reader should fail")
	}
}

func TestReadFailure(t *testing.T) {
	fp := getFp(testdata, "small.cif", t)
	rdr := brokenio.NewReader(fp)
	rdr.SetFailAfter(300)
	defer rdr.Close()
	_, err := Scan(rdr, nil, true)
	if !errors.Is(err, brokenio.ErrInjected) {
		t.Error("wanted the read error, got", err)
	}
}

func TestDuplicateAttribute(t *testing.T) {
	blocks, err := Scan(strings.NewReader("loop_\n_a.x\n_a.x\n1 2\n"), nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTable(blocks...); !errors.Is(err, ErrFormat) {
		t.Error("wanted format error for repeated attribute, got", err)
	}
}
