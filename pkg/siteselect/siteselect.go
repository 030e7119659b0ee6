// Package siteselect reads mmcif files, marks which atoms are targets
// and which are selected, and writes the atoms out again. It is the
// body of the siteselect command.
package siteselect

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrew-torda/rotag/pdb"
	"github.com/andrew-torda/rotag/pdb/atomsite"
)

const (
	ExitSuccess = iota
	ExitFailure
)

const Version = "0.1.0"

// CmdArgs has everything from the command line and config file.
type CmdArgs struct {
	Include      []string // tag=v1,v2 terms for targets
	Exclude      []string
	Select       []string // tag=v1,v2 terms for selected atoms, default is the targets
	Target       []int64  // extra target ids
	Tags         []string // columns to write, default is all
	Group        string
	Format       string // tsv or msgpack
	Output       string
	Config       string
	Log          string
	Color        string
	KeepIgnored  bool
	ReadUntilEnd bool
	Legacy       bool // input is old style PDB
	HTTP         bool // arguments are PDB codes, not file names
	RandomSeed   int64
	Jobs         int
}

// app holds what the commands share.
type app struct {
	args   CmdArgs
	stdout io.Writer
	stderr io.Writer
	ui     *ui
	logger *log.Logger
}

// setup is run before any subcommand. It sorts out colour, logging and
// the config file.
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.ui, err = newUI(a.stderr, a.args.Color); err != nil {
		return err
	}
	if a.logger, err = pdb.LogWhere(a.args.Log); err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	return applyConfig(&a.args, cmd.Flags().Changed)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "siteselect",
		Short:         "Mark and pick atoms from mmcif files",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	pf := root.PersistentFlags()
	pf.StringVar(&a.args.Color, "color", "auto", "colorize warnings (auto|always|never)")
	pf.StringVar(&a.args.Log, "log", "", "where to log (stdout, stderr or a file name)")
	pf.StringVar(&a.args.Config, "config", "", "TOML file with default selections")
	pf.BoolVar(&a.args.ReadUntilEnd, "read-until-end", false, "read every data block, not just the first")
	pf.BoolVar(&a.args.HTTP, "http", false, "arguments are PDB codes to fetch, not files")
	pf.BoolVar(&a.args.Legacy, "pdb", false, "input is in old PDB format")

	root.AddCommand(a.selectCmd(), a.statsCmd())
	return root
}

func (a *app) selectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select [flags] file...",
		Short: "Mark target and selected atoms and write them out",
		Long: `select reads each file and marks atoms passing --include and --exclude
as targets. Atoms passing --select are marked as selected. Without --select,
the targets are the selection. Ignored atoms are dropped unless --keep-ignored.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, files []string) error {
			return a.runSelect(files)
		},
	}
	f := cmd.Flags()
	f.StringArrayVar(&a.args.Include, "include", nil, "keep atoms with tag=v1,v2 (repeat for more tags)")
	f.StringArrayVar(&a.args.Exclude, "exclude", nil, "drop atoms with tag=v1,v2")
	f.StringArrayVar(&a.args.Select, "select", nil, "selected atoms have tag=v1,v2")
	f.Int64SliceVar(&a.args.Target, "target", nil, "ids of extra target atoms")
	f.StringSliceVar(&a.args.Tags, "tags", nil, "tags to write, default all")
	f.StringVar(&a.args.Group, "group", "", "group label for the targets")
	f.StringVar(&a.args.Format, "format", "tsv", "output format (tsv|msgpack)")
	f.StringVarP(&a.args.Output, "output", "o", "", "output file, default stdout")
	f.BoolVar(&a.args.KeepIgnored, "keep-ignored", false, "write ignored atoms too")
	f.Int64Var(&a.args.RandomSeed, "random-seed", 1, "seed for random selections")
	return cmd
}

// readSite opens a file or fetches a PDB code and builds its atoms.
func (a *app) readSite(name string) (*atomsite.AtomSite, error) {
	if a.args.Legacy {
		return nil, fmt.Errorf("%s: %w", name, pdb.ErrLegacyFormat)
	}
	src := pdb.FileSrc
	if a.args.HTTP {
		src = pdb.HTTPSrc
	}
	rdr, err := pdb.Open(name, src)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()
	site, err := pdb.ReadAtomSite(rdr, a.args.ReadUntilEnd, a.logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	for _, w := range site.Warnings() {
		a.ui.warn(name, w)
	}
	return site, nil
}

// selectors is the parsed form of the selection flags.
type selectors struct {
	include, exclude, sel *atomsite.Selector
}

func (a *app) parseSelectors() (selectors, error) {
	var s selectors
	var err error
	if s.include, err = atomsite.ParseSelector(a.args.Include); err != nil {
		return s, fmt.Errorf("--include: %w", err)
	}
	if s.exclude, err = atomsite.ParseSelector(a.args.Exclude); err != nil {
		return s, fmt.Errorf("--exclude: %w", err)
	}
	if len(a.args.Select) > 0 {
		if s.sel, err = atomsite.ParseSelector(a.args.Select); err != nil {
			return s, fmt.Errorf("--select: %w", err)
		}
	}
	return s, nil
}

// annotate works out target and selected ids and marks them. If only
// --target ids are given, they are the only targets.
func (a *app) annotate(site *atomsite.AtomSite, s selectors) error {
	var target []int64
	if !s.include.Empty() || !s.exclude.Empty() || len(a.args.Target) == 0 {
		target = site.Filter(s.include, s.exclude).IDs()
	}
	target = append(target, a.args.Target...)
	selected := target
	if s.sel != nil {
		selected = site.Filter(s.sel, s.exclude).IDs()
	}
	if err := site.MarkSelection(target, selected); err != nil {
		return err
	}
	if a.args.Group == "" {
		return nil
	}
	for _, id := range target {
		if err := site.SetGroup(id, a.args.Group); err != nil {
			return err
		}
	}
	return nil
}

// outFields turns --tags into fields. Nothing means everything.
func outFields(tags []string) ([]atomsite.Field, error) {
	var ret []atomsite.Field
	for _, t := range tags {
		f, ok := atomsite.Lookup(strings.TrimSpace(t))
		if !ok {
			return nil, fmt.Errorf("--tags: %w: %q", atomsite.ErrUnknownTag, t)
		}
		ret = append(ret, f)
	}
	return ret, nil
}

var ignored = func() *atomsite.Selector {
	s := atomsite.NewSelector()
	if err := s.Add(atomsite.SelectionState.String(), atomsite.Ignored.Code()); err != nil {
		panic(err)
	}
	return s
}()

func (a *app) runSelect(files []string) (err error) {
	a.logger.Println("random seed", a.args.RandomSeed)
	sels, err := a.parseSelectors()
	if err != nil {
		return err
	}
	fields, err := outFields(a.args.Tags)
	if err != nil {
		return err
	}
	var write func(io.Writer, *atomsite.AtomSite, string, []atomsite.Field) error
	switch a.args.Format {
	case "tsv":
		write = writeTSV
	case "msgpack":
		write = writeMsgpack
	default:
		return fmt.Errorf("--format should be tsv or msgpack, not %q", a.args.Format)
	}

	out := a.stdout
	if a.args.Output != "" {
		fp, ferr := os.Create(a.args.Output)
		if ferr != nil {
			return ferr
		}
		defer func() { err = errors.Join(err, fp.Close()) }()
		out = fp
	}
	bw := bufio.NewWriter(out)
	defer func() { err = errors.Join(err, bw.Flush()) }()

	for _, name := range files {
		site, err := a.readSite(name)
		if err != nil {
			return err
		}
		if err := a.annotate(site, sels); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if !a.args.KeepIgnored {
			site = site.Filter(nil, ignored)
		}
		a.logger.Printf("%s: %d targets, %d selected, writing %d atoms", name,
			len(site.Selection(atomsite.Target)), len(site.Selection(atomsite.Selected)), site.Len())
		if err := write(bw, site, name, fields); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}

// writeTSV writes a comment line with the file name, a header of tags,
// then one line per atom.
func writeTSV(w io.Writer, site *atomsite.AtomSite, name string, fields []atomsite.Field) error {
	if len(fields) == 0 {
		fields = site.Fields()
	}
	hdr := make([]string, len(fields))
	for i, f := range fields {
		hdr[i] = f.String()
	}
	if _, err := fmt.Fprintf(w, "# %s\n%s\n", name, strings.Join(hdr, "\t")); err != nil {
		return err
	}
	row := make([]string, len(fields))
	for _, id := range site.IDs() {
		rec, _ := site.Record(id)
		for i, f := range fields {
			row[i] = rec.Get(f).String()
		}
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// writeMsgpack needs the id to read the atoms back, so it is always
// written.
func writeMsgpack(w io.Writer, site *atomsite.AtomSite, _ string, fields []atomsite.Field) error {
	if len(fields) > 0 && !slices.Contains(fields, atomsite.ID) {
		fields = append([]atomsite.Field{atomsite.ID}, fields...)
	}
	return site.WriteMsgpack(w, fields...)
}

// Mymain runs the command with argv (without the program name) and
// returns the exit code.
func Mymain(argv []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(argv)
	if err := root.Execute(); err != nil {
		if a.ui == nil {
			a.ui, _ = newUI(stderr, "never")
		}
		a.ui.fail(err)
		return ExitFailure
	}
	return ExitSuccess
}
