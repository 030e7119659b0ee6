package siteselect

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/andrew-torda/rotag/pdb/atomsite"
)

// fileStats is a summary of one file.
type fileStats struct {
	name     string
	atoms    int
	hetero   int
	models   int
	chains   int
	residues int
}

func (a *app) statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [flags] file...",
		Short: "Count atoms, models, chains and residues in files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			res, err := a.collectStats(cmd.Context(), files)
			if err != nil {
				return err
			}
			return writeStats(a.stdout, res)
		},
	}
	cmd.Flags().IntVarP(&a.args.Jobs, "jobs", "j", runtime.NumCPU(), "files to read at once")
	return cmd
}

// collectStats reads the files in parallel. Each goroutine has its own
// AtomSite and writes only its own slot in the results. The first error
// stops the rest.
func (a *app) collectStats(ctx context.Context, files []string) ([]fileStats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]fileStats, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(a.args.Jobs, len(files))))
	for i, name := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			site, err := a.readSite(name)
			if err != nil {
				return err
			}
			st, err := summarize(site)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			st.name = name
			results[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// summarize counts things in one atom site. A residue is a distinct
// chain, sequence number and residue name.
func summarize(site *atomsite.AtomSite) (fileStats, error) {
	st := fileStats{atoms: site.Len()}
	models, err := site.Models()
	if err != nil {
		return st, err
	}
	st.models = len(models)
	chains := make(map[string]bool)
	residues := make(map[[3]string]bool)
	for _, id := range site.IDs() {
		rec, _ := site.Record(id)
		if rec.Get(atomsite.GroupPDB).String() == "HETATM" {
			st.hetero++
		}
		asym := rec.Get(atomsite.LabelAsymID).String()
		chains[asym] = true
		residues[[3]string{asym, rec.Get(atomsite.LabelSeqID).String(),
			rec.Get(atomsite.LabelCompID).String()}] = true
	}
	if st.atoms > 0 {
		st.chains, st.residues = len(chains), len(residues)
	}
	return st, nil
}

func writeStats(w io.Writer, res []fileStats) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "file\tatoms\thetatm\tmodels\tchains\tresidues")
	for _, s := range res {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", s.name, s.atoms, s.hetero, s.models, s.chains, s.residues)
	}
	return tw.Flush()
}
