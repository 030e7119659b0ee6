// siteselect reads mmcif files, marks target and selected atoms and
// writes them out. Try
//
//	siteselect select --include label_comp_id=MET --tags id,type_symbol,rotag_selection_state 1tst.cif
//	siteselect stats *.cif.gz
package main

import (
	"os"

	"github.com/andrew-torda/rotag/pkg/siteselect"
)

func main() {
	os.Exit(siteselect.Mymain(os.Args[1:], os.Stdout, os.Stderr))
}
