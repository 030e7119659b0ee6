package mmcif

import (
	"strings"

	"golang.org/x/text/cases"
)

// Tags are case-insensitive. We fold them once, when they are read, and
// look them up folded.
var folder = cases.Fold()

// NormTag returns the form of a tag used for lookups, "_Atom_Site.Cartn_x"
// becomes "_atom_site.cartn_x".
func NormTag(tag string) string {
	return folder.String(strings.TrimSpace(tag))
}

// NormCategory is NormTag for a category name. The leading underscore
// is added if it was left off.
func NormCategory(name string) string {
	name = NormTag(name)
	if !strings.HasPrefix(name, "_") {
		name = "_" + name
	}
	return name
}

// splitTag breaks "_atom_site.id" into "_atom_site" and "id". ok is false
// if there is no dot, or nothing on one side of it.
func splitTag(tag string) (category, attr string, ok bool) {
	category, attr, ok = strings.Cut(NormTag(tag), ".")
	if !ok || len(category) < 2 || attr == "" {
		return "", "", false
	}
	return category, attr, true
}
