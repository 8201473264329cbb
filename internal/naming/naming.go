// Package naming derives the per-input output file set. Every artifact a
// run can produce is named here, up front, so no external tool ever invents
// its own output path. The naming scheme is shared with the other tools in
// the suite and must stay stable.
package naming

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Role identifies one artifact in an OutputSet.
type Role string

const (
	RoleSourceList     Role = "source-list"     // canonical .axy list fed to the engine
	RoleMatch          Role = "match"           // quad match records
	RoleCatalogRDLS    Role = "catalog-rdls"    // catalog RA,Dec positions
	RoleSolved         Role = "solved"          // marker file: field solved
	RoleWCS            Role = "wcs"             // fitted world coordinate solution
	RoleObjsPlot       Role = "objs-plot"       // detected-source overlay image
	RoleIndexPlot      Role = "index-plot"      // source + index overlay image
	RoleConstellations Role = "constellations"  // annotated constellation image
	RoleIndexXYLS      Role = "index-xyls"      // index stars reprojected to pixels
	RoleDownload       Role = "download"        // local copy of a remote input
)

// Entry is one (role, path) pair of an OutputSet.
type Entry struct {
	Role Role
	Path string
}

// OutputSet is the ordered collection of artifact paths for one input.
// All paths share the same base name.
type OutputSet struct {
	Base    string
	Suffix  string
	entries []Entry
}

// SplitSuffix trims a trailing extension of 2-4 characters from name.
// It probes only offsets 3 through 5 from the end for a dot, nothing
// else; names like "a.tar.gz" keep "a.tar" as base. Downstream tools
// rely on this exact window, so it must not grow into a general
// extension parser.
func SplitSuffix(name string) (base, suffix string) {
	if len(name) > 4 {
		for j := 3; j <= 5; j++ {
			if name[len(name)-j] == '.' {
				return name[:len(name)-j], name[len(name)-j+1:]
			}
		}
	}
	return name, ""
}

// ExpandTemplate substitutes %i with the 1-based input number and %f
// with the raw input name. A literal percent is written %%.
func ExpandTemplate(template string, index int, input string) string {
	var b strings.Builder
	for i := 0; i < len(template); i++ {
		if template[i] != '%' || i+1 == len(template) {
			b.WriteByte(template[i])
			continue
		}
		i++
		switch template[i] {
		case 'i':
			b.WriteString(strconv.Itoa(index))
		case 'f':
			b.WriteString(input)
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(template[i])
		}
	}
	return b.String()
}

// Derive computes the full output set for one input reference. It is pure:
// the same (ref, index, outDir, template) always yields the same set.
func Derive(ref string, index int, outDir, template string) OutputSet {
	name := ref
	if template != "" {
		name = ExpandTemplate(template, index, ref)
	}
	name = filepath.Base(name)

	var base string
	if outDir != "" {
		base = filepath.Join(outDir, name)
	} else {
		base = name
	}

	base, suffix := SplitSuffix(base)

	set := OutputSet{Base: base, Suffix: suffix}
	add := func(role Role, path string) {
		set.entries = append(set.entries, Entry{Role: role, Path: path})
	}
	add(RoleSourceList, base+".axy")
	add(RoleMatch, base+".match")
	add(RoleCatalogRDLS, base+".rdls")
	add(RoleSolved, base+".solved")
	add(RoleWCS, base+".wcs")
	add(RoleObjsPlot, base+"-objs.png")
	add(RoleIndexPlot, base+"-indx.png")
	add(RoleConstellations, base+"-ngc.png")
	add(RoleIndexXYLS, base+"-indx.xyls")
	if suffix != "" {
		add(RoleDownload, base+"-downloaded."+suffix)
	} else {
		add(RoleDownload, base+"-downloaded")
	}
	return set
}

// Path returns the artifact path for role, or "" if absent.
func (s OutputSet) Path(role Role) string {
	for _, e := range s.entries {
		if e.Role == role {
			return e.Path
		}
	}
	return ""
}

// Entries returns the (role, path) pairs in construction order.
func (s OutputSet) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
