package html

import (
	"path/filepath"
	"strings"
)

// RoutePath addresses one output document: directory segments and a file
// name, independent of the output root it lands under.
type RoutePath struct {
	Dirs []string
	File string
}

// URLPath is the absolute URL the route is served at.
func (r RoutePath) URLPath() string {
	segs := make([]string, 0, len(r.Dirs)+1)
	segs = append(segs, r.Dirs...)
	segs = append(segs, r.File)
	return "/" + strings.Join(segs, "/")
}

// FilePath is the route's file path relative to the output root.
func (r RoutePath) FilePath() string {
	segs := make([]string, 0, len(r.Dirs)+1)
	segs = append(segs, r.Dirs...)
	segs = append(segs, r.File)
	return filepath.Join(segs...)
}

// PageRoute maps a wiki page title to its route under dir. Spaces become
// underscores and slashes nest directories, so "Lua/Get Cell" lands at
// dir/Lua/Get_Cell.html.
func PageRoute(dir, title string) RoutePath {
	segs := strings.Split(strings.ReplaceAll(title, " ", "_"), "/")
	dirs := make([]string, 0, len(segs))
	dirs = append(dirs, dir)
	dirs = append(dirs, segs[:len(segs)-1]...)
	return RoutePath{Dirs: dirs, File: segs[len(segs)-1] + ".html"}
}
