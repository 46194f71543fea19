// Package templates loads, caches, and instantiates wiki templates. The
// instantiation algorithm alternates tree substitution with textual
// roundtrips so invocations captured as raw argument text get their turn to
// expand.
package templates

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// ErrNotFound is wrapped by lookup failures for unknown template names.
var ErrNotFound = errors.New("template not found")

// NotFoundError reports a failed lookup with both the name as written and
// the normalized key it resolved to.
type NotFoundError struct {
	Name string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("template %q (key %q) not found", e.Name, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Loader fetches raw template source by name.
type Loader interface {
	Load(name string) (string, error)
}

// Normalize maps a template name to its cache and lookup key: lowercase,
// spaces to underscores, backslashes to forward slashes.
func Normalize(name string) string {
	key := strings.ToLower(name)
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "\\", "/")
	return key
}

// FSLoader serves template source from .wikitext files under a filesystem
// root. The tree is scanned once up front; lookups go through the same
// normalization as the scanned paths.
type FSLoader struct {
	fs    billy.Filesystem
	paths map[string]string
}

// NewFSLoader scans fsys for template files.
func NewFSLoader(fsys billy.Filesystem) (*FSLoader, error) {
	l := &FSLoader{fs: fsys, paths: make(map[string]string)}
	err := util.Walk(fsys, ".", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || path.Ext(p) != ".wikitext" {
			return nil
		}
		key := Normalize(strings.TrimSuffix(p, path.Ext(p)))
		l.paths[key] = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan templates: %w", err)
	}
	return l, nil
}

// Load returns the source of the named template.
func (l *FSLoader) Load(name string) (string, error) {
	key := Normalize(name)
	p, ok := l.paths[key]
	if !ok {
		return "", &NotFoundError{Name: name, Key: key}
	}
	data, err := util.ReadFile(l.fs, p)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", p, err)
	}
	return string(data), nil
}

// Len reports how many template files the scan found.
func (l *FSLoader) Len() int {
	return len(l.paths)
}
