package html

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// Document is a complete HTML page.
type Document struct {
	Children []Element
}

// NewDocument builds a document from top-level elements.
func NewDocument(children ...Element) Document {
	return Document{Children: children}
}

// Render writes the document, doctype included.
func (d Document) Render(w io.Writer) error {
	if _, err := io.WriteString(w, d.String()); err != nil {
		return fmt.Errorf("render document: %w", err)
	}
	return nil
}

// String renders the document to a string.
func (d Document) String() string {
	var b strings.Builder
	b.WriteString("<!doctype html>\n")
	for _, c := range d.Children {
		c.write(&b)
	}
	b.WriteByte('\n')
	return b.String()
}

// WriteToRoute renders the document into root at the route's file path,
// creating parent directories. The file is written atomically so a failed
// build never leaves a truncated page behind.
func (d Document) WriteToRoute(root string, route RoutePath) error {
	full := filepath.Join(root, route.FilePath())
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := atomic.WriteFile(full, strings.NewReader(d.String())); err != nil {
		return fmt.Errorf("write %s: %w", full, err)
	}
	return nil
}
