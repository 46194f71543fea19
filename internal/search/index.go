// Package search builds and queries the optional site search index: a
// SQLite database mapping terms to roaring bitmaps of page ids.
package search

import (
	"bytes"
	"database/sql"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/RoaringBitmap/roaring"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	id INTEGER PRIMARY KEY,
	route TEXT NOT NULL,
	title TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS terms (
	term TEXT PRIMARY KEY,
	pages BLOB NOT NULL
) WITHOUT ROWID;
`

// Indexer accumulates pages in memory and writes the index in one
// transaction on Flush.
type Indexer struct {
	db    *sql.DB
	pages []pageRow
	terms map[string]*roaring.Bitmap
}

type pageRow struct {
	route string
	title string
}

// NewIndexer opens (or creates) the index database at dbPath.
func NewIndexer(dbPath string) (*Indexer, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open search index %s: %w", dbPath, err)
	}

	// Performance tuning for bulk insert
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create search schema: %w", err)
	}

	return &Indexer{
		db:    db,
		terms: make(map[string]*roaring.Bitmap),
	}, nil
}

// AddPage records a page and indexes its title and visible text.
func (ix *Indexer) AddPage(title, route, text string) {
	id := uint32(len(ix.pages))
	ix.pages = append(ix.pages, pageRow{route: route, title: title})

	for _, term := range Tokenize(title + " " + text) {
		bm, ok := ix.terms[term]
		if !ok {
			bm = roaring.New()
			ix.terms[term] = bm
		}
		bm.Add(id)
	}
}

// Flush writes both tables in a single transaction.
func (ix *Indexer) Flush() error {
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("begin index flush: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op if committed

	pageStmt, err := tx.Prepare("INSERT OR REPLACE INTO pages (id, route, title) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare pages insert: %w", err)
	}
	defer func() { _ = pageStmt.Close() }()

	for id, p := range ix.pages {
		if _, err := pageStmt.Exec(id, p.route, p.title); err != nil {
			return fmt.Errorf("insert page %s: %w", p.title, err)
		}
	}

	termStmt, err := tx.Prepare("INSERT OR REPLACE INTO terms (term, pages) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare terms insert: %w", err)
	}
	defer func() { _ = termStmt.Close() }()

	var buf bytes.Buffer
	for term, bm := range ix.terms {
		buf.Reset()
		if _, err := bm.WriteTo(&buf); err != nil {
			return fmt.Errorf("serialize bitmap for %q: %w", term, err)
		}
		if _, err := termStmt.Exec(term, buf.Bytes()); err != nil {
			return fmt.Errorf("insert term %q: %w", term, err)
		}
	}

	return tx.Commit()
}

// Close releases the database handle. Call Flush first; Close does not
// commit anything.
func (ix *Indexer) Close() error {
	return ix.db.Close()
}

// Tokenize lowercases text and splits it into index terms: letter/digit
// runs at least two runes long.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= 2 {
			terms = append(terms, f)
		}
	}
	return terms
}
