package search

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring"
)

// Page is one query hit.
type Page struct {
	ID    int64
	Route string
	Title string
}

// Query looks a single term up in the index at dbPath and returns matching
// pages ordered by id. An unknown term matches nothing.
func Query(dbPath, term string) ([]Page, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open search index %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	var blob []byte
	err = db.QueryRow("SELECT pages FROM terms WHERE term = ?", strings.ToLower(strings.TrimSpace(term))).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("look up term %q: %w", term, err)
	}

	rb := roaring.New()
	if err := rb.UnmarshalBinary(blob); err != nil {
		return nil, fmt.Errorf("unmarshal bitmap for %q: %w", term, err)
	}

	var ids []uint32
	it := rb.Iterator()
	for it.HasNext() {
		ids = append(ids, it.Next())
	}
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		args[i] = id
		placeholders[i] = "?"
	}

	query := fmt.Sprintf(
		"SELECT id, route, title FROM pages WHERE id IN (%s) ORDER BY id",
		strings.Join(placeholders, ","),
	)
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("resolve pages for %q: %w", term, err)
	}
	defer func() { _ = rows.Close() }()

	var pages []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.ID, &p.Route, &p.Title); err != nil {
			return nil, fmt.Errorf("scan page row: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate page rows: %w", err)
	}
	return pages, nil
}
