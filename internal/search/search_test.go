package search

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world"}, Tokenize("Hello, World!"))
	assert.Equal(t, []string{"returns", "the", "cell", "id"}, Tokenize("Returns the cell's id"))
	assert.Equal(t, []string{"foo", "bar", "baz"}, Tokenize("foo.bar-baz"))
	assert.Equal(t, []string{"lua", "get", "cell"}, Tokenize("Lua/Get Cell"))
	// Single-rune runs are dropped.
	assert.Equal(t, []string{"x2", "of"}, Tokenize("a I x2 of"))
	assert.Empty(t, Tokenize("  "))
}

func buildIndex(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "search.db")

	ix, err := NewIndexer(dbPath)
	require.NoError(t, err)
	defer func() { require.NoError(t, ix.Close()) }()

	ix.AddPage("Lua/Get Cell", "/wiki/Lua/Get_Cell.html", "Returns the cell an actor occupies")
	ix.AddPage("Main Page", "/wiki/Main_Page.html", "Welcome to the documentation")
	require.NoError(t, ix.Flush())
	return dbPath
}

func TestIndexRoundtrip(t *testing.T) {
	dbPath := buildIndex(t)

	pages, err := Query(dbPath, "cell")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "/wiki/Lua/Get_Cell.html", pages[0].Route)
	assert.Equal(t, "Lua/Get Cell", pages[0].Title)

	pages, err = Query(dbPath, "documentation")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Main Page", pages[0].Title)
}

func TestQuery_SharedTermOrderedByID(t *testing.T) {
	dbPath := buildIndex(t)

	pages, err := Query(dbPath, "the")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, int64(0), pages[0].ID)
	assert.Equal(t, "Lua/Get Cell", pages[0].Title)
	assert.Equal(t, int64(1), pages[1].ID)
	assert.Equal(t, "Main Page", pages[1].Title)
}

func TestQuery_NormalizesTerm(t *testing.T) {
	dbPath := buildIndex(t)

	pages, err := Query(dbPath, "  CELL ")
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

func TestQuery_UnknownTerm(t *testing.T) {
	dbPath := buildIndex(t)

	pages, err := Query(dbPath, "zzzmissing")
	require.NoError(t, err)
	assert.Empty(t, pages)
}

// Titles are searchable even when the body never mentions them.
func TestIndex_TitleTermsIndexed(t *testing.T) {
	dbPath := buildIndex(t)

	pages, err := Query(dbPath, "lua")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Lua/Get Cell", pages[0].Title)
}
