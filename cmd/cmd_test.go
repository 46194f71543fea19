package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikitools/wikigen/internal/wikitext"
)

func TestNewLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("warn", &buf)
	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("chatty", &buf)
	log.Debug("hidden")
	log.Info("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestExpandDump_ResolvesTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Templates"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Templates", "Greeting.wikitext"), []byte("Hello, {{{name|World}}}!"), 0o644))
	input := filepath.Join(dir, "Page.wikitext")
	require.NoError(t, os.WriteFile(input, []byte("{{Templates/Greeting|name=Ada}}"), 0o644))

	markup := wikitext.DefaultConfig()
	nodes, err := wikitext.Parse("{{Templates/Greeting|name=Ada}}", markup)
	require.NoError(t, err)

	expanded, err := expandDump(nodes, input, markup)
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada!", wikitext.PlainText(expanded))
}

func TestExpandDump_SubpageOverride(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "Page.wikitext")
	require.NoError(t, os.WriteFile(input, []byte("{{SUBPAGENAME}}"), 0o644))

	dumpSubpage = "Overview"
	defer func() { dumpSubpage = "" }()

	markup := wikitext.DefaultConfig()
	nodes, err := wikitext.Parse("{{SUBPAGENAME}}", markup)
	require.NoError(t, err)

	expanded, err := expandDump(nodes, input, markup)
	require.NoError(t, err)
	assert.Equal(t, "Overview", wikitext.PlainText(expanded))
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "wiki"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wiki", "Main_Page.wikitext"), []byte("hello '''world'''\n"), 0o644))
	out := filepath.Join(t.TempDir(), "out")

	rootCmd.SetArgs([]string{"build", dir, out})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(filepath.Join(out, "wiki", "Main_Page.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<strong>world</strong>")
}
