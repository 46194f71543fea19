package wikitext

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpJSON_Shape(t *testing.T) {
	nodes := mustParse(t, "== H ==\n{{Box|title=Hi}} {{{p|d}}}")
	data, err := DumpJSON(nodes)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 4)

	assert.Equal(t, "heading", decoded[0]["kind"])
	assert.Equal(t, float64(2), decoded[0]["level"])

	assert.Equal(t, "template", decoded[1]["kind"])
	assert.Equal(t, "Box", decoded[1]["name"])
	params := decoded[1]["parameters"].([]any)
	require.Len(t, params, 1)
	assert.Equal(t, map[string]any{"name": "title", "value": "Hi"}, params[0])

	assert.Equal(t, "text", decoded[2]["kind"])

	assert.Equal(t, "parameter", decoded[3]["kind"])
	assert.Equal(t, "p", decoded[3]["name"])
	def := decoded[3]["default"].([]any)
	require.Len(t, def, 1)
	assert.Equal(t, "text", def[0].(map[string]any)["kind"])
}

func TestDumpJSON_Deterministic(t *testing.T) {
	nodes := mustParse(t, "{| class=\"x\"\n|-\n| a\n| b\n|}")
	first, err := DumpJSON(nodes)
	require.NoError(t, err)
	second, err := DumpJSON(nodes)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestDumpJSON_OmitsAbsentDefault(t *testing.T) {
	data, err := DumpJSON([]Node{&TemplateParameterUse{Name: "p"}})
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	_, present := decoded[0]["default"]
	assert.False(t, present)
}
