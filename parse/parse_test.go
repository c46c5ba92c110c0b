package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	cases := map[string]Format{
		"params.json":   JSON,
		"params.YAML":   YAML,
		"params.yml":    YAML,
		"params.toml":   TOML,
		"params.ini":    KeyValue,
		"params.cfg":    KeyValue,
		"params.conf":   KeyValue,
		"params.txt":    Plain,
		"params":        KeyValue,
		"params.custom": KeyValue,
	}
	for path, want := range cases {
		assert.Equal(t, want, Detect(path), "path %q", path)
	}
}

func TestKeyValue(t *testing.T) {
	content := `
# tuning knobs
[physics]
speed = 2.5
gravity: 9.8
name = "the player"
debug=true
; trailing comment
broken line without separator
= novalue
`
	values, err := Values([]byte(content), KeyValue)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"speed":   "2.5",
		"gravity": "9.8",
		"name":    "the player",
		"debug":   "true",
	}, values)
}

func TestJSONFlatObject(t *testing.T) {
	content := `{"speed": 2.5, "count": 3, "debug": true, "name": "p1", "nested": {"x": 1}, "arr": [1,2], "nothing": null}`
	values, err := Values([]byte(content), JSON)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"speed":   "2.5",
		"count":   "3",
		"debug":   "true",
		"name":    "p1",
		"nothing": "",
	}, values)
}

func TestJSONMalformed(t *testing.T) {
	_, err := Values([]byte(`{"speed": `), JSON)
	assert.Error(t, err)
}

func TestYAMLFlatMapping(t *testing.T) {
	content := "speed: 2.5\ndebug: true\nname: player one\nnested:\n  x: 1\n"
	values, err := Values([]byte(content), YAML)
	require.NoError(t, err)
	assert.Equal(t, "2.5", values["speed"])
	assert.Equal(t, "true", values["debug"])
	assert.Equal(t, "player one", values["name"])
	assert.NotContains(t, values, "nested")
}

func TestTOMLFlatTable(t *testing.T) {
	content := "speed = 2.5\ndebug = true\nname = \"player\"\n[section]\nx = 1\n"
	values, err := Values([]byte(content), TOML)
	require.NoError(t, err)
	assert.Equal(t, "2.5", values["speed"])
	assert.Equal(t, "true", values["debug"])
	assert.Equal(t, "player", values["name"])
	assert.NotContains(t, values, "section")
}

func TestFirstToken(t *testing.T) {
	tok, ok := FirstToken([]byte("# comment\n\n  2.5  \nrest\n"))
	require.True(t, ok)
	assert.Equal(t, "2.5", tok)

	_, ok = FirstToken([]byte("# only comments\n; here\n"))
	assert.False(t, ok)
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "abc", Unquote(`"abc"`))
	assert.Equal(t, "abc", Unquote(`'abc'`))
	assert.Equal(t, `"abc'`, Unquote(`"abc'`))
	assert.Equal(t, "x", Unquote("x"))
}
