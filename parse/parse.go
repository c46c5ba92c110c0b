// Package parse turns raw parameter-file bytes into a flat map of string
// keys to string-serialized values. Only top-level scalars are extracted;
// nested objects and arrays are skipped. Formats are detected from the file
// extension, with key=value as the general-purpose default.
package parse

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a supported file syntax.
type Format int

const (
	// Auto detects the format from the file extension.
	Auto Format = iota
	// Plain is free text, one value per line.
	Plain
	// KeyValue is INI-style key=value (also accepts key: value).
	KeyValue
	// JSON is a flat JSON object.
	JSON
	// YAML is a flat YAML mapping.
	YAML
	// TOML is a flat TOML table.
	TOML
)

func (f Format) String() string {
	switch f {
	case Plain:
		return "plain"
	case KeyValue:
		return "keyvalue"
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	default:
		return "auto"
	}
}

// Detect determines the format of path from its extension. KeyValue is the
// default for unknown extensions.
func Detect(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".yaml", ".yml":
		return YAML
	case ".toml":
		return TOML
	case ".ini", ".cfg", ".conf":
		return KeyValue
	case ".txt":
		return Plain
	default:
		return KeyValue
	}
}

// Values parses data in the given format into a flat key/value map. An
// error is returned only when the document is malformed and produced no
// entries; a partial parse with at least one entry is accepted.
func Values(data []byte, format Format) (map[string]string, error) {
	switch format {
	case JSON:
		return jsonValues(data)
	case YAML:
		return yamlValues(data)
	case TOML:
		return tomlValues(data)
	default:
		return keyValueValues(data)
	}
}

func jsonValues(data []byte) (map[string]string, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return flatten(doc), nil
}

func yamlValues(data []byte) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return flatten(doc), nil
}

func tomlValues(data []byte) (map[string]string, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	return flatten(doc), nil
}

// flatten keeps top-level scalars and stringifies them; nested structures
// are dropped.
func flatten(doc map[string]any) map[string]string {
	out := make(map[string]string, len(doc))
	for key, val := range doc {
		if s, ok := scalarString(val); ok {
			out[key] = s
		}
	}
	return out
}

func scalarString(val any) (string, bool) {
	switch v := val.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}

// FirstToken returns the first non-empty, non-comment line of data, for the
// single unnamed value use case. The second return is false when no such
// line exists.
func FirstToken(data []byte) (string, bool) {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		return line, true
	}
	return "", false
}

// Unquote strips one level of matching single or double quotes.
func Unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
