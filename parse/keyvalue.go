package parse

import "strings"

// keyValueValues parses INI-style content. Lines outside any recognized
// shape are skipped rather than treated as fatal: a half-saved file should
// still yield the entries that survived.
func keyValueValues(data []byte) (map[string]string, error) {
	out := make(map[string]string)

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)

		// Comments and blanks
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		// YAML document markers
		if line == "---" || line == "..." {
			continue
		}
		// INI section headers
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			continue
		}

		// key=value preferred, key: value accepted
		sep := strings.Index(line, "=")
		if sep < 0 {
			sep = strings.Index(line, ":")
		}
		if sep < 0 {
			continue
		}

		key := strings.TrimSpace(line[:sep])
		value := Unquote(strings.TrimSpace(line[sep+1:]))
		if key != "" {
			out[key] = value
		}
	}

	return out, nil
}
