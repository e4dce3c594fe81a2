package github

import (
	"strings"
)

// ParseLinkHeader parses a Link header into a map of relation name to URL.
// Entries look like `<https://api.github.com/...?page=2>; rel="next"`; malformed
// entries are skipped.
func ParseLinkHeader(header string) map[string]string {
	links := make(map[string]string)
	for _, entry := range strings.Split(header, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ";")
		if len(parts) < 2 {
			continue
		}

		target := strings.TrimSpace(parts[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		target = strings.TrimSuffix(strings.TrimPrefix(target, "<"), ">")

		for _, param := range parts[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || strings.TrimSpace(key) != "rel" {
				continue
			}
			for _, rel := range strings.Fields(strings.Trim(strings.TrimSpace(value), `"`)) {
				links[rel] = target
			}
		}
	}
	return links
}
