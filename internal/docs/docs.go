// Package docs ships the built-in help pages shown by `flowboard docs`.
package docs

import (
	"embed"
	"sort"
	"strings"
)

//go:embed content
var pages embed.FS

const contentDir = "content"

// Topic is one built-in help page.
type Topic struct {
	Name     string
	Markdown string
}

// All returns every built-in topic, sorted by name.
func All() []Topic {
	entries, err := pages.ReadDir(contentDir)
	if err != nil {
		return nil
	}
	out := make([]Topic, 0, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".md")
		if !ok || name == "" {
			continue
		}
		body, err := pages.ReadFile(contentDir + "/" + e.Name())
		if err != nil {
			continue
		}
		out = append(out, Topic{Name: name, Markdown: string(body)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup finds one topic by name. Names are matched case-insensitively.
func Lookup(name string) (Topic, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Topic{}, false
	}
	body, err := pages.ReadFile(contentDir + "/" + name + ".md")
	if err != nil {
		return Topic{}, false
	}
	return Topic{Name: name, Markdown: string(body)}, true
}
