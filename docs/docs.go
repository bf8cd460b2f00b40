// Package docs models the documentation navigation manifest: the ordered
// tree of titles and page paths a site generator builds the table of
// contents from. The manifest source format is YAML; entries are either
// `Title: path` leaves or `Title:` sections holding more entries.
package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/ruleflow-dev/ruleflow/codec"
)

// Entry is one node of the navigation tree. A leaf has a Path; a section
// has Pages.
type Entry struct {
	Title string  `json:"title"`
	Path  string  `json:"path,omitempty"`
	Pages []Entry `json:"pages,omitempty"`
}

// Manifest is a whole navigation tree.
type Manifest struct {
	Nav []Entry `yaml:"nav" json:"nav"`
}

// UnmarshalYAML reads the single-key mapping form used by site generators:
// a scalar value is a page path, a sequence value is a nested section.
func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode || len(value.Content) != 2 {
		return eris.New("nav entries must be single-key mappings")
	}
	key, val := value.Content[0], value.Content[1]
	e.Title = key.Value
	switch val.Kind {
	case yaml.ScalarNode:
		e.Path = val.Value
		return nil
	case yaml.SequenceNode:
		return eris.Wrap(val.Decode(&e.Pages), "")
	}
	return eris.Errorf("nav entry %q must map to a path or a list of entries", e.Title)
}

// MarshalYAML writes the entry back in its single-key mapping form.
func (e Entry) MarshalYAML() (any, error) {
	if len(e.Pages) > 0 {
		return map[string][]Entry{e.Title: e.Pages}, nil
	}
	return map[string]string{e.Title: e.Path}, nil
}

// IsSection reports whether the entry holds nested entries instead of a
// page.
func (e Entry) IsSection() bool {
	return len(e.Pages) > 0
}

// Parse reads a YAML navigation manifest.
func Parse(source []byte) (*Manifest, error) {
	m := new(Manifest)
	if err := yaml.Unmarshal(source, m); err != nil {
		return nil, eris.Wrap(err, "parsing navigation manifest")
	}
	if len(m.Nav) == 0 {
		return nil, eris.New("navigation manifest has no nav entries")
	}
	return m, nil
}

// ParseFile reads a YAML navigation manifest from disk.
func ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return Parse(data)
}

// Pages returns every leaf entry in document order.
func (m *Manifest) Pages() []Entry {
	var out []Entry
	var walk func(entries []Entry)
	walk = func(entries []Entry) {
		for _, e := range entries {
			if e.IsSection() {
				walk(e.Pages)
				continue
			}
			out = append(out, e)
		}
	}
	walk(m.Nav)
	return out
}

// Validate checks that every page path resolves to a file under root and
// that no entry is missing a title.
func (m *Manifest) Validate(root string) error {
	var problems []string
	var walk func(entries []Entry)
	walk = func(entries []Entry) {
		for _, e := range entries {
			if e.Title == "" {
				problems = append(problems, "entry with empty title")
			}
			if e.IsSection() {
				walk(e.Pages)
				continue
			}
			if e.Path == "" {
				problems = append(problems, fmt.Sprintf("%s: no path", e.Title))
				continue
			}
			if _, err := os.Stat(filepath.Join(root, e.Path)); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %s does not resolve", e.Title, e.Path))
			}
		}
	}
	walk(m.Nav)
	if len(problems) > 0 {
		return eris.Errorf("invalid navigation manifest:\n\t%s", strings.Join(problems, "\n\t"))
	}
	return nil
}

// Render writes the manifest in its plain text form: sections with their
// pages indented, and a separator before the trailing top-level links.
func (m *Manifest) Render() string {
	var sb strings.Builder
	separated := false
	sawSection := false
	var walk func(entries []Entry, indent int)
	walk = func(entries []Entry, indent int) {
		prefix := strings.Repeat("  ", indent)
		for _, e := range entries {
			if e.IsSection() {
				sawSection = true
				fmt.Fprintf(&sb, "%s%s\n", prefix, e.Title)
				walk(e.Pages, indent+1)
				continue
			}
			if indent == 0 && sawSection && !separated {
				sb.WriteString("---\n")
				separated = true
			}
			fmt.Fprintf(&sb, "%s%s -> %s\n", prefix, e.Title, e.Path)
		}
	}
	walk(m.Nav, 0)
	return sb.String()
}

// JSON renders the manifest for the server's navigation endpoint.
func (m *Manifest) JSON() ([]byte, error) {
	return codec.Encode(m)
}
