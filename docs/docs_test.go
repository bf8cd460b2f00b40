package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ruleflow-dev/ruleflow/assert"
	"github.com/ruleflow-dev/ruleflow/codec"
	"github.com/ruleflow-dev/ruleflow/docs"
)

const navSource = `nav:
  - Quickstart:
      - About: index.md
      - Install: quickstart/install.md
  - Citing: citing.md
`

func TestParseSectionsAndLeaves(t *testing.T) {
	m, err := docs.Parse([]byte(navSource))
	assert.NilError(t, err)
	assert.Len(t, m.Nav, 2)

	quickstart := m.Nav[0]
	assert.Equal(t, quickstart.Title, "Quickstart")
	assert.True(t, quickstart.IsSection())
	assert.Len(t, quickstart.Pages, 2)
	assert.Equal(t, quickstart.Pages[1].Path, "quickstart/install.md")

	citing := m.Nav[1]
	assert.False(t, citing.IsSection())
	assert.Equal(t, citing.Path, "citing.md")
}

func TestParseRejectsBadShapes(t *testing.T) {
	_, err := docs.Parse([]byte(`nav: []`))
	assert.ErrorContains(t, err, "no nav entries")

	_, err = docs.Parse([]byte("nav:\n  - About: {a: b}\n"))
	assert.Assert(t, err != nil)
}

func TestPagesAreFlattenedInOrder(t *testing.T) {
	m, err := docs.Parse([]byte(navSource))
	assert.NilError(t, err)

	pages := m.Pages()
	assert.Len(t, pages, 3)
	assert.Equal(t, pages[0].Title, "About")
	assert.Equal(t, pages[2].Title, "Citing")
}

func TestValidateResolvesPaths(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"index.md", "quickstart/install.md"} {
		full := filepath.Join(root, p)
		assert.NilError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		assert.NilError(t, os.WriteFile(full, []byte("# page\n"), 0o644))
	}

	m, err := docs.Parse([]byte(navSource))
	assert.NilError(t, err)

	err = m.Validate(root)
	assert.ErrorContains(t, err, "citing.md does not resolve")

	assert.NilError(t, os.WriteFile(filepath.Join(root, "citing.md"), []byte("# cite\n"), 0o644))
	assert.NilError(t, m.Validate(root))
}

func TestRenderSeparatesTrailingLinks(t *testing.T) {
	m, err := docs.Parse([]byte(navSource))
	assert.NilError(t, err)

	rendered := m.Render()
	assert.Equal(t, rendered, strings.Join([]string{
		"Quickstart",
		"  About -> index.md",
		"  Install -> quickstart/install.md",
		"---",
		"Citing -> citing.md",
	}, "\n")+"\n")
}

func TestDefaultManifestIsWellFormed(t *testing.T) {
	m := docs.Default()
	assert.True(t, len(m.Nav) > 0)
	assert.Equal(t, m.Nav[0].Title, "Quickstart")

	pages := m.Pages()
	assert.True(t, len(pages) >= 10)
	for _, p := range pages {
		assert.True(t, strings.HasSuffix(p.Path, ".md"))
	}

	bz, err := m.JSON()
	assert.NilError(t, err)
	decoded, err := codec.Decode[docs.Manifest](bz)
	assert.NilError(t, err)
	assert.Len(t, decoded.Nav, len(m.Nav))
}

func TestDefaultManifestResolvesAgainstWebsite(t *testing.T) {
	assert.NilError(t, docs.Default().Validate(filepath.Join("..", "website")))
}
