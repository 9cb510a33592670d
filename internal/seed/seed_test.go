package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daveio/golinks/internal/model"
)

func TestParse(t *testing.T) {
	doc := `
redirects:
  - slug: docs
    destination: https://example.com/documentation
  - slug: blog
    destination: /blog
`
	recs, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []model.Redirect{
		{Slug: "docs", Destination: "https://example.com/documentation"},
		{Slug: "blog", Destination: "/blog"},
	}, recs)
}

func TestParse_Empty(t *testing.T) {
	recs, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestParse_Errors(t *testing.T) {
	testCases := map[string]string{
		"unknown field":       "redirects:\n  - slug: a\n    url: https://example.com\n",
		"missing slug":        "redirects:\n  - destination: https://example.com\n",
		"missing destination": "redirects:\n  - slug: a\n",
		"duplicate slug":      "redirects:\n  - slug: a\n    destination: /x\n  - slug: a\n    destination: /y\n",
		"not yaml":            "redirects: [\n",
	}

	for name, doc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redirects.yaml")
	require.NoError(t, os.WriteFile(path, []byte("redirects:\n  - slug: docs\n    destination: /docs\n"), 0o600))

	recs, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "docs", recs[0].Slug)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
