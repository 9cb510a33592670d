// Package seed reads redirect definitions from YAML files for bulk import.
//
//	redirects:
//	  - slug: docs
//	    destination: https://example.com/documentation
package seed

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/daveio/golinks/internal/model"
)

type File struct {
	Redirects []model.Redirect `yaml:"redirects"`
}

// Parse decodes a seed document. Unknown keys and repeated slugs are errors.
func Parse(r io.Reader) ([]model.Redirect, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	seen := make(map[string]int, len(f.Redirects))
	for i, rec := range f.Redirects {
		if rec.Slug == "" {
			return nil, fmt.Errorf("entry %d: slug is required", i)
		}
		if rec.Destination == "" {
			return nil, fmt.Errorf("entry %d (%s): destination is required", i, rec.Slug)
		}
		if j, dup := seen[rec.Slug]; dup {
			return nil, fmt.Errorf("entry %d: slug %q already defined at entry %d", i, rec.Slug, j)
		}
		seen[rec.Slug] = i
	}
	return f.Redirects, nil
}

func ParseFile(path string) ([]model.Redirect, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Parse(fh)
}
