// Package annotations holds the hand-authored table of titles the timeline
// calls out, keyed by catalog title.
package annotations

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed important.yaml
var embedded []byte

// ErrDecode is returned when an annotation table cannot be parsed.
var ErrDecode = errors.New("decode annotations failed")

// Annotation is the metadata shown next to an important title.
type Annotation struct {
	Note    string `yaml:"note" json:"note"`
	Tagline string `yaml:"tagline,omitempty" json:"tagline,omitempty"`
}

// Table maps a catalog title to its annotation.
type Table map[string]Annotation

// Embedded returns the table compiled into the binary.
func Embedded() (Table, error) {
	return Parse(embedded)
}

// Load reads a table from a YAML file.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("annotations.load: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML table.
func Parse(data []byte) (Table, error) {
	t := Table{}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return t, nil
}

// Lookup returns the annotation for title.
func (t Table) Lookup(title string) (Annotation, bool) {
	a, ok := t[title]
	return a, ok
}

// Titles returns the annotated titles in sorted order.
func (t Table) Titles() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
