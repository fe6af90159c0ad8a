package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed terms.yaml
var defaultTableYAML []byte

type Boundary string

const (
	BoundaryWord      Boundary = "word"
	BoundarySubstring Boundary = "substring"
)

type Tier string

const (
	TierCore     Tier = "core"
	TierExtended Tier = "extended"
)

// Family groups the terms of one script or language family, which share a
// boundary rule.
type Family struct {
	Name      string   `yaml:"name"`
	Boundary  Boundary `yaml:"boundary"`
	Languages []string `yaml:"languages"`
	Core      []string `yaml:"core"`
	Extended  []string `yaml:"extended"`
}

func (f Family) terms(tiers map[Tier]bool) []string {
	var out []string
	if tiers[TierCore] {
		out = append(out, f.Core...)
	}
	if tiers[TierExtended] {
		out = append(out, f.Extended...)
	}
	return out
}

type Table struct {
	Version  string   `yaml:"version"`
	Families []Family `yaml:"families"`
	Threats  []string `yaml:"threats"`
}

// DefaultTable returns the table shipped with the binary.
func DefaultTable() (*Table, error) {
	return ParseTable(defaultTableYAML)
}

// LoadTable reads a replacement table from disk. An empty path selects the
// embedded table.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable()
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read term table %s: %w", path, err)
	}
	return ParseTable(data)
}

func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("invalid term table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) Validate() error {
	if len(t.Families) == 0 {
		return fmt.Errorf("invalid term table: no families defined")
	}
	for i, f := range t.Families {
		if f.Name == "" {
			return fmt.Errorf("invalid term table: family at index %d has no name", i)
		}
		switch f.Boundary {
		case BoundaryWord, BoundarySubstring:
		default:
			return fmt.Errorf("invalid term table: family %s has unknown boundary %q", f.Name, f.Boundary)
		}
		for _, term := range append(append([]string{}, f.Core...), f.Extended...) {
			if strings.TrimSpace(term) == "" {
				return fmt.Errorf("invalid term table: family %s contains an empty term", f.Name)
			}
		}
	}
	for _, p := range t.Threats {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid term table: threat pattern %q: %w", p, err)
		}
	}
	return nil
}
