package tools

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Tool is one function advertised to the assistant.
type Tool struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Parameters  map[string]any `yaml:"parameters" json:"parameters"`
}

// Catalog is the versioned, closed list of tools.
type Catalog struct {
	Version int    `yaml:"version" json:"version"`
	Tools   []Tool `yaml:"tools" json:"tools"`
}

// Names returns the tool names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.Tools))
	for _, t := range c.Tools {
		out = append(out, t.Name)
	}
	sort.Strings(out)
	return out
}

// Lookup finds a tool by name.
func (c *Catalog) Lookup(name string) (Tool, bool) {
	for _, t := range c.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

var (
	catalogOnce sync.Once
	catalog     *Catalog
	catalogErr  error
)

// LoadCatalog decodes the embedded catalog once.
func LoadCatalog() (*Catalog, error) {
	catalogOnce.Do(func() {
		catalog, catalogErr = parseCatalog(catalogYAML)
	})
	return catalog, catalogErr
}

func parseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode tool catalog: %w", err)
	}
	if c.Version <= 0 {
		return nil, fmt.Errorf("tool catalog: missing version")
	}
	seen := map[string]bool{}
	for i, t := range c.Tools {
		if t.Name == "" {
			return nil, fmt.Errorf("tool catalog: entry %d has no name", i)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("tool catalog: duplicate tool %q", t.Name)
		}
		seen[t.Name] = true
		if t.Parameters == nil {
			c.Tools[i].Parameters = map[string]any{"type": "object", "properties": map[string]any{}}
		}
	}
	return &c, nil
}
