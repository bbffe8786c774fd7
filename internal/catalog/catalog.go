package catalog

import (
	_ "embed"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the static list of example prompts and departments offered by the UI.
type Catalog struct {
	Prompts     []string `yaml:"prompts"`
	Departments []string `yaml:"departments"`
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "could not parse catalog")
	}
	return &c, nil
}

// Default returns the catalog shipped with the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// Prompt returns the n-th prompt, counting from 1.
func (c *Catalog) Prompt(n int) (string, bool) {
	if n < 1 || n > len(c.Prompts) {
		return "", false
	}
	return c.Prompts[n-1], true
}

// FilterDepartments returns the departments containing query, ignoring case. An empty
// query returns every department.
func (c *Catalog) FilterDepartments(query string) []string {
	needle := strings.ToLower(query)
	matches := make([]string, 0, len(c.Departments))
	for _, d := range c.Departments {
		if strings.Contains(strings.ToLower(d), needle) {
			matches = append(matches, d)
		}
	}
	return matches
}
