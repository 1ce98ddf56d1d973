package docsystem

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// CatalogEntry is one requirement created by SeedDefaults
type CatalogEntry struct {
	Category    string
	Name        string
	Description string
	IsRequired  bool
}

// Catalog is the ordered list of standard requirements for a new deal
type Catalog []CatalogEntry

type catalogFile struct {
	Categories []struct {
		Name         string `yaml:"name"`
		Requirements []struct {
			Name        string `yaml:"name"`
			Description string `yaml:"description"`
			Required    bool   `yaml:"required"`
		} `yaml:"requirements"`
	} `yaml:"categories"`
}

// DefaultCatalog returns the built-in catalog
func DefaultCatalog() Catalog {
	catalog, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded requirement catalog: %v", err))
	}
	return catalog
}

// LoadCatalog reads a catalog from path, or returns the built-in one when path is empty
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requirement catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog. Entries must have a category and
// name, and a (category, name) pair may appear only once.
func ParseCatalog(data []byte) (Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse requirement catalog: %w", err)
	}

	var catalog Catalog
	seen := make(map[string]struct{})
	for _, category := range file.Categories {
		categoryName := strings.TrimSpace(category.Name)
		if categoryName == "" {
			return nil, fmt.Errorf("requirement catalog: category without a name")
		}
		for _, req := range category.Requirements {
			name := strings.TrimSpace(req.Name)
			if name == "" {
				return nil, fmt.Errorf("requirement catalog: unnamed requirement in %q", categoryName)
			}
			key := categoryName + "\x00" + name
			if _, dup := seen[key]; dup {
				return nil, fmt.Errorf("requirement catalog: duplicate %q in %q", name, categoryName)
			}
			seen[key] = struct{}{}

			catalog = append(catalog, CatalogEntry{
				Category:    categoryName,
				Name:        name,
				Description: strings.TrimSpace(req.Description),
				IsRequired:  req.Required,
			})
		}
	}

	if len(catalog) == 0 {
		return nil, fmt.Errorf("requirement catalog is empty")
	}
	return catalog, nil
}
