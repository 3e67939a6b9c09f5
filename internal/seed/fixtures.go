package seed

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/catalog-backend/internal/domain/catalog"
)

//go:embed data/products.yaml
var productsYAML []byte

type ProductFixture struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Price       float64  `yaml:"price"`
	Slug        string   `yaml:"slug"`
	Stock       int      `yaml:"stock"`
	Sizes       []string `yaml:"sizes"`
	Gender      string   `yaml:"gender"`
	Tags        []string `yaml:"tags"`
	Images      []string `yaml:"images"`
}

type document struct {
	Products []ProductFixture `yaml:"products"`
}

// Products returns the built-in catalog fixtures.
func Products() ([]ProductFixture, error) {
	return Parse(productsYAML)
}

// Parse decodes a fixture document and checks each entry can be created.
func Parse(raw []byte) ([]ProductFixture, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("seed: decode fixtures: %w", err)
	}
	seen := map[string]int{}
	for i, p := range doc.Products {
		title := strings.TrimSpace(p.Title)
		if title == "" {
			return nil, fmt.Errorf("seed: fixture %d: missing title", i)
		}
		if !catalog.ValidGender(p.Gender) {
			return nil, fmt.Errorf("seed: fixture %q: invalid gender %q", title, p.Gender)
		}
		if prev, ok := seen[strings.ToUpper(title)]; ok {
			return nil, fmt.Errorf("seed: fixture %d duplicates title of fixture %d", i, prev)
		}
		seen[strings.ToUpper(title)] = i
	}
	return doc.Products, nil
}
