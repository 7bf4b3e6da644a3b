package stylebook

import (
	"fmt"

	"github.com/dgallion1/blockbook/internal/block"
	"gopkg.in/yaml.v3"
)

// YamlExample is the YAML form of a catalog entry; blocks are kept as markup.
type YamlExample struct {
	Name     string `yaml:"name"`
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
	Markup   string `yaml:"markup"`
}

// YamlBook is the exported style book.
type YamlBook struct {
	Tabs     []Tab         `yaml:"tabs"`
	Examples []YamlExample `yaml:"examples"`
}

// ExportYAML writes the catalog and its tabs as YAML, in catalog order.
func ExportYAML(examples []Example, tabs []Tab) ([]byte, error) {
	out := YamlBook{
		Tabs:     tabs,
		Examples: make([]YamlExample, 0, len(examples)),
	}
	if out.Tabs == nil {
		out.Tabs = []Tab{}
	}
	for _, ex := range examples {
		out.Examples = append(out.Examples, YamlExample{
			Name:     ex.Name,
			Title:    ex.Title,
			Category: ex.Category,
			Markup:   block.Serialize(ex.Blocks),
		})
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal style book: %w", err)
	}
	return data, nil
}
