package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlCatalog mirrors the YAML declaration of a catalog.
type yamlCatalog struct {
	Tables  []yamlTable  `yaml:"tables"`
	Metrics []yamlMetric `yaml:"metrics"`
}

type yamlTable struct {
	Name    string       `yaml:"name"`
	Fields  []yamlField  `yaml:"fields"`
	Metrics []yamlMetric `yaml:"metrics"`
}

type yamlField struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type yamlMetric struct {
	Name       string `yaml:"name"`
	Definition string `yaml:"definition"`
}

// LoadYAML loads a catalog from one YAML file.
func LoadYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	c, err := DecodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// DecodeYAML builds a catalog from YAML bytes. Table-level metrics are
// scoped to their table; top-level metrics are visible from every
// table.
func DecodeYAML(data []byte) (*Catalog, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}

	c := New()
	for _, t := range doc.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("table with no name")
		}
		for _, f := range t.Fields {
			if _, err := c.AddField(t.Name, f.Name, f.Type); err != nil {
				return nil, err
			}
		}
		for _, m := range t.Metrics {
			if _, err := c.AddMetric(t.Name, m.Name, m.Definition); err != nil {
				return nil, err
			}
		}
	}
	for _, m := range doc.Metrics {
		if _, err := c.AddMetric("", m.Name, m.Definition); err != nil {
			return nil, err
		}
	}

	if len(c.Fields()) == 0 && len(c.Metrics()) == 0 {
		return nil, fmt.Errorf("catalog declares no tables or metrics")
	}
	return c, nil
}
