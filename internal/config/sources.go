package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sources lists the pages the ingestion pipeline scrapes. Kept in a YAML
// file so the knowledge base can be retargeted without a rebuild.
type Sources struct {
	URLs []string `yaml:"urls"`
}

// LoadSources reads the ingestion source list from a YAML file.
func LoadSources(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var src Sources
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	if len(src.URLs) == 0 {
		return nil, fmt.Errorf("sources file %s lists no urls", path)
	}
	return &src, nil
}
