// Package crewfile loads and saves crew definitions from YAML files,
// letting users define their own crews without touching Go code.
package crewfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"crewforge/pkg/models"
)

// DefaultName is the crew file looked for when no path is given.
const DefaultName = "crew.yaml"

// Load reads and validates a crew definition from a YAML file.
func Load(path string) (*models.Crew, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading crew file: %w", err)
	}

	var c models.Crew
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if c.Process == "" {
		c.Process = models.ProcessSequential
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// Save writes a crew definition to a YAML file. Used by 'crewforge init'
// to scaffold editable copies of built-in crews.
func Save(c *models.Crew, path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding crew: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}

	return os.WriteFile(path, data, 0644)
}

// Exists reports whether a crew file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
