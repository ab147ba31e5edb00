// Package autoupdate provides configuration management for the dependency table.
package autoupdate

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Error variables for configuration errors
var (
	// ErrDependenciesConfigNotFound is returned when the dependency file does not exist
	ErrDependenciesConfigNotFound = errors.New("dependency file not found")
	// ErrMissingName is returned when a dependency entry has no name
	ErrMissingName = errors.New("missing required field: name")
	// ErrMissingFeed is returned when a dependency entry has no feed
	ErrMissingFeed = errors.New("missing required field: feed")
	// ErrDuplicateDependency is returned when two entries share a name
	ErrDuplicateDependency = errors.New("duplicate dependency name")
	// ErrNoDependencies is returned when the file defines no dependency at all
	ErrNoDependencies = errors.New("no dependencies defined")
	// ErrPageNeedsURL is returned when a scraped dependency uses a repository slug
	ErrPageNeedsURL = errors.New("selector and xpath require an https feed URL")
)

// DependenciesConfig represents a TOML dependency file.
// Entries are kept as an array of tables so the processing order is the file order.
type DependenciesConfig struct {
	// Definitions is an optional default path for the definitions file
	Definitions string `toml:"definitions,omitempty"`
	// Dependencies lists the tracked dependencies in processing order
	Dependencies []Dependency `toml:"dependency"`
}

// DefaultDependenciesConfig returns the built-in configuration.
func DefaultDependenciesConfig() *DependenciesConfig {
	return &DependenciesConfig{
		Definitions:  DefaultDefinitionsFile,
		Dependencies: DefaultDependencies(),
	}
}

// LoadDependenciesConfig loads and validates a TOML dependency file.
func LoadDependenciesConfig(path string) (*DependenciesConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrDependenciesConfigNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dependency file: %w", err)
	}

	var config DependenciesConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse dependency file: %w", err)
	}

	if err := config.ValidateAll(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ValidateDependency checks a single dependency entry for required fields.
func ValidateDependency(index int, dep *Dependency) error {
	if dep.Name == "" {
		return fmt.Errorf("dependency #%d: %w", index+1, ErrMissingName)
	}
	if dep.Feed == "" {
		return fmt.Errorf("dependency %s: %w", dep.Name, ErrMissingFeed)
	}
	if dep.ScrapesPage() && !strings.HasPrefix(dep.Feed, "https:") {
		return fmt.Errorf("dependency %s: %w", dep.Name, ErrPageNeedsURL)
	}
	return nil
}

// ValidateAll validates every entry and rejects duplicate names.
// Returns the first validation error encountered, or nil if all are valid.
func (c *DependenciesConfig) ValidateAll() error {
	if len(c.Dependencies) == 0 {
		return ErrNoDependencies
	}

	seen := make(map[string]bool, len(c.Dependencies))
	for i := range c.Dependencies {
		dep := &c.Dependencies[i]
		if err := ValidateDependency(i, dep); err != nil {
			return err
		}
		if seen[dep.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateDependency, dep.Name)
		}
		seen[dep.Name] = true
	}
	return nil
}

// Save writes the configuration as TOML to path.
func (c *DependenciesConfig) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dependency file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode dependency file: %w", err)
	}
	return nil
}
