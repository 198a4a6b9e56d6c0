// Package manifest validates the add-on's deployment descriptor: the
// subordinate unit declaration with its resource slots and relation
// endpoints.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Manifest is the deployment descriptor.
type Manifest struct {
	Name        string              `yaml:"name"`
	Summary     string              `yaml:"summary,omitempty"`
	Description string              `yaml:"description,omitempty"`
	Subordinate bool                `yaml:"subordinate"`
	Resources   map[string]Resource `yaml:"resources"`
	Provides    map[string]Relation `yaml:"provides"`
	Requires    map[string]Relation `yaml:"requires"`
}

// Resource is a named file slot an operator can attach.
type Resource struct {
	Type        string `yaml:"type"`
	Filename    string `yaml:"filename,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Relation is one relation endpoint.
type Relation struct {
	Interface string `yaml:"interface"`
	Limit     int    `yaml:"limit,omitempty"`
	Scope     string `yaml:"scope,omitempty"`
}

// Load reads and decodes a descriptor file.
func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.UnmarshalStrict(b, &m); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return &m, nil
}

// Validate enforces the descriptor contract: the unit is subordinate, every
// resource is a typed file slot, the telemetry endpoint is provided as a
// singleton, and the host-info endpoint is required with container scope.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if !m.Subordinate {
		return fmt.Errorf("descriptor must declare subordinate: true")
	}
	for name, r := range m.Resources {
		if r.Type != "file" {
			return fmt.Errorf("resource %q: type must be file, got %q", name, r.Type)
		}
		if r.Filename == "" {
			return fmt.Errorf("resource %q: filename must not be empty", name)
		}
	}
	ca, ok := m.Provides["cos-agent"]
	if !ok {
		return fmt.Errorf("provides must declare cos-agent")
	}
	if ca.Interface != "cos_agent" {
		return fmt.Errorf("cos-agent: interface must be cos_agent, got %q", ca.Interface)
	}
	if ca.Limit != 1 {
		return fmt.Errorf("cos-agent: limit must be 1, got %d", ca.Limit)
	}
	gi, ok := m.Requires["general-info"]
	if !ok {
		return fmt.Errorf("requires must declare general-info")
	}
	if gi.Interface != "juju-info" {
		return fmt.Errorf("general-info: interface must be juju-info, got %q", gi.Interface)
	}
	if gi.Scope != "container" {
		return fmt.Errorf("general-info: scope must be container, got %q", gi.Scope)
	}
	return nil
}
