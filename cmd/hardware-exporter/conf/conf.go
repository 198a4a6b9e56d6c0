// Package conf contains the configuration structs for the hardware exporter.
package conf

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type Conf struct {
	// Port is the scrape endpoint port.
	Port int
	// Level is the minimum log level: debug, info, warning, or error.
	Level string
	// Hostname overrides the system hostname on exported records.
	Hostname string
	// Freq is the default collection frequency in seconds.
	Freq int
	// CollectTimeout bounds each tool invocation, in seconds.
	CollectTimeout int
	// ToolsDir is where binary resource slots are installed.
	ToolsDir string
	// ResourceDir holds the operator-attached resource slot files.
	ResourceDir string
	// RulesDir holds the alert rule files validated by -validate-rules.
	RulesDir string
	// Collectors explicitly selects collectors by name, overriding tool
	// detection. Empty means all detected.
	Collectors []string
	// Filter filters collectors matching these terms.
	Filter []string
	// Tags are added to every exported record. The host tag is managed by
	// the exporter and cannot be set here.
	Tags map[string]string

	Redfish Redfish
}

// Redfish holds the BMC connection parameters. An empty host disables the
// redfish collector.
type Redfish struct {
	Host     string
	Username string
	Password string
}

// Load reads the TOML config at path, or returns the defaults when path is
// empty.
func Load(path string) (*Conf, error) {
	c := &Conf{
		Port:           10200,
		Level:          "info",
		Freq:           60,
		CollectTimeout: 30,
		ToolsDir:       "/usr/sbin",
		ResourceDir:    "/var/lib/hardware-exporter/resources",
		RulesDir:       "/etc/hardware-exporter/rules",
	}
	if path == "" {
		return c, nil
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, err
	}
	if c.Port <= 0 || c.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Freq <= 0 {
		return nil, fmt.Errorf("invalid freq %d", c.Freq)
	}
	if c.CollectTimeout <= 0 {
		return nil, fmt.Errorf("invalid collect timeout %d", c.CollectTimeout)
	}
	if _, ok := c.Tags["host"]; ok {
		return nil, fmt.Errorf("the host tag cannot be set in config")
	}
	return c, nil
}
