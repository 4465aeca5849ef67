package config

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/game.yaml
var defaultGameYAML []byte

// Default returns the built-in rule set. The embedded YAML is the single
// source of truth for default rule values.
func Default() GameConfig {
	var cfg GameConfig
	if err := yaml.Unmarshal(defaultGameYAML, &cfg); err != nil {
		// The embedded default ships with the binary; failing to parse it is
		// a build defect, not a runtime condition.
		panic(fmt.Sprintf("config: embedded default is invalid: %v", err))
	}
	return cfg
}
