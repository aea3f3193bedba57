package rules

import (
	"fmt"
	"os"

	"github.com/buemura/scamscan/pkg/types"
	"gopkg.in/yaml.v3"
)

// Pack is the on-disk format of a YAML rule file.
type Pack struct {
	Rules []types.DetectionRule `yaml:"rules"`
}

// LoadPack reads and validates a YAML rule file.
func LoadPack(path string) ([]types.DetectionRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule pack: %w", err)
	}
	return ParsePack(raw)
}

// ParsePack decodes and validates YAML rule pack content.
func ParsePack(raw []byte) ([]types.DetectionRule, error) {
	var pack Pack
	if err := yaml.Unmarshal(raw, &pack); err != nil {
		return nil, fmt.Errorf("parse rule pack: %w", err)
	}
	if len(pack.Rules) == 0 {
		return nil, fmt.Errorf("rule pack: rules is empty")
	}
	for i, r := range pack.Rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rule pack: rule %d: %w", i, err)
		}
	}
	return pack.Rules, nil
}

// LoadPacks loads every pack in order and concatenates their rules.
func LoadPacks(paths []string) ([]types.DetectionRule, error) {
	var all []types.DetectionRule
	for _, p := range paths {
		loaded, err := LoadPack(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		all = append(all, loaded...)
	}
	return all, nil
}
