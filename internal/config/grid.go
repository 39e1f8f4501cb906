package config

import (
	"fmt"
	"os"
	"strings"

	"quantlab/internal/engine"
	"quantlab/types"

	"gopkg.in/yaml.v3"
)

// LoadParamGrid reads a YAML mapping of parameter name to candidate values:
//
//	short_period: [5, 8, 12]
//	long_period: [20, 26]
func LoadParamGrid(path string) (types.ParamGrid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grid %s: %w", path, err)
	}
	return ParseParamGrid(data)
}

func ParseParamGrid(data []byte) (types.ParamGrid, error) {
	var raw map[string][]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse grid: %v", engine.ErrInvalidConfig, err)
	}
	if len(raw) == 0 {
		return nil, engine.ErrEmptyParamGrid
	}
	grid := make(types.ParamGrid, len(raw))
	for name, values := range raw {
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: no values for %q", engine.ErrEmptyParamGrid, name)
		}
		grid[name] = values
	}
	return grid, nil
}

// ParseParams turns command line pairs such as "short_period=8" into Params.
// Values are read as YAML scalars, so 8 is an int and 0.5 a float.
func ParseParams(pairs []string) (types.Params, error) {
	out := make(types.Params, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: expected name=value, got %q", engine.ErrInvalidParams, pair)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
			value = strings.TrimSpace(raw)
		}
		out[name] = value
	}
	return out, nil
}
