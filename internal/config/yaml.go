package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// jsonDocument returns data as JSON. Files named *.yaml or *.yml are
// decoded as YAML and re-encoded; anything else is passed through.
func jsonDocument(path string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return data, nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	doc, err := stringKeys(doc)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return out, nil
}

// stringKeys rewrites nested mappings so encoding/json accepts them.
// Non-string keys are rejected: no configuration key is numeric.
func stringKeys(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			ne, err := stringKeys(e)
			if err != nil {
				return nil, err
			}
			x[k] = ne
		}
		return x, nil
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("yaml: mapping key %v is not a string", k)
			}
			ne, err := stringKeys(e)
			if err != nil {
				return nil, err
			}
			out[ks] = ne
		}
		return out, nil
	case []any:
		for i, e := range x {
			ne, err := stringKeys(e)
			if err != nil {
				return nil, err
			}
			x[i] = ne
		}
		return x, nil
	}
	return v, nil
}
