package trail

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// FromYAML parses one YAML document into a [ValueSource].
func FromYAML(data []byte) (ValueSource, error) {
	var value any
	if err := yaml.Unmarshal(data, &value); err != nil {
		return ValueSource{}, fmt.Errorf("parse yaml: %w", err)
	}

	return FromValue(value), nil
}

// FromJSON parses a JSON document into a [ValueSource]. JSON is a subset of
// YAML, so the same parser serves both.
func FromJSON(data []byte) (ValueSource, error) {
	var value any
	if err := yaml.Unmarshal(data, &value); err != nil {
		return ValueSource{}, fmt.Errorf("parse json: %w", err)
	}

	return FromValue(value), nil
}
