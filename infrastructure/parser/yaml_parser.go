// Package parser reads event and context fixtures. YAML is a superset of
// JSON, so both formats are accepted.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/lambda-bridge/domain/entities"
	"github.com/reglet-dev/lambda-bridge/domain/ports"
)

// YamlFixtureParser implements FixtureParser for YAML and JSON documents.
type YamlFixtureParser struct{}

// NewYamlFixtureParser creates a new YamlFixtureParser.
func NewYamlFixtureParser() ports.FixtureParser {
	return &YamlFixtureParser{}
}

// ParseEvent unmarshals a document into nil, bool, int, uint64, float64,
// string, []any and map[string]any values. Integer and float literals stay
// distinct. An empty document is a null event.
func (p *YamlFixtureParser) ParseEvent(data []byte) (any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	event, err := normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	return event, nil
}

// ParseContext unmarshals a context fixture.
func (p *YamlFixtureParser) ParseContext(data []byte) (*entities.ContextFixture, error) {
	var fixture entities.ContextFixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fixture); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse context: %w", err)
	}
	return &fixture, nil
}

// normalize rewrites yaml.v3 output into the shapes the codec accepts.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			n, err := normalize(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			t[k] = n
		}
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("mapping key %v is not a string", k)
			}
			n, err := normalize(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = n
		}
		return out, nil
	case []any:
		for i, item := range t {
			n, err := normalize(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			t[i] = n
		}
		return t, nil
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	default:
		return v, nil
	}
}
