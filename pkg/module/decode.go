package module

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Decode reads a definition written in YAML or JSON.
func Decode(data []byte) (Definition, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", domain.ErrInvalidModule, err)
	}
	return DecodeMap(raw)
}

// DecodeMap reads a definition from generic data, such as document frontmatter.
// Unknown keys are rejected so that typos do not silently drop rules.
func DecodeMap(raw map[string]any) (Definition, error) {
	var def Definition
	cfg := &mapstructure.DecoderConfig{
		Result:           &def,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return Definition{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", domain.ErrInvalidModule, err)
	}
	return def, nil
}

// Load decodes and compiles a definition.
func Load(data []byte) (*Module, error) {
	def, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Compile(def)
}
