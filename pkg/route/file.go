package route

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Declaration is one entry of a route-definition file.
// Handler is a reference resolved by the caller.
type Declaration struct {
	Method  string `yaml:"method"`
	Pattern string `yaml:"pattern"`
	Handler string `yaml:"handler"`
	Name    string `yaml:"name,omitempty"`
}

type definitionsFile struct {
	Routes []Declaration `yaml:"routes"`
}

// LoadDefinitions decodes a YAML route-definition file.
// Patterns and methods are validated on registration, not here.
func LoadDefinitions(r io.Reader) ([]Declaration, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f definitionsFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.Join(ErrInvalidDefinitions, err)
	}

	for i, d := range f.Routes {
		switch {
		case d.Method == "":
			return nil, fmt.Errorf("%w: route #%d: missing method", ErrInvalidDefinitions, i)
		case d.Pattern == "":
			return nil, fmt.Errorf("%w: route #%d: missing pattern", ErrInvalidDefinitions, i)
		case d.Handler == "":
			return nil, fmt.Errorf("%w: route #%d: missing handler reference", ErrInvalidDefinitions, i)
		}
	}
	return f.Routes, nil
}
