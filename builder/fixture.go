package builder

import (
	"errors"
	"reflect"

	"gopkg.in/yaml.v3"
)

// WithYAML configures literal values from a YAML mapping of path
// expressions to values. Each value is decoded into the type of the field
// its path resolves to:
//
//	x.Name: Ada
//	x.Address.City: Oslo
//	x.Tags: [a, b]
//	'x.Limits["cpu"]': 2
//
// Entries are applied in document order and stop at the first error.
func (b *Builder[T]) WithYAML(doc []byte) (*Builder[T], error) {
	if b == nil {
		return nil, ErrNilBuilder
	}

	var root yaml.Node
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return b, FixtureError{Cause: err}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return b, nil
	}

	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return b, FixtureError{Line: mapping.Line, Cause: errors.New("top level must be a mapping of paths to values")}
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode, valNode := mapping.Content[i], mapping.Content[i+1]
		err := b.set(keyNode.Value, true, func(label string, typ reflect.Type) (producer, error) {
			ptr := reflect.New(typ)
			if err := valNode.Decode(ptr.Interface()); err != nil {
				return producer{}, err
			}
			return producer{kind: literalProducer, literal: ptr.Elem()}, nil
		})
		if err != nil {
			return b, FixtureError{Path: keyNode.Value, Line: keyNode.Line, Cause: err}
		}
	}
	return b, nil
}
