package property

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Serialization is a one-way boundary: a property is written as its current
// value and read back as a disconnected literal.

func (p *Property[T]) MarshalJSON() ([]byte, error) {
	v, err := p.TryGet()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func (p *Property[T]) MarshalYAML() (any, error) {
	v, err := p.TryGet()
	if err != nil {
		return nil, err
	}
	return v, nil
}

func FromJSON[T any](tbl *Table, data []byte) (*Property[T], error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s from json: %w", typeOf[T](), err)
	}
	return LiteralWithName(tbl, v, deserializedLabel[T]()), nil
}

func FromYAML[T any](tbl *Table, data []byte) (*Property[T], error) {
	var v T
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s from yaml: %w", typeOf[T](), err)
	}
	return LiteralWithName(tbl, v, deserializedLabel[T]()), nil
}

func deserializedLabel[T any]() string {
	return fmt.Sprintf("from deserialized (%s)", typeOf[T]())
}
