// Package jsonv encodes and decodes node values as JSON.
package jsonv

import (
	jsoniter "github.com/json-iterator/go"
)

// JSON is compatible with encoding/json but decodes numbers as json.Number
// so that Normalize can tell integers from floats.
var JSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

// Normalize turns decoded numbers into int when integral and float64
// otherwise, recursively through maps and slices.
func Normalize(v any) any {
	switch x := v.(type) {
	case number:
		if i, err := x.Int64(); err == nil && int64(int(i)) == i {
			return int(i)
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = Normalize(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = Normalize(e)
		}
		return x
	}
	return v
}

// Decode unmarshals data and normalizes the result.
func Decode(data []byte) (any, error) {
	var v any
	if err := JSON.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return Normalize(v), nil
}
