// Package codec encodes benchmark configuration files and run reports.
//
// Both built-in codecs write plain JSON, so a config or report written
// with one reads back with the other. The driver picks one with -codec.
package codec

import (
	"errors"
	"fmt"
)

// ErrUnknownCodec is returned by ByName for a name with no codec.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// Codec marshals configs and reports. Safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Indenter is a Codec that can also write human-readable output.
type Indenter interface {
	MarshalIndent(v any) ([]byte, error)
}

// Default decodes configs and encodes reports when no codec is chosen.
var Default Codec = GoJSON{}

// ByName returns the built-in codec called name ("json" or "go-json").
func ByName(name string) (Codec, error) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

// Pretty marshals v with c, indented when c is an Indenter.
func Pretty(c Codec, v any) ([]byte, error) {
	if in, ok := c.(Indenter); ok {
		return in.MarshalIndent(v)
	}
	return c.Marshal(v)
}
