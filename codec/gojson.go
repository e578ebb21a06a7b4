package codec

import gojson "github.com/goccy/go-json"

// GoJSON uses github.com/goccy/go-json and is the default.
type GoJSON struct{}

func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

func (GoJSON) MarshalIndent(v any) ([]byte, error) { return gojson.MarshalIndent(v, "", "  ") }

func (GoJSON) Name() string { return "go-json" }
