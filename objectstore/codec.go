package objectstore

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"encoding/json"
	"fmt"
)

// Codec converts application values to and from the text stored in the data
// column. Values that cannot be represented (channels, funcs, open handles)
// must be rejected by Marshal.
type Codec interface {
	Name() string
	Marshal(v any) (string, error)
	Unmarshal(data string, v any) error
}

// JSONCodec stores values as JSON. Types may customize their encoding by
// implementing json.Marshaler and json.Unmarshaler.
type JSONCodec struct{}

// Name implements Codec
func (JSONCodec) Name() string { return "json" }

// Marshal implements Codec
func (JSONCodec) Marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Unmarshal implements Codec
func (JSONCodec) Unmarshal(data string, v any) error {
	return json.Unmarshal([]byte(data), v)
}

// GobCodec stores values as base64 encoded gob. Concrete types stored behind
// interfaces must be registered with gob.Register.
type GobCodec struct{}

// Name implements Codec
func (GobCodec) Name() string { return "gob" }

// Marshal implements Codec
func (GobCodec) Marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Unmarshal implements Codec
func (GobCodec) Unmarshal(data string, v any) error {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return fmt.Errorf("failed to decode value: %w", err)
	}
	dec := gob.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode value: %w", err)
	}
	return nil
}

// CodecByName returns the codec registered under name
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "gob":
		return GobCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec: %s", name)
	}
}
