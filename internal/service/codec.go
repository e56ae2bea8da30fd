package service

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// JSONCodec carries plain Go structs as JSON over Connect. It replaces the
// protobuf JSON codec, so handlers and clients need no generated types.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal implements connect.Codec. An empty body leaves v untouched.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
