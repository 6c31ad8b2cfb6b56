package http

import (
	"encoding/json"
)

const contentTypeJSON = "application/json"

// JSONCodec is the default Codec
type JSONCodec struct{}

// ContentType returns application/json
func (JSONCodec) ContentType() string {
	return contentTypeJSON
}

// Marshal encodes v as JSON
func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v
func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
