package cache

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CBOR modes: canonical key order so equal values encode to equal bytes,
// and decode limits so a corrupted entry cannot exhaust memory.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

//nolint:gochecknoinits // CBOR modes must exist before the first Marshal
func init() {
	var err error

	encMode, err = cbor.EncOptions{
		Sort: cbor.SortCanonical,
		Time: cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoding mode: %v", err))
	}

	decMode, err = cbor.DecOptions{
		MaxArrayElements: 10000,
		MaxMapPairs:      10000,
		MaxNestedLevels:  16,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoding mode: %v", err))
	}
}

// Marshal encodes v as CBOR. Struct fields use their `cbor` tag, falling back
// to the `json` tag, so API response types can be cached as they are.
func Marshal[T any](v T) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cbor marshal failed: %w", err)
	}
	return data, nil
}

// Unmarshal decodes CBOR produced by Marshal.
//
//	repos, err := cache.Unmarshal[[]github.Repo](data)
func Unmarshal[T any](data []byte) (T, error) {
	var v T
	if err := decMode.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("cbor unmarshal failed: %w", err)
	}
	return v, nil
}
