package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// cacheFormatVersion is the leading byte of every stored entry, so a future
// format change can be detected rather than silently misread (spec.md §9
// Open Question: "an implementation should commit to a documented binary
// format ... with a version byte").
const cacheFormatVersion byte = 1

func encodeEntry(e Entry) ([]byte, error) {
	var gobBuf bytes.Buffer
	if err := gob.NewEncoder(&gobBuf).Encode(e); err != nil {
		return nil, fmt.Errorf("cache: encode entry: %w", err)
	}

	var out bytes.Buffer
	out.WriteByte(cacheFormatVersion)
	zw := lz4.NewWriter(&out)
	if _, err := zw.Write(gobBuf.Bytes()); err != nil {
		return nil, fmt.Errorf("cache: compress entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("cache: compress entry: %w", err)
	}
	return out.Bytes(), nil
}

func decodeEntry(data []byte) (Entry, error) {
	var e Entry
	if len(data) < 1 {
		return e, fmt.Errorf("cache: empty entry")
	}
	if data[0] != cacheFormatVersion {
		return e, fmt.Errorf("cache: unsupported format version %d", data[0])
	}
	zr := lz4.NewReader(bytes.NewReader(data[1:]))
	if err := gob.NewDecoder(zr).Decode(&e); err != nil {
		return e, fmt.Errorf("cache: decode entry: %w", err)
	}
	return e, nil
}
