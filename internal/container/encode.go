package container

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zlib"
)

type envelope struct {
	EncodedData string        `json:"encoded_data"`
	Meta        *envelopeMeta `json:"meta,omitempty"`
}

type envelopeMeta struct {
	Name string `json:"name"`
}

type setlistPayload struct {
	Presets []Record `json:"presets"`
}

// Encode builds a setlist document holding records, the inverse of Decode.
// An empty name omits the setlist meta object. Meta and Tone are re-encoded
// compactly, so decoding returns equal JSON values, not the same bytes.
func Encode(name string, records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	payload, err := json.Marshal(setlistPayload{Presets: records})
	if err != nil {
		return nil, fmt.Errorf("marshal presets: %w", err)
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, fmt.Errorf("deflate presets: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("deflate presets: %w", err)
	}

	env := envelope{EncodedData: base64.StdEncoding.EncodeToString(buf.Bytes())}
	if name != "" {
		env.Meta = &envelopeMeta{Name: name}
	}
	return json.Marshal(env)
}
