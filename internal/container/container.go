package container

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/buger/jsonparser"
	"github.com/klauspost/compress/zlib"
)

const encodedField = "encoded_data"

// Record is one preset as stored in a container. Meta and Tone hold the raw
// JSON objects and are nil when the record lacks them.
type Record struct {
	Meta json.RawMessage `json:"meta,omitempty"`
	Tone json.RawMessage `json:"tone,omitempty"`
}

// Container is one decoded input file.
type Container struct {
	Name    string
	Records []Record
}

// Open decodes data read from path. The container is named after the
// setlist's own meta.name when it has one, otherwise after the file.
func Open(path string, data []byte) (*Container, error) {
	records, err := Decode(data)
	if err != nil {
		return nil, err
	}

	name := ""
	if _, _, _, err := jsonparser.Get(data, encodedField); err == nil {
		name, _ = jsonparser.GetString(data, "meta", "name")
	}
	if strings.TrimSpace(name) == "" {
		name = nameFromPath(path)
	}

	return &Container{Name: strings.TrimSpace(name), Records: records}, nil
}

func nameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), "_", " ")
}

// Decode turns a raw file payload into preset records.
func Decode(data []byte) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return nil, &DecodeError{Stage: StageJSON, Err: errors.New("invalid JSON document")}
	}

	switch data[0] {
	case '[':
		return recordsFromArray(data)
	case '{':
	default:
		return nil, &DecodeError{Stage: StageJSON, Err: errors.New("document is neither an object nor an array")}
	}

	encoded, err := jsonparser.GetString(data, encodedField)
	if err == nil {
		payload, err := unwrap(encoded)
		if err != nil {
			return nil, err
		}
		return recordsFromPayload(payload)
	}
	if !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, &DecodeError{Stage: StageJSON, Err: fmt.Errorf("reading %s: %w", encodedField, err)}
	}

	if isRecord(data) {
		return []Record{normalize(data)}, nil
	}
	return nil, &DecodeError{Stage: StageJSON, Err: errors.New("object holds neither encoded_data nor a preset")}
}

// unwrap reverses the base64 and zlib layers of a setlist.
func unwrap(encoded string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, encoded)

	raw, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, &DecodeError{Stage: StageBase64, Err: err}
	}

	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Stage: StageInflate, Err: err}
	}
	defer zr.Close()

	payload, err := io.ReadAll(zr)
	if err != nil {
		return nil, &DecodeError{Stage: StageInflate, Err: err}
	}
	return payload, nil
}

func recordsFromPayload(payload []byte) ([]Record, error) {
	payload = bytes.TrimSpace(payload)
	if !json.Valid(payload) {
		return nil, &DecodeError{Stage: StageJSON, Err: errors.New("inflated payload is not valid JSON")}
	}

	switch payload[0] {
	case '[':
		return recordsFromArray(payload)
	case '{':
		presets, dataType, _, err := jsonparser.Get(payload, "presets")
		if errors.Is(err, jsonparser.KeyPathNotFoundError) || dataType == jsonparser.Null {
			return []Record{}, nil
		}
		if err != nil || dataType != jsonparser.Array {
			return nil, &DecodeError{Stage: StageJSON, Err: errors.New("presets is not an array")}
		}
		return recordsFromArray(presets)
	default:
		return nil, &DecodeError{Stage: StageJSON, Err: errors.New("payload is neither an object nor an array")}
	}
}

func recordsFromArray(data []byte) ([]Record, error) {
	records := []Record{}
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Object {
			records = append(records, Record{})
			return
		}
		records = append(records, normalize(value))
	})
	if err != nil {
		return nil, &DecodeError{Stage: StageJSON, Err: err}
	}
	return records, nil
}

func isRecord(obj []byte) bool {
	for _, key := range []string{"data", "meta", "tone"} {
		if _, dataType, _, err := jsonparser.Get(obj, key); err == nil && dataType == jsonparser.Object {
			return true
		}
	}
	return false
}

// normalize accepts both {"data":{"meta":..,"tone":..}} and {"meta":..,"tone":..}.
func normalize(obj []byte) Record {
	if inner, dataType, _, err := jsonparser.Get(obj, "data"); err == nil && dataType == jsonparser.Object {
		obj = inner
	}
	return Record{
		Meta: objectField(obj, "meta"),
		Tone: objectField(obj, "tone"),
	}
}

func objectField(obj []byte, key string) json.RawMessage {
	value, dataType, _, err := jsonparser.Get(obj, key)
	if err != nil || dataType != jsonparser.Object {
		return nil
	}
	return append(json.RawMessage(nil), value...)
}
