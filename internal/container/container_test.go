package container

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deflate(t *testing.T, payload string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func envelopeFor(t *testing.T, payload string) []byte {
	t.Helper()
	doc, err := json.Marshal(map[string]any{
		"encoded_data": deflate(t, payload),
		"meta":         map[string]any{"name": "FACTORY 1"},
	})
	require.NoError(t, err)
	return doc
}

func TestDecodeShapes(t *testing.T) {
	const wrapped = `[{"data":{"meta":{"name":"A"},"tone":{"dsp0":{}}}},{"meta":{"name":"B"},"tone":{}}]`

	testCases := []struct {
		name  string
		input []byte
		names []string
	}{
		{
			name:  "bare array",
			input: []byte(wrapped),
			names: []string{`{"name":"A"}`, `{"name":"B"}`},
		},
		{
			name:  "encoded array payload",
			input: envelopeFor(t, wrapped),
			names: []string{`{"name":"A"}`, `{"name":"B"}`},
		},
		{
			name:  "encoded object payload",
			input: envelopeFor(t, `{"presets":`+wrapped+`,"version":3}`),
			names: []string{`{"name":"A"}`, `{"name":"B"}`},
		},
		{
			name:  "single hlx preset",
			input: []byte(`{"version":6,"data":{"meta":{"name":"Solo"},"tone":{}}}`),
			names: []string{`{"name":"Solo"}`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := Decode(tc.input)
			require.NoError(t, err)
			require.Len(t, records, len(tc.names))
			for i, want := range tc.names {
				assert.JSONEq(t, want, string(records[i].Meta))
				assert.NotNil(t, records[i].Tone)
			}
		})
	}
}

func TestDecodeMissingParts(t *testing.T) {
	records, err := Decode([]byte(`[{"meta":{"name":"only meta"}}, 7, {"data":"nope"}]`))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Nil(t, records[0].Tone)
	assert.Equal(t, Record{}, records[1])
	assert.Equal(t, Record{}, records[2])
}

func TestDecodeEmptyPresetList(t *testing.T) {
	records, err := Decode(envelopeFor(t, `{"presets":[]}`))
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = Decode(envelopeFor(t, `{"version":1}`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeErrors(t *testing.T) {
	notZlib := base64.StdEncoding.EncodeToString([]byte("plainly not compressed"))

	testCases := []struct {
		name  string
		input []byte
		stage Stage
	}{
		{name: "invalid json", input: []byte(`{"encoded_data":`), stage: StageJSON},
		{name: "scalar document", input: []byte(`42`), stage: StageJSON},
		{name: "unrelated object", input: []byte(`{"hello":"world"}`), stage: StageJSON},
		{name: "bad base64", input: []byte(`{"encoded_data":"***"}`), stage: StageBase64},
		{name: "not zlib", input: []byte(`{"encoded_data":"` + notZlib + `"}`), stage: StageInflate},
		{name: "payload not json", input: envelopeFor(t, `presets?`), stage: StageJSON},
		{name: "presets not array", input: envelopeFor(t, `{"presets":{}}`), stage: StageJSON},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := Decode(tc.input)
			require.Error(t, err)
			assert.Nil(t, records)

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr), "expected DecodeError, got %T", err)
			assert.Equal(t, tc.stage, decodeErr.Stage)
		})
	}
}

func TestDecodeToleratesWrappedBase64(t *testing.T) {
	encoded := deflate(t, `[{"meta":{"name":"A"}}]`)
	split := encoded[:10] + "\n" + encoded[10:]
	doc, err := json.Marshal(map[string]string{"encoded_data": split})
	require.NoError(t, err)

	records, err := Decode(doc)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	records := []Record{
		{
			Meta: json.RawMessage(`{"name":"Brit Plexi Brt","application":"Helix Native"}`),
			Tone: json.RawMessage(`{"global":{"@tempo":120},"dsp0":{"block0":{"@model":"HD2_AmpBritPlexiBrt","@position":2}}}`),
		},
		{Meta: json.RawMessage(`{"name":"New Preset"}`)},
		{},
	}

	doc, err := Encode("FACTORY 1", records)
	require.NoError(t, err)

	got, err := Decode(doc)
	require.NoError(t, err)
	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeDecodeRoundTripIndented(t *testing.T) {
	meta := "{\n  \"name\": \"A\"\n}"
	tone := "{ \"dsp0\": { \"block0\": { \"@model\": \"HD2_ReverbPlate\" } } }"

	doc, err := Encode("", []Record{{Meta: json.RawMessage(meta), Tone: json.RawMessage(tone)}})
	require.NoError(t, err)

	got, err := Decode(doc)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.JSONEq(t, meta, string(got[0].Meta))
	assert.JSONEq(t, tone, string(got[0].Tone))
}

func TestOpenName(t *testing.T) {
	doc, err := Encode("FACTORY 2", nil)
	require.NoError(t, err)

	c, err := Open("/tmp/some_file.hls", doc)
	require.NoError(t, err)
	assert.Equal(t, "FACTORY 2", c.Name)
	assert.Empty(t, c.Records)

	doc, err = Encode("", []Record{{}})
	require.NoError(t, err)
	c, err = Open("/tmp/FACTORY_1.hls", doc)
	require.NoError(t, err)
	assert.Equal(t, "FACTORY 1", c.Name)

	c, err = Open("presets/Clean_Machine.hlx", []byte(`{"data":{"meta":{"name":"Inner"},"tone":{}}}`))
	require.NoError(t, err)
	assert.Equal(t, "Clean Machine", c.Name)
	require.Len(t, c.Records, 1)
}
