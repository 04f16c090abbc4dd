// Package container decodes Helix setlist (.hls) and preset (.hlx) files into
// raw preset records.
//
// A setlist wraps its presets in base64 text holding a zlib stream of JSON;
// exported bundles may also be a bare JSON array. Every record is normalized
// to its meta and tone objects before it leaves this package.
package container
