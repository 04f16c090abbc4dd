// Package models resolves Helix model identifiers ("HD2_AmpBritPlexiBrt") to
// the block category, the Helix alias and the real-world hardware it models.
//
// Resolution is total: identifiers missing from the curated table are parsed
// into a best-effort record and flagged as such.
package models
