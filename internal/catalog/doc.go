// Package catalog builds the preset catalog handed to renderers: the list of
// real presets with their bank/slot labels and curated notes, plus
// insertion-ordered indices by hardware, artist, genre and recommended
// pickup.
package catalog
