// Package config loads the catalog layout: which preset names are unused
// placeholders and how the presets of each known setlist are grouped.
//
// The layout is written in HCL. A default layout for the stock setlists is
// embedded and used when no file is given.
package config
