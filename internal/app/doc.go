// Package app wires the decoding pipeline: it loads the model table, the
// annotations and the catalog layout, discovers preset files, decodes them
// in parallel and merges the results into one catalog in file order.
package app
