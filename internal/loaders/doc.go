// Package loaders provides implementations of the ControlLoader interface
// for the benchmark document formats. Each loader knows how to turn one
// format into normalised control records.
//
// Loaders are registered with the Registry at startup.
package loaders
