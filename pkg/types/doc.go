// Package types holds the data model shared by the hive decoding engine and
// its callers: the reconstructed key/value tree, typed errors, diagnostics,
// load options and statistics.
//
// Keys and values are built once per parse and never mutated afterwards, so a
// loaded tree may be read from any number of goroutines.
package types
