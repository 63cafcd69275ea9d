// Package save parses Paradox-style save files in both their text and
// binary encodings into a shared value tree.
//
// A save file is a sequence of top-level sections, each a named block of
// key=value pairs, bare sequence items, or both at once. The text encoding
// is the human-readable form; the binary ("ironman") encoding replaces field
// names with 16-bit tokens that a Resolver maps back to names. Saves may
// also arrive wrapped in a ZIP container whose gamestate member holds the
// actual payload; Open and Read unwrap that transparently.
//
// Both front-ends produce the same Object/Value shapes, so code built on top
// of the tree never needs to know which encoding it came from.
package save
