// Package naming allocates collision-free base identifiers for uploaded
// media and derives the deterministic filenames of every stored variant.
//
// All files belonging to one upload share a random base identifier as a
// filename prefix, so the full set is enumerable without any database
// lookup. Filename derivation is pure; only NewBaseID touches a
// randomness source.
package naming
