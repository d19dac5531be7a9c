// Package classify identifies document metadata from filename conventions.
//
// Government job-description files arrive under several naming schemes.
// A Classifier applies an ordered list of tagged capture patterns (the
// current convention first, then legacy ones) and returns the first match.
// Unmatched names produce a low-confidence result with empty fields rather
// than an error, so the rest of the pipeline always has something to work
// with.
package classify
