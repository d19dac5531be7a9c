// Package score computes document quality and cross-job similarity.
//
// QualityScore rates a parsed document's completeness from section
// coverage, extracted metadata, and length. Similarity compares two job
// profiles through structured field agreement and per-section embedding
// similarity.
package score
