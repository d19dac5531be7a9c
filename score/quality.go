// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package score

import (
	"math"

	"github.com/poiesic/jobdex/core"
)

// QualityConfig weights the components of the document quality score.
// Weights should sum to 1; the score is scaled to [0, 100].
type QualityConfig struct {
	// SectionWeight rewards coverage of the canonical section types.
	SectionWeight float64
	// MetadataWeight rewards extracted structured fields.
	MetadataWeight float64
	// LengthWeight rewards document length inside the expected range.
	LengthWeight float64

	// MinLength and MaxLength bound the expected document size in bytes.
	// Documents shorter than MinLength score proportionally lower;
	// documents far beyond MaxLength taper off, floored at half credit.
	MinLength int
	MaxLength int
}

// DefaultQualityConfig returns the scoring defaults.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		SectionWeight:  0.5,
		MetadataWeight: 0.3,
		LengthWeight:   0.2,
		MinLength:      1500,
		MaxLength:      20000,
	}
}

// QualityScore rates how complete a parsed document is, on [0, 100].
//
// The score is monotone in its inputs: recognizing an additional
// canonical section or extracting an additional tracked field never
// lowers it.
func QualityScore(cfg QualityConfig, textLen int, sections []core.Section, metadata []core.MetadataValue) float64 {
	sectionScore := sectionCoverage(sections)
	metadataScore := metadataCoverage(metadata)
	lengthScore := lengthFit(cfg, textLen)

	score := 100 * (cfg.SectionWeight*sectionScore +
		cfg.MetadataWeight*metadataScore +
		cfg.LengthWeight*lengthScore)
	return math.Min(100, math.Max(0, score))
}

// sectionCoverage is the fraction of canonical section types present.
func sectionCoverage(sections []core.Section) float64 {
	found := make(map[core.SectionType]bool)
	for _, section := range sections {
		if section.Type != core.SectionUnclassified {
			found[section.Type] = true
		}
	}
	return float64(len(found)) / float64(len(core.CanonicalSectionTypes))
}

// metadataCoverage is the fraction of tracked fields extracted.
func metadataCoverage(metadata []core.MetadataValue) float64 {
	found := make(map[core.MetadataField]bool)
	for _, value := range metadata {
		found[value.Field] = true
	}
	return float64(len(found)) / float64(len(core.TrackedMetadataFields))
}

// lengthFit is 1 inside [MinLength, MaxLength], ramps linearly up from
// 0 below MinLength, and tapers above MaxLength with a floor of 0.5.
func lengthFit(cfg QualityConfig, textLen int) float64 {
	if textLen <= 0 {
		return 0
	}
	if cfg.MinLength > 0 && textLen < cfg.MinLength {
		return float64(textLen) / float64(cfg.MinLength)
	}
	if cfg.MaxLength > 0 && textLen > cfg.MaxLength {
		return math.Max(0.5, float64(cfg.MaxLength)/float64(textLen))
	}
	return 1
}
