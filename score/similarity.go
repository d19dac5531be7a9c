package score

import (
	"math"
	"strings"

	"github.com/poiesic/jobdex/core"
)

// SimilarityConfig weights the components of a pairwise similarity score.
type SimilarityConfig struct {
	// MetadataWeight is the share of the score from structured field
	// agreement.
	MetadataWeight float64
	// SectionWeight is the share from per-section vector similarity.
	SectionWeight float64
	// MinScore is returned when the two jobs share nothing comparable.
	MinScore float64
}

// DefaultSimilarityConfig returns the similarity defaults.
func DefaultSimilarityConfig() SimilarityConfig {
	return SimilarityConfig{
		MetadataWeight: 0.3,
		SectionWeight:  0.7,
		MinScore:       0.05,
	}
}

// Profile is the comparable projection of one job description.
type Profile struct {
	JobId    core.ID
	Metadata map[core.MetadataField]core.MetadataValue

	// SectionVectors holds one unit-length centroid per section type,
	// averaged from the vectors of the chunks overlapping that section.
	SectionVectors map[core.SectionType][]float32
}

// SectionSimilarity is the vector similarity of one section type
// present in both jobs.
type SectionSimilarity struct {
	Type  core.SectionType
	Score float64
}

// SimilarityResult is the outcome of comparing two jobs.
type SimilarityResult struct {
	// Overall is the weighted similarity on [0, 1].
	Overall float64
	// PerSection lists comparable section types in canonical order.
	PerSection []SectionSimilarity
	// MetadataAgreement is the fraction of shared fields with matching
	// values, or -1 when no field is present in both jobs.
	MetadataAgreement float64
}

// BuildProfile projects a job's stored artifacts into a Profile.
// vectors maps chunk content hashes to stored embedding vectors; chunks
// without a vector are ignored.
func BuildProfile(jobId core.ID, metadata []core.MetadataValue, sections []core.Section,
	chunks []core.ContentChunk, vectors map[core.ContentHash][]float32) *Profile {

	profile := &Profile{
		JobId:          jobId,
		Metadata:       make(map[core.MetadataField]core.MetadataValue),
		SectionVectors: make(map[core.SectionType][]float32),
	}

	for _, value := range metadata {
		if _, seen := profile.Metadata[value.Field]; !seen {
			profile.Metadata[value.Field] = value
		}
	}

	sums := make(map[core.SectionType][]float64)
	counts := make(map[core.SectionType]int)
	for _, chunk := range chunks {
		vector, ok := vectors[chunk.ContentHash]
		if !ok || len(vector) == 0 {
			continue
		}
		for _, section := range sections {
			if section.Type == core.SectionUnclassified {
				continue
			}
			if chunk.Start >= section.End || chunk.End <= section.Start {
				continue
			}
			sum := sums[section.Type]
			if sum == nil {
				sum = make([]float64, len(vector))
				sums[section.Type] = sum
			}
			for i, v := range vector {
				if i < len(sum) {
					sum[i] += float64(v)
				}
			}
			counts[section.Type]++
		}
	}

	for sectionType, sum := range sums {
		centroid := make([]float32, len(sum))
		var magnitude float64
		for i, v := range sum {
			mean := v / float64(counts[sectionType])
			centroid[i] = float32(mean)
			magnitude += mean * mean
		}
		magnitude = math.Sqrt(magnitude)
		if magnitude > 0 {
			for i := range centroid {
				centroid[i] = float32(float64(centroid[i]) / magnitude)
			}
		}
		profile.SectionVectors[sectionType] = centroid
	}

	return profile
}

// Similarity compares two job profiles.
func Similarity(cfg SimilarityConfig, a, b *Profile) *SimilarityResult {
	result := &SimilarityResult{MetadataAgreement: -1}

	// Structured field agreement over the fields both jobs carry.
	compared, agreed := 0, 0
	for field, av := range a.Metadata {
		bv, ok := b.Metadata[field]
		if !ok {
			continue
		}
		compared++
		if metadataMatches(av, bv) {
			agreed++
		}
	}
	if compared > 0 {
		result.MetadataAgreement = float64(agreed) / float64(compared)
	}

	// Vector similarity per section type present in both jobs.
	var sectionTotal float64
	for _, sectionType := range core.CanonicalSectionTypes {
		av, aok := a.SectionVectors[sectionType]
		bv, bok := b.SectionVectors[sectionType]
		if !aok || !bok {
			continue
		}
		sim := clamp01(float64(dot(av, bv)))
		result.PerSection = append(result.PerSection, SectionSimilarity{Type: sectionType, Score: sim})
		sectionTotal += sim
	}

	// Weighted combination, redistributing the weight of any absent
	// component.
	metadataWeight := cfg.MetadataWeight
	sectionWeight := cfg.SectionWeight
	switch {
	case compared == 0 && len(result.PerSection) == 0:
		result.Overall = cfg.MinScore
		return result
	case compared == 0:
		metadataWeight = 0
	case len(result.PerSection) == 0:
		sectionWeight = 0
	}

	weightSum := metadataWeight + sectionWeight
	if weightSum == 0 {
		result.Overall = cfg.MinScore
		return result
	}

	var weighted float64
	if compared > 0 {
		weighted += metadataWeight * result.MetadataAgreement
	}
	if len(result.PerSection) > 0 {
		weighted += sectionWeight * (sectionTotal / float64(len(result.PerSection)))
	}
	result.Overall = math.Max(cfg.MinScore, weighted/weightSum)
	return result
}

// metadataMatches compares two field values: numeric fields within 1%,
// text fields case-insensitively.
func metadataMatches(a, b core.MetadataValue) bool {
	if a.Number != 0 || b.Number != 0 {
		larger := math.Max(math.Abs(a.Number), math.Abs(b.Number))
		if larger == 0 {
			return true
		}
		return math.Abs(a.Number-b.Number)/larger <= 0.01
	}
	return strings.EqualFold(strings.TrimSpace(a.Value), strings.TrimSpace(b.Value))
}

func dot(a, b []float32) float32 {
	var sum float32
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
