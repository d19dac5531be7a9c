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


package core

import "fmt"

// ValidateDocument validates a SourceDocument according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - ContentHash must match the text
//
// NOT validated (populated by storage):
//   - ID (0 is valid from database sequences)
//   - InsertedAt
func ValidateDocument(doc *SourceDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyText)
	}
	if doc.ContentHash != "" && doc.ContentHash != HashContent(doc.Text) {
		return fmt.Errorf("%w: content hash does not match text", ErrInvalidDocument)
	}
	return nil
}

// ValidateSections validates the section set of a document.
//
// Validation rules:
//   - ordinals strictly increasing
//   - spans within [0, textLen], non-empty
//   - spans do not overlap (sections are checked in ordinal order)
//   - confidence in [0,1]
func ValidateSections(sections []Section, textLen int) error {
	prevOrdinal := -1
	prevEnd := 0
	for i := range sections {
		s := &sections[i]
		if s.Ordinal <= prevOrdinal {
			return fmt.Errorf("%w: ordinal %d after %d", ErrSectionOrder, s.Ordinal, prevOrdinal)
		}
		if s.Start < 0 || s.End > textLen || s.Start >= s.End {
			return fmt.Errorf("%w: [%d,%d) in text of length %d", ErrSectionBounds, s.Start, s.End, textLen)
		}
		if s.Start < prevEnd {
			return fmt.Errorf("%w: section %d starts at %d before previous end %d", ErrSectionOverlap, s.Ordinal, s.Start, prevEnd)
		}
		if s.Confidence < 0 || s.Confidence > 1 {
			return fmt.Errorf("%w: section %d has confidence %f", ErrInvalidConfidence, s.Ordinal, s.Confidence)
		}
		prevOrdinal = s.Ordinal
		prevEnd = s.End
	}
	return nil
}

// ValidateChunks validates that the ordered chunk spans cover the whole
// document text with no gaps. Chunks may overlap; a gap between a
// chunk's start and the previous chunk's end is an invariant violation.
func ValidateChunks(chunks []ContentChunk, textLen int) error {
	if textLen == 0 {
		if len(chunks) != 0 {
			return fmt.Errorf("%w: %d chunks for empty text", ErrChunkGap, len(chunks))
		}
		return nil
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks for text of length %d", ErrChunkGap, textLen)
	}
	if chunks[0].Start != 0 {
		return fmt.Errorf("%w: first chunk starts at %d", ErrChunkGap, chunks[0].Start)
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Start > chunks[i-1].End {
			return fmt.Errorf("%w: gap between chunk %d and %d", ErrChunkGap, i-1, i)
		}
		if chunks[i].Start <= chunks[i-1].Start {
			return fmt.Errorf("%w: chunk %d does not advance", ErrChunkGap, i)
		}
	}
	if chunks[len(chunks)-1].End != textLen {
		return fmt.Errorf("%w: last chunk ends at %d, text length %d", ErrChunkGap, chunks[len(chunks)-1].End, textLen)
	}
	return nil
}

// ValidateMetadataValue validates a single extracted metadata value.
func ValidateMetadataValue(v *MetadataValue) error {
	if v == nil {
		return fmt.Errorf("%w: value is nil", ErrInvalidMetadataField)
	}
	valid := false
	for _, f := range TrackedMetadataFields {
		if v.Field == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: value %d", ErrInvalidMetadataField, v.Field)
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return fmt.Errorf("%w: field %s has confidence %f", ErrInvalidConfidence, v.Field, v.Confidence)
	}
	return nil
}
