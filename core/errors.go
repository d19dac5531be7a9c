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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a SourceDocument failed validation.
	ErrInvalidDocument = errors.New("invalid source document")

	// ErrInvalidSection indicates a Section failed validation.
	ErrInvalidSection = errors.New("invalid section")

	// ErrSectionOrder indicates section ordinals are not strictly increasing.
	ErrSectionOrder = errors.New("section ordinals must be strictly increasing")

	// ErrSectionOverlap indicates two section spans overlap.
	ErrSectionOverlap = errors.New("section spans must not overlap")

	// ErrSectionBounds indicates a section span lies outside the document text.
	ErrSectionBounds = errors.New("section span out of document bounds")

	// ErrChunkGap indicates chunk spans do not cover the document text.
	ErrChunkGap = errors.New("chunk spans must cover the document with no gaps")

	// ErrEmptyText indicates the document text is empty.
	ErrEmptyText = errors.New("document text cannot be empty")

	// ErrInvalidConfidence indicates a confidence score outside [0,1].
	ErrInvalidConfidence = errors.New("confidence must be in [0,1]")

	// ErrInvalidMetadataField indicates an unknown MetadataField value.
	ErrInvalidMetadataField = errors.New("invalid metadata field")
)
