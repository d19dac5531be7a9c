package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ContentHash is the hex-encoded SHA-256 digest of a span of text.
// It is the idempotency key for documents and the deduplication key
// for chunk embeddings.
type ContentHash string

// HashContent computes the ContentHash of the given text.
func HashContent(text string) ContentHash {
	sum := sha256.Sum256([]byte(text))
	return ContentHash(hex.EncodeToString(sum[:]))
}

// Language identifies the language of a document or heading.
type Language int

const (
	// LanguageUnknown means the language could not be determined.
	LanguageUnknown Language = iota
	// LanguageEnglish represents English content.
	LanguageEnglish
	// LanguageFrench represents French content.
	LanguageFrench
)

// String returns the ISO 639-1 code for the language, or "und" if unknown.
func (l Language) String() string {
	switch l {
	case LanguageEnglish:
		return "en"
	case LanguageFrench:
		return "fr"
	default:
		return "und"
	}
}

// ParseLanguage converts an ISO 639-1 code to a Language.
// Unrecognized codes map to LanguageUnknown.
func ParseLanguage(code string) Language {
	switch code {
	case "en":
		return LanguageEnglish
	case "fr":
		return LanguageFrench
	default:
		return LanguageUnknown
	}
}

// SectionType identifies a canonical named part of a job description.
type SectionType int

const (
	// SectionUnclassified holds text that matched no canonical heading.
	SectionUnclassified SectionType = iota
	// SectionGeneralAccountability is the overall purpose statement.
	SectionGeneralAccountability
	// SectionOrganizationStructure describes reporting relationships.
	SectionOrganizationStructure
	// SectionNatureAndScope describes the operating environment.
	SectionNatureAndScope
	// SectionSpecificAccountabilities lists concrete responsibilities.
	SectionSpecificAccountabilities
	// SectionDimensions holds budget and staffing figures.
	SectionDimensions
	// SectionKnowledgeAndSkills lists required qualifications.
	SectionKnowledgeAndSkills
)

// CanonicalSectionTypes lists the six named section types, in their
// conventional document order. SectionUnclassified is excluded.
var CanonicalSectionTypes = []SectionType{
	SectionGeneralAccountability,
	SectionOrganizationStructure,
	SectionNatureAndScope,
	SectionSpecificAccountabilities,
	SectionDimensions,
	SectionKnowledgeAndSkills,
}

// String returns the section type name.
func (s SectionType) String() string {
	switch s {
	case SectionGeneralAccountability:
		return "general_accountability"
	case SectionOrganizationStructure:
		return "organization_structure"
	case SectionNatureAndScope:
		return "nature_and_scope"
	case SectionSpecificAccountabilities:
		return "specific_accountabilities"
	case SectionDimensions:
		return "dimensions"
	case SectionKnowledgeAndSkills:
		return "knowledge_and_skills"
	default:
		return "unclassified"
	}
}

// SourceDocument holds the raw text of an ingested file.
// ContentHash is the idempotency key: re-ingesting identical bytes
// returns the existing record.
type SourceDocument struct {
	Id          ID
	Path        string
	ContentHash ContentHash
	Text        string
	InsertedAt  time.Time
}

// JobDescription is the structured record derived from a SourceDocument.
type JobDescription struct {
	Id             ID
	JobNumber      string
	Title          string
	Classification string
	Language       Language
	SourceId       ID
	QualityScore   float64
	// SemanticIndexed is false while any chunk of the document lacks an
	// embedding, so search can report the document as text-only.
	SemanticIndexed bool
	ProcessedAt     time.Time
}

// Section is a named, ordered span of a SourceDocument's text.
// Ordinals are strictly increasing and spans never overlap.
type Section struct {
	DocumentId ID
	Type       SectionType
	Ordinal    int
	Start      int // byte offset into SourceDocument.Text, inclusive
	End        int // byte offset, exclusive
	Confidence float64
}

// Span returns the section's text given the owning document's text.
func (s *Section) Span(docText string) string {
	if s.Start < 0 || s.End > len(docText) || s.Start >= s.End {
		return ""
	}
	return docText[s.Start:s.End]
}

// MetadataField identifies a tracked structured field.
type MetadataField int

const (
	// FieldReportsTo is the position this job reports to.
	FieldReportsTo MetadataField = iota + 1
	// FieldDepartment is the owning department or branch.
	FieldDepartment
	// FieldSalaryBudget is the salary budget figure.
	FieldSalaryBudget
	// FieldNonSalaryBudget is the operating (non-salary) budget figure.
	FieldNonSalaryBudget
	// FieldFTECount is the number of full-time equivalents supervised.
	FieldFTECount
)

// TrackedMetadataFields lists every field the extractor knows about.
var TrackedMetadataFields = []MetadataField{
	FieldReportsTo,
	FieldDepartment,
	FieldSalaryBudget,
	FieldNonSalaryBudget,
	FieldFTECount,
}

// String returns the field name.
func (f MetadataField) String() string {
	switch f {
	case FieldReportsTo:
		return "reports_to"
	case FieldDepartment:
		return "department"
	case FieldSalaryBudget:
		return "salary_budget"
	case FieldNonSalaryBudget:
		return "non_salary_budget"
	case FieldFTECount:
		return "fte_count"
	default:
		return "unknown"
	}
}

// MetadataValue is one extracted field with its source section and
// extraction confidence. Fields below the configured confidence floor
// are never stored; absence means "not found", not "guessed".
type MetadataValue struct {
	DocumentId     ID
	Field          MetadataField
	Value          string
	Number         float64 // parsed numeric value for budget and FTE fields
	SectionOrdinal int     // ordinal of the section the value was extracted from
	Confidence     float64
}

// ContentChunk is a bounded span of document text used as the unit of
// embedding. The ordered union of a document's chunk spans covers the
// whole text with configured overlap and no gaps.
type ContentChunk struct {
	DocumentId  ID
	Index       int
	Start       int // byte offset, inclusive
	End         int // byte offset, exclusive
	Text        string
	ContentHash ContentHash // hash of Text, the embedding dedup key
	Overlap     int         // bytes shared with the previous chunk
}

// Embedding is a vector computed for a chunk's text. It is keyed by the
// chunk's content hash and the model identifier, shared across documents
// with identical chunk text, and immutable once created. A new model
// version produces a new Embedding, never a mutation.
type Embedding struct {
	ContentHash ContentHash
	Model       string
	Vector      []float32
	Tokens      int
	InsertedAt  time.Time
}

// WarningKind classifies non-fatal ingestion warnings.
type WarningKind int

const (
	// WarnStructural reports an unparseable heading or ambiguous section
	// boundary. It downgrades confidence but never aborts ingestion.
	WarnStructural WarningKind = iota + 1
	// WarnUnclassifiedFilename reports that no filename pattern matched.
	WarnUnclassifiedFilename
	// WarnEmbeddingDegraded reports that one or more chunks could not be
	// embedded; full-text indexing still proceeded.
	WarnEmbeddingDegraded
)

// String returns the warning kind name.
func (k WarningKind) String() string {
	switch k {
	case WarnStructural:
		return "structural"
	case WarnUnclassifiedFilename:
		return "unclassified_filename"
	case WarnEmbeddingDegraded:
		return "embedding_degraded"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal ingestion diagnostic.
type Warning struct {
	Kind    WarningKind
	Message string
}
