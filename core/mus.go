package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-maintained MUS serializers for the storage layer. Field order is the
// wire format: append new fields at the end, never reorder. Timestamps are
// serialized as Unix microseconds.

var (
	// IDMUS serializes entity IDs.
	IDMUS = idMUS{}
	// SourceDocumentMUS serializes source documents.
	SourceDocumentMUS = sourceDocumentMUS{}
	// JobDescriptionMUS serializes job descriptions.
	JobDescriptionMUS = jobDescriptionMUS{}
	// SectionMUS serializes a single section.
	SectionMUS = sectionMUS{}
	// SectionSliceMUS serializes a document's ordered section set.
	SectionSliceMUS = ord.NewSliceSer[Section](SectionMUS)
	// MetadataValueMUS serializes a single metadata value.
	MetadataValueMUS = metadataValueMUS{}
	// MetadataSliceMUS serializes a document's metadata set.
	MetadataSliceMUS = ord.NewSliceSer[MetadataValue](MetadataValueMUS)
	// ContentChunkMUS serializes a single content chunk.
	ContentChunkMUS = contentChunkMUS{}
	// ChunkSliceMUS serializes a document's ordered chunk set.
	ChunkSliceMUS = ord.NewSliceSer[ContentChunk](ContentChunkMUS)
	// EmbeddingMUS serializes an embedding.
	EmbeddingMUS = embeddingMUS{}

	vectorMUS = ord.NewSliceSer[float32](varint.Float32)
)

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int { return varint.Uint64.Marshal(uint64(v), bs) }

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) int { return varint.Uint64.Size(uint64(v)) }

func (idMUS) Skip(bs []byte) (int, error) { return varint.Uint64.Skip(bs) }

type sourceDocumentMUS struct{}

func (sourceDocumentMUS) Marshal(v SourceDocument, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Path, bs[n:])
	n += ord.String.Marshal(string(v.ContentHash), bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	return
}

func (sourceDocumentMUS) Unmarshal(bs []byte) (v SourceDocument, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Path, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	var hash string
	if hash, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.ContentHash = ContentHash(hash)
	n += n1
	if v.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.InsertedAt, n1, err = unmarshalTime(bs[n:])
	return v, n + n1, err
}

func (sourceDocumentMUS) Size(v SourceDocument) int {
	return IDMUS.Size(v.Id) +
		ord.String.Size(v.Path) +
		ord.String.Size(string(v.ContentHash)) +
		ord.String.Size(v.Text) +
		sizeTime(v.InsertedAt)
}

func (s sourceDocumentMUS) Skip(bs []byte) (n int, err error) {
	v, n, err := s.Unmarshal(bs)
	_ = v
	return n, err
}

type jobDescriptionMUS struct{}

func (jobDescriptionMUS) Marshal(v JobDescription, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.JobNumber, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Classification, bs[n:])
	n += varint.Int.Marshal(int(v.Language), bs[n:])
	n += IDMUS.Marshal(v.SourceId, bs[n:])
	n += varint.Float64.Marshal(v.QualityScore, bs[n:])
	n += ord.Bool.Marshal(v.SemanticIndexed, bs[n:])
	n += marshalTime(v.ProcessedAt, bs[n:])
	return
}

func (jobDescriptionMUS) Unmarshal(bs []byte) (v JobDescription, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.JobNumber, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Classification, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	var lang int
	if lang, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.Language = Language(lang)
	n += n1
	if v.SourceId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.QualityScore, n1, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.SemanticIndexed, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.ProcessedAt, n1, err = unmarshalTime(bs[n:])
	return v, n + n1, err
}

func (jobDescriptionMUS) Size(v JobDescription) int {
	return IDMUS.Size(v.Id) +
		ord.String.Size(v.JobNumber) +
		ord.String.Size(v.Title) +
		ord.String.Size(v.Classification) +
		varint.Int.Size(int(v.Language)) +
		IDMUS.Size(v.SourceId) +
		varint.Float64.Size(v.QualityScore) +
		ord.Bool.Size(v.SemanticIndexed) +
		sizeTime(v.ProcessedAt)
}

func (s jobDescriptionMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type sectionMUS struct{}

func (sectionMUS) Marshal(v Section, bs []byte) (n int) {
	n = IDMUS.Marshal(v.DocumentId, bs)
	n += varint.Int.Marshal(int(v.Type), bs[n:])
	n += varint.Int.Marshal(v.Ordinal, bs[n:])
	n += varint.Int.Marshal(v.Start, bs[n:])
	n += varint.Int.Marshal(v.End, bs[n:])
	n += varint.Float64.Marshal(v.Confidence, bs[n:])
	return
}

func (sectionMUS) Unmarshal(bs []byte) (v Section, n int, err error) {
	var n1 int
	if v.DocumentId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	var typ int
	if typ, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.Type = SectionType(typ)
	n += n1
	if v.Ordinal, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Start, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.End, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.Confidence, n1, err = varint.Float64.Unmarshal(bs[n:])
	return v, n + n1, err
}

func (sectionMUS) Size(v Section) int {
	return IDMUS.Size(v.DocumentId) +
		varint.Int.Size(int(v.Type)) +
		varint.Int.Size(v.Ordinal) +
		varint.Int.Size(v.Start) +
		varint.Int.Size(v.End) +
		varint.Float64.Size(v.Confidence)
}

func (s sectionMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type metadataValueMUS struct{}

func (metadataValueMUS) Marshal(v MetadataValue, bs []byte) (n int) {
	n = IDMUS.Marshal(v.DocumentId, bs)
	n += varint.Int.Marshal(int(v.Field), bs[n:])
	n += ord.String.Marshal(v.Value, bs[n:])
	n += varint.Float64.Marshal(v.Number, bs[n:])
	n += varint.Int.Marshal(v.SectionOrdinal, bs[n:])
	n += varint.Float64.Marshal(v.Confidence, bs[n:])
	return
}

func (metadataValueMUS) Unmarshal(bs []byte) (v MetadataValue, n int, err error) {
	var n1 int
	if v.DocumentId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	var field int
	if field, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.Field = MetadataField(field)
	n += n1
	if v.Value, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Number, n1, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.SectionOrdinal, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.Confidence, n1, err = varint.Float64.Unmarshal(bs[n:])
	return v, n + n1, err
}

func (metadataValueMUS) Size(v MetadataValue) int {
	return IDMUS.Size(v.DocumentId) +
		varint.Int.Size(int(v.Field)) +
		ord.String.Size(v.Value) +
		varint.Float64.Size(v.Number) +
		varint.Int.Size(v.SectionOrdinal) +
		varint.Float64.Size(v.Confidence)
}

func (s metadataValueMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type contentChunkMUS struct{}

func (contentChunkMUS) Marshal(v ContentChunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.DocumentId, bs)
	n += varint.Int.Marshal(v.Index, bs[n:])
	n += varint.Int.Marshal(v.Start, bs[n:])
	n += varint.Int.Marshal(v.End, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += ord.String.Marshal(string(v.ContentHash), bs[n:])
	n += varint.Int.Marshal(v.Overlap, bs[n:])
	return
}

func (contentChunkMUS) Unmarshal(bs []byte) (v ContentChunk, n int, err error) {
	var n1 int
	if v.DocumentId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Index, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Start, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.End, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	var hash string
	if hash, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.ContentHash = ContentHash(hash)
	n += n1
	v.Overlap, n1, err = varint.Int.Unmarshal(bs[n:])
	return v, n + n1, err
}

func (contentChunkMUS) Size(v ContentChunk) int {
	return IDMUS.Size(v.DocumentId) +
		varint.Int.Size(v.Index) +
		varint.Int.Size(v.Start) +
		varint.Int.Size(v.End) +
		ord.String.Size(v.Text) +
		ord.String.Size(string(v.ContentHash)) +
		varint.Int.Size(v.Overlap)
}

func (s contentChunkMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type embeddingMUS struct{}

func (embeddingMUS) Marshal(v Embedding, bs []byte) (n int) {
	n = ord.String.Marshal(string(v.ContentHash), bs)
	n += ord.String.Marshal(v.Model, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	n += varint.Int.Marshal(v.Tokens, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	return
}

func (embeddingMUS) Unmarshal(bs []byte) (v Embedding, n int, err error) {
	var n1 int
	var hash string
	if hash, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	v.ContentHash = ContentHash(hash)
	if v.Model, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Tokens, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.InsertedAt, n1, err = unmarshalTime(bs[n:])
	return v, n + n1, err
}

func (embeddingMUS) Size(v Embedding) int {
	return ord.String.Size(string(v.ContentHash)) +
		ord.String.Size(v.Model) +
		vectorMUS.Size(v.Vector) +
		varint.Int.Size(v.Tokens) +
		sizeTime(v.InsertedAt)
}

func (s embeddingMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
