package change

// Type classifies what happened to a content digest between detection runs.
type Type string

const (
	TypeNewContent       Type = "new_content"
	TypeModifiedContent  Type = "modified_content"
	TypeUnchangedContent Type = "unchanged_content"
	TypeDeletedContent   Type = "deleted_content"
	TypeLocationChange   Type = "location_change"
)

// ParseType validates a change type tag.
func ParseType(s string) (Type, bool) {
	switch Type(s) {
	case TypeNewContent, TypeModifiedContent, TypeUnchangedContent,
		TypeDeletedContent, TypeLocationChange:
		return Type(s), true
	}
	return "", false
}

// DiffType is the representation the diff computation produced.
type DiffType string

const (
	DiffUnified        DiffType = "unified"
	DiffWordDiff       DiffType = "word_diff"
	DiffSemanticChunks DiffType = "semantic_chunks"
)

// ParseDiffType validates a diff type tag.
func ParseDiffType(s string) (DiffType, bool) {
	switch DiffType(s) {
	case DiffUnified, DiffWordDiff, DiffSemanticChunks:
		return DiffType(s), true
	}
	return "", false
}

// DiffAlgorithm is the algorithm the diff computation used.
type DiffAlgorithm string

const (
	AlgorithmMyers     DiffAlgorithm = "myers"
	AlgorithmPatience  DiffAlgorithm = "patience"
	AlgorithmHistogram DiffAlgorithm = "histogram"
)

// ParseDiffAlgorithm validates a diff algorithm tag.
func ParseDiffAlgorithm(s string) (DiffAlgorithm, bool) {
	switch DiffAlgorithm(s) {
	case AlgorithmMyers, AlgorithmPatience, AlgorithmHistogram:
		return DiffAlgorithm(s), true
	}
	return "", false
}

// Observation is one detection-run sighting of a digest, used to classify
// the change.
type Observation struct {
	// PreviousChecksum is nil for content never seen before.
	PreviousChecksum *string
	// NewChecksum is nil when a previously-seen digest did not reappear.
	NewChecksum *string
	// DiffHasChanges reports whether the computed diff recorded any change.
	DiffHasChanges bool
	// LocationOnly marks a change limited to location metadata, no text change.
	LocationOnly bool
}

// ResolveType classifies an observation. Nil previous means newly-introduced
// content; nil new means the digest disappeared; metadata-only edits are
// location changes; otherwise the diff decides modified vs unchanged.
func ResolveType(o Observation) Type {
	switch {
	case o.NewChecksum == nil:
		return TypeDeletedContent
	case o.PreviousChecksum == nil:
		return TypeNewContent
	case o.LocationOnly:
		return TypeLocationChange
	case o.DiffHasChanges:
		return TypeModifiedContent
	}
	return TypeUnchangedContent
}
