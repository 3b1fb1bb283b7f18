package provenance

// InvalidationReason explains why a provenance link's validity window was
// closed. Closing a window always requires a reason; the change-driven
// reasons additionally require the triggering change reference.
type InvalidationReason string

const (
	ReasonContentChanged  InvalidationReason = "content_changed"
	ReasonContentDeleted  InvalidationReason = "content_deleted"
	ReasonQualityIssue    InvalidationReason = "quality_issue"
	ReasonManual          InvalidationReason = "manual"
	ReasonSelectiveImpact InvalidationReason = "selective_impact"
)

// ParseInvalidationReason validates a reason tag.
func ParseInvalidationReason(s string) (InvalidationReason, bool) {
	switch InvalidationReason(s) {
	case ReasonContentChanged, ReasonContentDeleted, ReasonQualityIssue,
		ReasonManual, ReasonSelectiveImpact:
		return InvalidationReason(s), true
	}
	return "", false
}

// ChangeDriven reports whether the reason is triggered by a change record,
// in which case the closing write must carry the change reference.
func (r InvalidationReason) ChangeDriven() bool {
	switch r {
	case ReasonContentChanged, ReasonContentDeleted, ReasonSelectiveImpact:
		return true
	}
	return false
}
