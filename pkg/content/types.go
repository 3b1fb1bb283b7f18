package content

// Status represents content lifecycle states. Content records are never
// mutated in place; a content change always produces a new digest, so the
// only transitions are active → archived/deleted, driven by ingestion.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

// ParseStatus validates a status tag. Invalid tags are caught at construction
// rather than at use.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusActive, StatusArchived, StatusDeleted:
		return Status(s), true
	}
	return "", false
}
