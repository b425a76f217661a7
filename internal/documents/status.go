package documents

// Status is the visibility state of a document.
type Status string

const (
	StatusPrivate  Status = "private"
	StatusPublic   Status = "public"
	StatusArchived Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPrivate, StatusPublic, StatusArchived:
		return true
	default:
		return false
	}
}
