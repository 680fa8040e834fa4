package domain

import (
	"strings"
	"time"
)

// Tag labels articles. Tags are keyed by a serial integer id; names are
// unique.
type Tag struct {
	ID        int64
	ParentID  *int64
	Name      string
	CreatedAt time.Time
}

// Slugify normalizes the tag name into its stored form.
func (t *Tag) Slugify() {
	t.Name = strings.ToLower(strings.Join(strings.Fields(t.Name), "-"))
}
