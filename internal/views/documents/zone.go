package documents

import "github.com/davidayox123/acadrepo-tui/internal/api"

// Zone identifies a section of the document browser.
type Zone int

const (
	ZoneQueue Zone = iota
	ZoneReview
	ZoneDecided
)

// Classify returns the zone a document belongs in. Approved and rejected
// documents share the decided zone; the status glyph tells them apart.
func Classify(d *api.Document) Zone {
	switch d.Status {
	case api.StatusApproved, api.StatusRejected:
		return ZoneDecided
	case api.StatusUnderReview:
		return ZoneReview
	default:
		return ZoneQueue
	}
}

// ZoneName returns a display label.
func ZoneName(z Zone) string {
	switch z {
	case ZoneQueue:
		return "QUEUE"
	case ZoneReview:
		return "IN REVIEW"
	case ZoneDecided:
		return "DECIDED"
	default:
		return "?"
	}
}
