package insights

import (
	"slices"
	"strings"
	"time"

	"github.com/spektr-org/bizlens/store"
)

// ============================================================================
// NORMALIZATION — Embedded multi-valued fields into one-to-many rows
// ============================================================================
// Raw text is parsed here once; every later stage works on the typed rows.
// ============================================================================

// CategoryAssociation links a business to one of its categories.
type CategoryAssociation struct {
	BusinessID string
	Category   string
}

// ExplodeCategories splits the comma-joined categories of b. Tokens are
// trimmed, blanks dropped and duplicates removed, keeping first-seen order.
func ExplodeCategories(b store.Business) []CategoryAssociation {
	if b.Categories == "" {
		return nil
	}
	var out []CategoryAssociation
	seen := make(map[string]bool)
	for _, tok := range strings.Split(b.Categories, ",") {
		c := strings.TrimSpace(tok)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, CategoryAssociation{BusinessID: b.ID, Category: c})
	}
	return out
}

// HasCategory reports whether b carries category.
func HasCategory(b store.Business, category string) bool {
	for _, a := range ExplodeCategories(b) {
		if a.Category == category {
			return true
		}
	}
	return false
}

// CheckinEvent is one visit of a business.
type CheckinEvent struct {
	BusinessID string
	At         time.Time
}

// ExplodeCheckins parses the timestamp lists of the checkin records that
// belong to b. Malformed timestamps are skipped; their count is returned.
func ExplodeCheckins(b store.Business, checkins []store.Checkin) ([]CheckinEvent, int) {
	var out []CheckinEvent
	skipped := 0
	for _, c := range checkins {
		if c.BusinessID != b.ID {
			continue
		}
		for _, tok := range strings.Split(c.Date, ",") {
			s := strings.TrimSpace(tok)
			if s == "" {
				continue
			}
			at, ok := parseTimestamp(s)
			if !ok {
				skipped++
				continue
			}
			out = append(out, CheckinEvent{BusinessID: b.ID, At: at})
		}
	}
	return out, skipped
}

func parseTimestamp(s string) (time.Time, bool) {
	if t, err := time.Parse(store.TimestampLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// OpenDay is one entry of a business's hours map.
type OpenDay struct {
	BusinessID string
	Day        string
	Hours      string
}

var weekOrder = map[string]int{
	"Monday": 0, "Tuesday": 1, "Wednesday": 2, "Thursday": 3,
	"Friday": 4, "Saturday": 5, "Sunday": 6,
}

// ExplodeHours returns one row per day key of b.Hours, Monday through
// Sunday first and unrecognized keys after them in lexical order.
func ExplodeHours(b store.Business) []OpenDay {
	if len(b.Hours) == 0 {
		return nil
	}
	days := make([]string, 0, len(b.Hours))
	for d := range b.Hours {
		days = append(days, d)
	}
	slices.SortFunc(days, func(a, c string) int {
		ia, okA := weekOrder[a]
		ic, okC := weekOrder[c]
		switch {
		case okA && okC:
			return ia - ic
		case okA:
			return -1
		case okC:
			return 1
		default:
			return strings.Compare(a, c)
		}
	})

	out := make([]OpenDay, 0, len(days))
	for _, d := range days {
		out = append(out, OpenDay{BusinessID: b.ID, Day: d, Hours: b.Hours[d]})
	}
	return out
}
