package store

import "time"

// TimestampLayout is the layout of review dates and checkin timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Business is a reviewed venue.
type Business struct {
	ID          string  `json:"business_id"`
	Name        string  `json:"name"`
	City        string  `json:"city"`
	State       string  `json:"state,omitempty"`
	Address     string  `json:"address"`
	PostalCode  string  `json:"postal_code"`
	Stars       float64 `json:"stars"`
	ReviewCount int     `json:"review_count"`
	IsOpen      bool    `json:"is_open"`
	// Categories is the raw comma-joined category list.
	Categories string `json:"categories"`
	// Hours maps day name to "H:M-H:M". Nil when the source has no
	// structured hours.
	Hours map[string]string `json:"hours,omitempty"`
}

// Review is one user's rating of one business.
type Review struct {
	ID         string    `json:"review_id"`
	BusinessID string    `json:"business_id"`
	UserID     string    `json:"user_id"`
	Stars      int       `json:"stars"`
	Useful     int       `json:"useful"`
	Funny      int       `json:"funny"`
	Cool       int       `json:"cool"`
	Text       string    `json:"text"`
	Date       time.Time `json:"date"`
}

// Checkin holds the raw ", "-joined visit timestamps of a business.
type Checkin struct {
	BusinessID string `json:"business_id"`
	Date       string `json:"date"`
}

// User is a reviewer. AverageStars is derived from the user's reviews
// and never persisted.
type User struct {
	ID           string  `json:"user_id"`
	Name         string  `json:"name"`
	ReviewCount  int     `json:"review_count"`
	AverageStars float64 `json:"average_stars"`
}

// ReviewFilter narrows Reviews. Zero-valued fields do not filter.
// BusinessIDs and BusinessID are OR-combined; the user filter is ANDed.
type ReviewFilter struct {
	BusinessID  string
	BusinessIDs []string
	UserID      string
}

func (f ReviewFilter) businessIDs() []string {
	if f.BusinessID == "" {
		return f.BusinessIDs
	}
	return append([]string{f.BusinessID}, f.BusinessIDs...)
}

func (f ReviewFilter) empty() bool {
	return f.BusinessID == "" && len(f.BusinessIDs) == 0 && f.UserID == ""
}
