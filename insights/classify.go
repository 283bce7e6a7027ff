package insights

import "time"

// StarGroup is a coarse rating bucket.
type StarGroup string

const (
	OneStar       StarGroup = "1 star"
	TwoThreeStars StarGroup = "2-3 stars"
	FourFiveStars StarGroup = "4-5 stars"
)

// StarGroups lists every bucket in display order.
var StarGroups = []StarGroup{OneStar, TwoThreeStars, FourFiveStars}

// ClassifyStars buckets a rating: exactly 1, 2 through 3, or 4 through 5.
// Ratings between buckets (1.5, 3.5) or outside [1, 5] have no group.
func ClassifyStars(rating float64) (StarGroup, bool) {
	switch {
	case rating == 1:
		return OneStar, true
	case rating >= 2 && rating <= 3:
		return TwoThreeStars, true
	case rating >= 4 && rating <= 5:
		return FourFiveStars, true
	default:
		return "", false
	}
}

// TimeBucket is the day-of-week / hour slot of a checkin. Day counts from
// 1 = Sunday to 7 = Saturday.
type TimeBucket struct {
	Day  int `json:"day"`
	Hour int `json:"hour"`
}

// BucketOf returns the slot of t.
func BucketOf(t time.Time) TimeBucket {
	return TimeBucket{Day: int(t.Weekday()) + 1, Hour: t.Hour()}
}

var dayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DayName returns the short name of a 1-based day number.
func DayName(day int) string {
	if day < 1 || day > 7 {
		return ""
	}
	return dayNames[day-1]
}
