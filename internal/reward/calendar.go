// Package reward computes daily reward amounts and claim eligibility.
package reward

import (
	"sort"
	"time"

	"welearn/internal/domain"
)

const (
	WeekdayReward = 25
	WeekendReward = 50
)

// RewardForDate returns the daily reward for the calendar day of d.
func RewardForDate(d time.Time) int {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return WeekendReward
	default:
		return WeekdayReward
	}
}

// DateKey formats the calendar day of t as YYYY-MM-DD in t's location.
func DateKey(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// ParseDate parses a YYYY-MM-DD key as midnight in loc.
func ParseDate(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(domain.DateLayout, key, loc)
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day as seen
// from a's location.
func SameDay(a, b time.Time) bool {
	return DateKey(a) == DateKey(b.In(a.Location()))
}

// DateSet is a set of claimed calendar days.
type DateSet map[string]struct{}

// NewDateSet builds a set from YYYY-MM-DD keys.
func NewDateSet(keys ...string) DateSet {
	s := make(DateSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s DateSet) Add(t time.Time) {
	s[DateKey(t)] = struct{}{}
}

func (s DateSet) Has(t time.Time) bool {
	_, ok := s[DateKey(t)]
	return ok
}

// Keys returns the dates in ascending order.
func (s DateSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsClaimable reports whether d is today and today has not been claimed.
func IsClaimable(d, today time.Time, claimed DateSet) bool {
	return SameDay(d, today) && !claimed.Has(today)
}

// DayStatus is how a calendar day is rendered.
type DayStatus string

const (
	PastMissed     DayStatus = "past-missed"
	PastClaimed    DayStatus = "past-claimed"
	TodayClaimable DayStatus = "today-claimable"
	TodayClaimed   DayStatus = "today-claimed"
	Future         DayStatus = "future"
)

// ClassifyDay returns the rendering status of d relative to today.
func ClassifyDay(d, today time.Time, claimed DateSet) DayStatus {
	dk, tk := DateKey(d), DateKey(today.In(d.Location()))
	switch {
	case dk == tk && claimed.Has(d):
		return TodayClaimed
	case dk == tk:
		return TodayClaimable
	case dk > tk:
		return Future
	case claimed.Has(d):
		return PastClaimed
	default:
		return PastMissed
	}
}

// CalendarDay is one cell of the monthly reward calendar.
type CalendarDay struct {
	Date   time.Time
	Reward int
	Status DayStatus
}

// Calendar returns every day of month in today's location.
func Calendar(year int, month time.Month, today time.Time, claimed DateSet) []CalendarDay {
	loc := today.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	var days []CalendarDay
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		days = append(days, CalendarDay{
			Date:   d,
			Reward: RewardForDate(d),
			Status: ClassifyDay(d, today, claimed),
		})
	}
	return days
}
