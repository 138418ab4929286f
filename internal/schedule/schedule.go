// Package schedule holds the booking policy: the rolling window of days and
// the set of hour marks open for reservation. Both come from config; the
// persisted slot-key format does not depend on them.
package schedule

import (
	"fmt"
	"time"

	"github.com/spssppz/tennisOkt/internal/models"
)

type Schedule struct {
	WindowDays int
	Hours      []int
	now        func() time.Time
}

// New validates the policy and returns a Schedule. Hours must be strictly
// ascending and within 0..23; the window must cover at least one day.
func New(windowDays int, hours []int) (*Schedule, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("schedule: window must be positive, got %d", windowDays)
	}
	if len(hours) == 0 {
		return nil, fmt.Errorf("schedule: at least one hour mark is required")
	}
	for i, h := range hours {
		if h < 0 || h > 23 {
			return nil, fmt.Errorf("schedule: hour mark %d out of range", h)
		}
		if i > 0 && hours[i-1] >= h {
			return nil, fmt.Errorf("schedule: hour marks must be strictly ascending")
		}
	}

	return &Schedule{
		WindowDays: windowDays,
		Hours:      append([]int(nil), hours...),
		now:        time.Now,
	}, nil
}

// Default returns the stock policy: 7 days, hours 08:00..19:00.
func Default() *Schedule {
	hours := make([]int, 0, models.DefaultLastHour-models.DefaultFirstHour+1)
	for h := models.DefaultFirstHour; h <= models.DefaultLastHour; h++ {
		hours = append(hours, h)
	}
	s, _ := New(models.DefaultWindowDays, hours)
	return s
}

// WithClock replaces the time source. Tests only.
func (s *Schedule) WithClock(now func() time.Time) *Schedule {
	s.now = now
	return s
}

// Days returns the rolling window: today plus the following WindowDays-1
// days, time component zeroed.
func (s *Schedule) Days() []time.Time {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	days := make([]time.Time, 0, s.WindowDays)
	for i := 0; i < s.WindowDays; i++ {
		days = append(days, today.AddDate(0, 0, i))
	}
	return days
}

// ContainsDate reports whether the day falls inside the rolling window.
func (s *Schedule) ContainsDate(date time.Time) bool {
	target := date.Format(models.DateLayout)
	for _, day := range s.Days() {
		if day.Format(models.DateLayout) == target {
			return true
		}
	}
	return false
}

// ContainsHour reports whether the hour is one of the configured marks.
func (s *Schedule) ContainsHour(hour int) bool {
	for _, h := range s.Hours {
		if h == hour {
			return true
		}
	}
	return false
}

// OfferableHours returns the hour marks that may still be offered for the
// given day: for today, marks at or before the current hour are dropped.
// Booked slots are filtered by the caller, not here.
func (s *Schedule) OfferableHours(date time.Time) []int {
	now := s.now()
	sameDay := date.Format(models.DateLayout) == now.Format(models.DateLayout)

	hours := make([]int, 0, len(s.Hours))
	for _, h := range s.Hours {
		if sameDay && h <= now.Hour() {
			continue
		}
		hours = append(hours, h)
	}
	return hours
}
