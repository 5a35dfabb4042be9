package calendar

import (
	"time"

	calendarerrors "attendance-dashboard/internal/calendar/errors"
)

// WeekConfig defines the working week. The company week runs Sunday through
// Thursday; Thursday and Sunday are the edges adjacent to the Friday/Saturday
// weekend and carry separate weekend-leave tracking.
type WeekConfig struct {
	WorkingDays  []time.Weekday
	WeekendEdges []time.Weekday
}

func DefaultWeekConfig() WeekConfig {
	return WeekConfig{
		WorkingDays: []time.Weekday{
			time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		},
		WeekendEdges: []time.Weekday{time.Thursday, time.Sunday},
	}
}

// Calculator answers working-day questions against a fixed week definition
// and a snapshot of company holidays. It is a pure value: build one per
// evaluation from the current holiday list.
type Calculator struct {
	working  map[time.Weekday]bool
	edges    map[time.Weekday]bool
	holidays []Holiday
}

func NewCalculator(cfg WeekConfig, holidays []Holiday) *Calculator {
	working := make(map[time.Weekday]bool, len(cfg.WorkingDays))
	for _, d := range cfg.WorkingDays {
		working[d] = true
	}
	edges := make(map[time.Weekday]bool, len(cfg.WeekendEdges))
	for _, d := range cfg.WeekendEdges {
		edges[d] = true
	}
	return &Calculator{working: working, edges: edges, holidays: holidays}
}

// IsWorkingDay reports whether date is a workday: a working weekday that does
// not match any company holiday.
func (c *Calculator) IsWorkingDay(date time.Time) bool {
	if !c.working[date.Weekday()] {
		return false
	}
	for _, h := range c.holidays {
		if matchesHoliday(date, h) {
			return false
		}
	}
	return true
}

// IsWeekendWorkingDay reports whether date falls on an edge of the working
// week (Thursday or Sunday under the default config).
func (c *Calculator) IsWeekendWorkingDay(date time.Time) bool {
	return c.edges[date.Weekday()]
}

// CountBusinessDays returns the inclusive number of working days in
// [start, end]. Fails with ErrInvalidRange when start is after end.
func (c *Calculator) CountBusinessDays(start, end time.Time) (int, error) {
	start = truncateToDate(start)
	end = truncateToDate(end)
	if start.After(end) {
		return 0, calendarerrors.ErrInvalidRange
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsWorkingDay(d) {
			count++
		}
	}
	return count, nil
}

// TouchesWeekendEdge reports whether any day in [start, end] is a
// weekend-working day.
func (c *Calculator) TouchesWeekendEdge(start, end time.Time) bool {
	start = truncateToDate(start)
	end = truncateToDate(end)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsWeekendWorkingDay(d) {
			return true
		}
	}
	return false
}

// matchesHoliday resolves the recurrence rule for a single holiday against a
// date. Pure over (date, holiday); no caching needed at this call frequency.
func matchesHoliday(date time.Time, h Holiday) bool {
	switch h.Recurrence {
	case RecurrenceAnnual:
		return date.Month() == h.Date.Month() && date.Day() == h.Date.Day()
	case RecurrenceMonthly:
		return date.Day() == h.Date.Day()
	case RecurrenceWeekly:
		return date.Weekday() == h.Date.Weekday()
	default:
		return date.Year() == h.Date.Year() &&
			date.Month() == h.Date.Month() &&
			date.Day() == h.Date.Day()
	}
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
