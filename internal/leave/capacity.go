package leave

import "time"

// CapacityResult reports whether a candidate request keeps the team under
// the simultaneous-absence ratio, and if not, which dates breach it.
type CapacityResult struct {
	OK            bool
	ConflictDates []string
}

// CheckCapacity walks every day of the candidate range and counts, per day,
// how many already-approved requests overlap it, plus one for the candidate
// itself. A day whose absent/teamSize ratio exceeds the policy limit becomes
// a conflict date. Calendar days are counted rather than business days:
// capacity is about simultaneous absence, not payroll.
func CheckCapacity(approved []LeaveRequest, teamSize int, start, end time.Time, p Policy) CapacityResult {
	// A team of zero or unknown size cannot be over capacity.
	if teamSize <= 0 {
		return CapacityResult{OK: true}
	}

	start = truncateDay(start)
	end = truncateDay(end)

	var conflicts []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		absent := 1 // the candidate
		for _, r := range approved {
			if overlapsDay(r, d) {
				absent++
			}
		}
		if float64(absent)/float64(teamSize) > p.TeamCapacityRatio {
			conflicts = append(conflicts, d.Format("2006-01-02"))
		}
	}

	return CapacityResult{OK: len(conflicts) == 0, ConflictDates: conflicts}
}

func overlapsDay(r LeaveRequest, day time.Time) bool {
	s := truncateDay(r.StartDate)
	e := truncateDay(r.EndDate)
	return !day.Before(s) && !day.After(e)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
