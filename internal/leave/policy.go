package leave

import (
	"os"
	"strconv"
)

// Policy carries every tunable threshold of the leave rule engine. It is
// built once at startup and injected, so tests can vary policy without
// touching globals.
type Policy struct {
	// Semi-annual allocation caps.
	MaxVacationDaysPerPeriod  int
	MaxWeekendLeavesPerPeriod int

	// Hard ceiling on a single request, in business days.
	MaxRequestBusinessDays int

	// Requests longer than this many business days need management approval.
	ExtendedThresholdDays int

	// Maternity structured grant: 60 days basic pay + 30 days remote,
	// tracked outside the semi-annual counters.
	MaternityTotalDays int

	// Maximum fraction of a team simultaneously on approved leave.
	TeamCapacityRatio float64
}

func DefaultPolicy() Policy {
	return Policy{
		MaxVacationDaysPerPeriod:  12,
		MaxWeekendLeavesPerPeriod: 2,
		MaxRequestBusinessDays:    5,
		ExtendedThresholdDays:     3,
		MaternityTotalDays:        90,
		TeamCapacityRatio:         0.49,
	}
}

// PolicyFromEnv overlays LEAVE_* environment variables on the defaults.
func PolicyFromEnv() Policy {
	p := DefaultPolicy()
	p.MaxVacationDaysPerPeriod = envInt("LEAVE_MAX_VACATION_DAYS", p.MaxVacationDaysPerPeriod)
	p.MaxWeekendLeavesPerPeriod = envInt("LEAVE_MAX_WEEKEND_LEAVES", p.MaxWeekendLeavesPerPeriod)
	p.MaxRequestBusinessDays = envInt("LEAVE_MAX_REQUEST_DAYS", p.MaxRequestBusinessDays)
	p.ExtendedThresholdDays = envInt("LEAVE_EXTENDED_THRESHOLD_DAYS", p.ExtendedThresholdDays)
	p.MaternityTotalDays = envInt("LEAVE_MATERNITY_TOTAL_DAYS", p.MaternityTotalDays)
	if v := os.Getenv("LEAVE_TEAM_CAPACITY_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f < 1 {
			p.TeamCapacityRatio = f
		}
	}
	return p
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
