package leave

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	leaveerrors "attendance-dashboard/internal/leave/errors"
)

// Period identifies a semi-annual allocation window. Counters never carry
// over: a new period starts both at zero by construction, so there is no
// stored "reset" in steady state.
type Period struct {
	Year int
	Half int
}

// PeriodOf maps a calendar date to its semi-annual period: H1 for January
// through June, H2 for July through December.
func PeriodOf(date time.Time) Period {
	half := 1
	if date.Month() >= time.July {
		half = 2
	}
	return Period{Year: date.Year(), Half: half}
}

func (p Period) String() string {
	return fmt.Sprintf("%d-H%d", p.Year, p.Half)
}

// ParsePeriod parses strings like "2025-H1".
func ParsePeriod(s string) (Period, error) {
	parts := strings.SplitN(s, "-H", 2)
	if len(parts) != 2 {
		return Period{}, leaveerrors.ErrInvalidPeriod
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return Period{}, leaveerrors.ErrInvalidPeriod
	}
	half, err := strconv.Atoi(parts[1])
	if err != nil || (half != 1 && half != 2) {
		return Period{}, leaveerrors.ErrInvalidPeriod
	}
	return Period{Year: year, Half: half}, nil
}

// CanConsumeVacation reports whether requestedDays more vacation days fit
// under the period cap given the current balance snapshot.
func CanConsumeVacation(b SemiAnnualBalance, requestedDays int, p Policy) bool {
	return b.VacationDaysUsed+requestedDays <= p.MaxVacationDaysPerPeriod
}

// CanConsumeWeekendLeave reports whether one more weekend leave fits under
// the period cap.
func CanConsumeWeekendLeave(b SemiAnnualBalance, p Policy) bool {
	return b.WeekendLeavesUsed < p.MaxWeekendLeavesPerPeriod
}
