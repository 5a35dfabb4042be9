package leave

import (
	"errors"
	"time"

	"attendance-dashboard/internal/calendar"
	"attendance-dashboard/internal/shared/apperror"
)

// Violation is one broken rule in an aggregated validation result. Code
// matches the corresponding sentinel error code so clients can key off it.
type Violation struct {
	Code          string   `json:"code"`
	Message       string   `json:"message"`
	ConflictDates []string `json:"conflict_dates,omitempty"`
}

// ValidationInput bundles everything the rule engine needs. All reads happen
// before validation; Validate itself is pure and side-effect free.
type ValidationInput struct {
	LeaveType LeaveType
	StartDate time.Time
	EndDate   time.Time

	Balance             SemiAnnualBalance
	ApprovedOverlapping []LeaveRequest
	TeamSize            int

	Calc   *calendar.Calculator
	Policy Policy
}

// ValidationResult aggregates every violation found plus the derived fields
// a persisted request will carry.
type ValidationResult struct {
	Admissible bool
	Violations []Violation

	BusinessDays   int
	Period         Period
	IsWeekendLeave bool
	Decision       CategoryDecision
}

// Validate runs the full rule set against a candidate request. Only an
// invalid date range short-circuits; every other rule is evaluated so the
// caller sees all violations at once.
func Validate(in ValidationInput) ValidationResult {
	businessDays, err := in.Calc.CountBusinessDays(in.StartDate, in.EndDate)
	if err != nil {
		return ValidationResult{
			Admissible: false,
			Violations: []Violation{toViolation(err, nil)},
		}
	}

	res := ValidationResult{
		BusinessDays: businessDays,
		Period:       PeriodOf(in.StartDate),
	}

	if in.LeaveType == LeaveTypeMaternity {
		// Maternity is a fixed structured grant measured in calendar days,
		// outside the semi-annual counters and the per-request ceiling.
		calendarDays := int(truncateDay(in.EndDate).Sub(truncateDay(in.StartDate)).Hours()/24) + 1
		if calendarDays > in.Policy.MaternityTotalDays {
			res.Violations = append(res.Violations, violation(
				"MAX_DURATION_EXCEEDED",
				"maternity leave cannot exceed the structured grant length",
			))
		}
	} else {
		if businessDays > in.Policy.MaxRequestBusinessDays {
			res.Violations = append(res.Violations, violation(
				"MAX_DURATION_EXCEEDED",
				"request exceeds the maximum allowed business days",
			))
		}

		if in.LeaveType == LeaveTypeVacation {
			if !CanConsumeVacation(in.Balance, businessDays, in.Policy) {
				res.Violations = append(res.Violations, violation(
					"INSUFFICIENT_BALANCE",
					"not enough vacation days left in this period",
				))
			}
			if in.Calc.TouchesWeekendEdge(in.StartDate, in.EndDate) {
				res.IsWeekendLeave = true
				if !CanConsumeWeekendLeave(in.Balance, in.Policy) {
					res.Violations = append(res.Violations, violation(
						"WEEKEND_LIMIT_EXCEEDED",
						"weekend leave limit for this period is already used",
					))
				}
			}
		}
	}

	if capacity := CheckCapacity(in.ApprovedOverlapping, in.TeamSize, in.StartDate, in.EndDate, in.Policy); !capacity.OK {
		res.Violations = append(res.Violations, Violation{
			Code:          "TEAM_CAPACITY_EXCEEDED",
			Message:       "too many team members are already on leave in this range",
			ConflictDates: capacity.ConflictDates,
		})
	}

	res.Decision = Categorize(in.LeaveType, businessDays, in.Policy)
	res.Admissible = len(res.Violations) == 0
	return res
}

func violation(code, message string) Violation {
	return Violation{Code: code, Message: message}
}

func toViolation(err error, dates []string) Violation {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return Violation{Code: appErr.Code, Message: appErr.Message, ConflictDates: dates}
	}
	return Violation{Code: apperror.CodeInternalError, Message: err.Error(), ConflictDates: dates}
}
