package leave

// LeaveType and Category are closed sets; Categorize matches them
// exhaustively so a new leave type is a compile-visible change here.
type LeaveType string

const (
	LeaveTypeVacation  LeaveType = "VACATION"
	LeaveTypeSick      LeaveType = "SICK"
	LeaveTypeMaternity LeaveType = "MATERNITY"
	LeaveTypeOther     LeaveType = "OTHER"
)

type Category string

const (
	CategoryRegular  Category = "REGULAR"
	CategoryMedical  Category = "MEDICAL"
	CategoryFamily   Category = "FAMILY"
	CategoryExtended Category = "EXTENDED"
)

type ApprovalTier string

const (
	TierAdmin      ApprovalTier = "ADMIN"
	TierManagement ApprovalTier = "MANAGEMENT"
)

func ValidLeaveType(s string) bool {
	switch LeaveType(s) {
	case LeaveTypeVacation, LeaveTypeSick, LeaveTypeMaternity, LeaveTypeOther:
		return true
	default:
		return false
	}
}

// CategoryDecision is the categorizer's verdict: which bucket the request
// falls into and which approval tier must sign off.
type CategoryDecision struct {
	Category Category
	Tier     ApprovalTier
}

// Categorize assigns category and approval tier from leave type and span.
// Rules apply in priority order: sick leave is always medical and never
// auto-approved; maternity is a structured family grant outside the
// semi-annual counters; anything longer than the extended threshold needs
// the management tier; the rest is regular admin-tier leave.
func Categorize(lt LeaveType, businessDays int, p Policy) CategoryDecision {
	switch lt {
	case LeaveTypeSick:
		return CategoryDecision{Category: CategoryMedical, Tier: TierAdmin}
	case LeaveTypeMaternity:
		return CategoryDecision{Category: CategoryFamily, Tier: TierAdmin}
	case LeaveTypeVacation, LeaveTypeOther:
		if businessDays > p.ExtendedThresholdDays {
			return CategoryDecision{Category: CategoryExtended, Tier: TierManagement}
		}
		return CategoryDecision{Category: CategoryRegular, Tier: TierAdmin}
	default:
		// Unknown types are rejected upstream by ValidLeaveType; treat the
		// impossible case as regular admin leave rather than panicking.
		return CategoryDecision{Category: CategoryRegular, Tier: TierAdmin}
	}
}
