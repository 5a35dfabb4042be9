package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusDraft     = "DRAFT"
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

type LeaveRequest struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_user_dates"`
	TeamID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_team_status"`

	LeaveType    string    `gorm:"type:varchar(20);not null"`
	StartDate    time.Time `gorm:"type:date;not null;index:idx_leave_requests_user_dates"`
	EndDate      time.Time `gorm:"type:date;not null;index:idx_leave_requests_user_dates"`
	BusinessDays int       `gorm:"type:int;not null;default:1"`
	Reason       string    `gorm:"type:text"`

	Category                   string `gorm:"type:varchar(20);not null"`
	SemiAnnualPeriod           string `gorm:"type:varchar(10);not null"`
	IsWeekendLeave             bool   `gorm:"not null;default:false"`
	RequiresManagementApproval bool   `gorm:"not null;default:false"`

	Status     string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_requests_team_status"`
	CreatedBy  uuid.UUID  `gorm:"type:uuid;not null"`
	DecidedBy  *uuid.UUID `gorm:"type:uuid"`
	DecidedAt  *time.Time
	AdminNotes *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leave_requests_deleted_at"`
}

// SemiAnnualBalance tracks per-user usage against the semi-annual caps.
// Rows are created lazily on first commit per (user, period); a period that
// has no row simply has both counters at zero.
type SemiAnnualBalance struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_semi_annual_balances_user_period"`
	Year   int       `gorm:"not null;uniqueIndex:idx_semi_annual_balances_user_period"`
	Half   int       `gorm:"not null;uniqueIndex:idx_semi_annual_balances_user_period"`

	VacationDaysUsed  int `gorm:"not null;default:0"`
	WeekendLeavesUsed int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func isAllowedStatusTransition(currentStatus, targetStatus string) bool {
	switch currentStatus {
	case StatusDraft:
		return targetStatus == StatusPending
	case StatusPending:
		return targetStatus == StatusApproved ||
			targetStatus == StatusRejected ||
			targetStatus == StatusCancelled
	case StatusApproved:
		// cancellation of an approved request reverses its balance commits
		return targetStatus == StatusCancelled
	default:
		return false
	}
}
