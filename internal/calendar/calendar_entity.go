package calendar

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RecurrenceNone    = "none"
	RecurrenceAnnual  = "annual"
	RecurrenceMonthly = "monthly"
	RecurrenceWeekly  = "weekly"
)

// Holiday is a company holiday. Date anchors the recurrence rule: for
// "annual" the month/day repeat every year, for "monthly" the day-of-month
// repeats, for "weekly" the weekday repeats.
type Holiday struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string    `gorm:"type:varchar(100);not null"`
	Date       time.Time `gorm:"type:date;not null"`
	Recurrence string    `gorm:"type:varchar(10);not null;default:'none'"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_company_holidays_deleted_at"`
}

func (Holiday) TableName() string {
	return "company_holidays"
}

func ValidRecurrence(r string) bool {
	switch r {
	case RecurrenceNone, RecurrenceAnnual, RecurrenceMonthly, RecurrenceWeekly:
		return true
	default:
		return false
	}
}
