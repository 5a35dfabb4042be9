package events

import "time"

const LeaveDecisionTopic = "hr.leave.decision.v1"

// LeaveDecisionEvent is published through the outbox whenever a leave request
// reaches a terminal decision (approved, rejected, or cancelled).
type LeaveDecisionEvent struct {
	EventType        string    `json:"event_type"`
	RequestID        string    `json:"request_id"`
	UserID           string    `json:"user_id"`
	TeamID           string    `json:"team_id"`
	LeaveType        string    `json:"leave_type"`
	Status           string    `json:"status"`
	SemiAnnualPeriod string    `json:"semi_annual_period"`
	OccurredAt       time.Time `json:"occurred_at"`
}

const (
	LeaveEventApproved  = "leave.approved"
	LeaveEventRejected  = "leave.rejected"
	LeaveEventCancelled = "leave.cancelled"
)
