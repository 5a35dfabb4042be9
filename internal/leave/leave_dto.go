package leave

import "time"

type SubmitLeaveRequest struct {
	UserID    string `json:"user_id" binding:"omitempty,uuid"`
	LeaveType string `json:"leave_type" binding:"required,oneof=VACATION SICK MATERNITY OTHER"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"omitempty,max=1000"`
}

type ValidateLeaveRequest = SubmitLeaveRequest

type DecideLeaveRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=1000"`
}

type LeaveRequestResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	TeamID       string `json:"team_id"`
	LeaveType    string `json:"leave_type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	BusinessDays int    `json:"business_days"`
	Reason       string `json:"reason,omitempty"`

	Category                   string `json:"category"`
	SemiAnnualPeriod           string `json:"semi_annual_period"`
	IsWeekendLeave             bool   `json:"is_weekend_leave"`
	RequiresManagementApproval bool   `json:"requires_management_approval"`

	Status     string  `json:"status"`
	DecidedBy  *string `json:"decided_by,omitempty"`
	DecidedAt  *string `json:"decided_at,omitempty"`
	AdminNotes *string `json:"admin_notes,omitempty"`

	CreatedAt string `json:"created_at"`
}

type ValidationResponse struct {
	Admissible   bool        `json:"admissible"`
	Violations   []Violation `json:"violations"`
	BusinessDays int         `json:"business_days"`
	Period       string      `json:"period"`
	Category     string      `json:"category"`
	ApprovalTier string      `json:"approval_tier"`

	IsWeekendLeave bool `json:"is_weekend_leave"`
}

type SubmitLeaveResponse struct {
	Admissible bool                  `json:"admissible"`
	Violations []Violation           `json:"violations,omitempty"`
	Request    *LeaveRequestResponse `json:"request,omitempty"`
}

type BalanceResponse struct {
	UserID            string `json:"user_id"`
	Period            string `json:"period"`
	VacationDaysUsed  int    `json:"vacation_days_used"`
	VacationDaysLeft  int    `json:"vacation_days_left"`
	WeekendLeavesUsed int    `json:"weekend_leaves_used"`
	WeekendLeavesLeft int    `json:"weekend_leaves_left"`
}

func mapRequestToResponse(r LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:           r.ID.String(),
		UserID:       r.UserID.String(),
		TeamID:       r.TeamID.String(),
		LeaveType:    r.LeaveType,
		StartDate:    r.StartDate.Format("2006-01-02"),
		EndDate:      r.EndDate.Format("2006-01-02"),
		BusinessDays: r.BusinessDays,
		Reason:       r.Reason,

		Category:                   r.Category,
		SemiAnnualPeriod:           r.SemiAnnualPeriod,
		IsWeekendLeave:             r.IsWeekendLeave,
		RequiresManagementApproval: r.RequiresManagementApproval,

		Status:     r.Status,
		AdminNotes: r.AdminNotes,

		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if r.DecidedBy != nil {
		v := r.DecidedBy.String()
		resp.DecidedBy = &v
	}
	if r.DecidedAt != nil {
		v := r.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	return resp
}
