package team

type CreateTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

type TeamResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}

type EmployeeResponse struct {
	ID       string  `json:"id"`
	TeamID   *string `json:"team_id,omitempty"`
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
}

// Membership is what the leave engine consumes: which team an employee is on
// and how many members that team has.
type Membership struct {
	EmployeeID string
	TeamID     string
	TeamSize   int
}
