package calendar

type CreateHolidayRequest struct {
	Name       string `json:"name" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Recurrence string `json:"recurrence" binding:"omitempty,oneof=none annual monthly weekly"`
}

type UpdateHolidayRequest struct {
	Name       string `json:"name" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Recurrence string `json:"recurrence" binding:"required,oneof=none annual monthly weekly"`
}

type HolidayResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	Recurrence string `json:"recurrence"`
}

type BusinessDaysResponse struct {
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	BusinessDays int    `json:"business_days"`
}
