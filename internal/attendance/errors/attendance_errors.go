package attendanceerrors

import (
	"net/http"

	"attendance-dashboard/internal/shared/apperror"
)

var (
	ErrAlreadyClockedIn = apperror.New(
		apperror.CodeConflict,
		"already clocked in for today",
		http.StatusConflict,
	)
	ErrAlreadyClockedOut = apperror.New(
		apperror.CodeConflict,
		"already clocked out for today",
		http.StatusConflict,
	)
	ErrNoClockInToday = apperror.New(
		apperror.CodeNotFound,
		"clock in not found for today",
		http.StatusNotFound,
	)
	ErrOnApprovedLeave = apperror.New(
		"ON_APPROVED_LEAVE",
		"cannot clock in while on approved leave",
		http.StatusConflict,
	)
)
