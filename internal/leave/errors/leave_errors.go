package leaveerrors

import (
	"net/http"

	"attendance-dashboard/internal/shared/apperror"
)

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type must be one of VACATION, SICK, MATERNITY, OTHER",
		http.StatusBadRequest,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"period must look like 2025-H1",
		http.StatusBadRequest,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrNotesRequired = apperror.New(
		apperror.CodeInvalidInput,
		"notes are required when rejecting a request",
		http.StatusBadRequest,
	)
	ErrNotRequestOwner = apperror.New(
		apperror.CodeForbidden,
		"only the requester may cancel this leave request",
		http.StatusForbidden,
	)
	ErrSubjectMismatch = apperror.New(
		apperror.CodeForbidden,
		"cannot file a leave request for another employee",
		http.StatusForbidden,
	)

	// Rule-engine violations. The codes are stable and also appear inside
	// aggregated validation results.
	ErrMaxDurationExceeded = apperror.New(
		"MAX_DURATION_EXCEEDED",
		"request exceeds the maximum allowed business days",
		http.StatusBadRequest,
	)
	ErrInsufficientBalance = apperror.New(
		"INSUFFICIENT_BALANCE",
		"not enough vacation days left in this period",
		http.StatusConflict,
	)
	ErrWeekendLimitExceeded = apperror.New(
		"WEEKEND_LIMIT_EXCEEDED",
		"weekend leave limit for this period is already used",
		http.StatusConflict,
	)
	ErrTeamCapacityExceeded = apperror.New(
		"TEAM_CAPACITY_EXCEEDED",
		"too many team members are already on leave in this range",
		http.StatusConflict,
	)
	ErrInvalidTransition = apperror.New(
		"INVALID_TRANSITION",
		"leave request cannot move to the requested status",
		http.StatusBadRequest,
	)
	ErrBalanceUnderflow = apperror.New(
		"BALANCE_UNDERFLOW",
		"balance commit would drive a counter below zero",
		http.StatusConflict,
	)
	ErrConcurrencyConflict = apperror.New(
		"CONCURRENCY_CONFLICT",
		"a concurrent decision changed team capacity or balances, retry the approval",
		http.StatusConflict,
	)
	ErrManagementApprovalRequired = apperror.New(
		apperror.CodeForbidden,
		"this request requires management-tier approval",
		http.StatusForbidden,
	)
)
