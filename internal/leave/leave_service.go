package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"attendance-dashboard/internal/calendar"
	"attendance-dashboard/internal/domain"
	"attendance-dashboard/internal/events"
	leaveerrors "attendance-dashboard/internal/leave/errors"
	"attendance-dashboard/internal/messaging/kafka"
	"attendance-dashboard/internal/shared/contextutil"
	"attendance-dashboard/internal/team"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CalendarService is the slice of the calendar module the leave engine
// consumes.
type CalendarService interface {
	Calculator(ctx context.Context) (*calendar.Calculator, error)
}

// Directory resolves team membership for an employee.
type Directory interface {
	MembershipOf(ctx context.Context, employeeID string) (team.Membership, error)
}

// TierAuthorizer answers whether an actor holds a permission. Backed by the
// rbac module in production.
type TierAuthorizer interface {
	Enforce(ctx context.Context, req domain.EnforceRequest) (bool, error)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Validate(ctx context.Context, req ValidateLeaveRequest) (ValidationResponse, error)
	Submit(ctx context.Context, req SubmitLeaveRequest) (SubmitLeaveResponse, error)
	GetByID(ctx context.Context, id string) (LeaveRequestResponse, error)
	GetAllByTeam(ctx context.Context, teamID, status string) ([]LeaveRequestResponse, error)
	GetAllByUser(ctx context.Context, userID string) ([]LeaveRequestResponse, error)

	Approve(ctx context.Context, id, actorID string, req DecideLeaveRequest) (LeaveRequestResponse, error)
	Reject(ctx context.Context, id, actorID string, req DecideLeaveRequest) (LeaveRequestResponse, error)
	Cancel(ctx context.Context, id, actorID string) (LeaveRequestResponse, error)

	GetBalance(ctx context.Context, userID, period string) (BalanceResponse, error)
	ResetBalance(ctx context.Context, userID, period string) error

	OnApprovedLeave(ctx context.Context, employeeID string, date time.Time) (bool, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	calendarSvc CalendarService
	directory   Directory
	authorizer  TierAuthorizer
	policy      Policy
	outboxRepo  kafka.OutboxRepository
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	calendarSvc CalendarService,
	directory Directory,
	authorizer TierAuthorizer,
	policy Policy,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, calendarSvc, directory, authorizer, policy, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	calendarSvc CalendarService,
	directory Directory,
	authorizer TierAuthorizer,
	policy Policy,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		calendarSvc: calendarSvc,
		directory:   directory,
		authorizer:  authorizer,
		policy:      policy,
		outboxRepo:  outboxRepo,
		logger:      l,
	}
}

// evaluation is everything derived while validating one candidate request.
type evaluation struct {
	membership team.Membership
	start, end time.Time
	result     ValidationResult
}

// evaluate parses the request, gathers directory/balance/overlap facts and
// runs the pure rule engine. Shared by Validate and Submit.
func (s *service) evaluate(ctx context.Context, req SubmitLeaveRequest) (evaluation, error) {
	if !ValidLeaveType(req.LeaveType) {
		return evaluation{}, leaveerrors.ErrInvalidLeaveType
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return evaluation{}, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return evaluation{}, err
	}

	membership, err := s.directory.MembershipOf(ctx, req.UserID)
	if err != nil {
		return evaluation{}, err
	}

	calc, err := s.calendarSvc.Calculator(ctx)
	if err != nil {
		return evaluation{}, err
	}

	balance, err := s.repo.GetBalance(ctx, req.UserID, PeriodOf(start))
	if err != nil {
		return evaluation{}, err
	}

	overlapping, err := s.repo.FindApprovedOverlapping(
		ctx, membership.TeamID, req.StartDate, req.EndDate, nil,
	)
	if err != nil {
		return evaluation{}, err
	}

	result := Validate(ValidationInput{
		LeaveType:           LeaveType(req.LeaveType),
		StartDate:           start,
		EndDate:             end,
		Balance:             balance,
		ApprovedOverlapping: overlapping,
		TeamSize:            membership.TeamSize,
		Calc:                calc,
		Policy:              s.policy,
	})

	return evaluation{membership: membership, start: start, end: end, result: result}, nil
}

func (s *service) Validate(ctx context.Context, req ValidateLeaveRequest) (ValidationResponse, error) {
	ev, err := s.evaluate(ctx, req)
	if err != nil {
		return ValidationResponse{}, err
	}
	return mapValidation(ev.result), nil
}

// Submit runs the full validation and persists a PENDING request only when
// every rule passes. Balances are not touched here; they commit on approval.
func (s *service) Submit(ctx context.Context, req SubmitLeaveRequest) (SubmitLeaveResponse, error) {
	ev, err := s.evaluate(ctx, req)
	if err != nil {
		return SubmitLeaveResponse{}, err
	}

	if !ev.result.Admissible {
		s.logger.Info("leave request rejected at submission",
			zap.String("user_id", req.UserID),
			zap.Int("violations", len(ev.result.Violations)),
		)
		return SubmitLeaveResponse{Admissible: false, Violations: ev.result.Violations}, nil
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return SubmitLeaveResponse{}, leaveerrors.ErrInvalidUserID
	}
	teamID, err := uuid.Parse(ev.membership.TeamID)
	if err != nil {
		return SubmitLeaveResponse{}, leaveerrors.ErrInvalidUserID
	}

	record := &LeaveRequest{
		ID:           uuid.New(),
		UserID:       userID,
		TeamID:       teamID,
		LeaveType:    req.LeaveType,
		StartDate:    ev.start,
		EndDate:      ev.end,
		BusinessDays: ev.result.BusinessDays,
		Reason:       req.Reason,

		Category:                   string(ev.result.Decision.Category),
		SemiAnnualPeriod:           ev.result.Period.String(),
		IsWeekendLeave:             ev.result.IsWeekendLeave,
		RequiresManagementApproval: ev.result.Decision.Tier == TierManagement,

		Status:    StatusPending,
		CreatedBy: userID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("persist leave request failed", zap.Error(err))
		return SubmitLeaveResponse{}, err
	}

	s.logger.Info("leave request submitted",
		zap.String("request_id", record.ID.String()),
		zap.String("category", record.Category),
		zap.String("period", record.SemiAnnualPeriod),
		zap.Bool("management_approval", record.RequiresManagementApproval),
	)

	resp := mapRequestToResponse(*record)
	return SubmitLeaveResponse{Admissible: true, Request: &resp}, nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveRequestResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrRequestNotFound
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaveerrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}
	return mapRequestToResponse(*record), nil
}

func (s *service) GetAllByTeam(ctx context.Context, teamID, status string) ([]LeaveRequestResponse, error) {
	records, err := s.repo.FindAllByTeam(ctx, teamID, status)
	if err != nil {
		return nil, err
	}
	return mapRequests(records), nil
}

func (s *service) GetAllByUser(ctx context.Context, userID string) ([]LeaveRequestResponse, error) {
	records, err := s.repo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapRequests(records), nil
}

// Approve moves a PENDING request to APPROVED inside a serializable
// transaction. Under the team and balance advisory locks it rechecks team
// capacity against the current approved set, commits balance counters with
// cap/underflow post-checks, flips the status and stages the decision event
// in the outbox. Any post-check failure rolls the whole decision back.
func (s *service) Approve(ctx context.Context, id, actorID string, req DecideLeaveRequest) (LeaveRequestResponse, error) {
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	txRepo := s.repo.WithTx(tx)

	record, err := txRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaveerrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}

	if !isAllowedStatusTransition(record.Status, StatusApproved) {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidTransition
	}

	if err := s.authorizeDecision(ctx, actorID, record); err != nil {
		return LeaveRequestResponse{}, err
	}

	period, err := ParsePeriod(record.SemiAnnualPeriod)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if err := txRepo.AcquireTeamLock(ctx, record.TeamID.String()); err != nil {
		return LeaveRequestResponse{}, err
	}
	if err := txRepo.AcquireBalanceLock(ctx, record.UserID.String(), period); err != nil {
		return LeaveRequestResponse{}, err
	}

	// Capacity recheck under the team lock: approvals that landed since
	// submission may have consumed the remaining slack.
	excludeID := record.ID.String()
	approved, err := txRepo.FindApprovedOverlapping(
		ctx, record.TeamID.String(),
		record.StartDate.Format("2006-01-02"), record.EndDate.Format("2006-01-02"),
		&excludeID,
	)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	membership, err := s.directory.MembershipOf(ctx, record.UserID.String())
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if capacity := CheckCapacity(approved, membership.TeamSize, record.StartDate, record.EndDate, s.policy); !capacity.OK {
		return LeaveRequestResponse{}, leaveerrors.ErrConcurrencyConflict.
			WithDetails(map[string]any{"conflict_dates": capacity.ConflictDates})
	}

	if err := s.commitApprovalBalances(ctx, txRepo, record, period, 1); err != nil {
		return LeaveRequestResponse{}, err
	}

	now := time.Now()
	record.Status = StatusApproved
	record.DecidedBy = &actor
	record.DecidedAt = &now
	if req.Notes != "" {
		record.AdminNotes = &req.Notes
	}
	if err := txRepo.UpdateStatus(ctx, record); err != nil {
		return LeaveRequestResponse{}, err
	}

	if err := s.stageDecisionEvent(ctx, tx, record, events.LeaveEventApproved); err != nil {
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return LeaveRequestResponse{}, leaveerrors.ErrConcurrencyConflict
		}
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("leave request approved",
		zap.String("request_id", record.ID.String()),
		zap.String("actor_id", actorID),
		zap.String("period", record.SemiAnnualPeriod),
	)
	return mapRequestToResponse(*record), nil
}

// Reject moves a PENDING request to REJECTED. Notes are mandatory so the
// requester always learns why. No balance movement.
func (s *service) Reject(ctx context.Context, id, actorID string, req DecideLeaveRequest) (LeaveRequestResponse, error) {
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidActorID
	}
	if req.Notes == "" {
		return LeaveRequestResponse{}, leaveerrors.ErrNotesRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	txRepo := s.repo.WithTx(tx)

	record, err := txRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaveerrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}
	if !isAllowedStatusTransition(record.Status, StatusRejected) {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidTransition
	}
	if err := s.authorizeDecision(ctx, actorID, record); err != nil {
		return LeaveRequestResponse{}, err
	}

	now := time.Now()
	record.Status = StatusRejected
	record.DecidedBy = &actor
	record.DecidedAt = &now
	record.AdminNotes = &req.Notes
	if err := txRepo.UpdateStatus(ctx, record); err != nil {
		return LeaveRequestResponse{}, err
	}

	if err := s.stageDecisionEvent(ctx, tx, record, events.LeaveEventRejected); err != nil {
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("leave request rejected",
		zap.String("request_id", record.ID.String()),
		zap.String("actor_id", actorID),
	)
	return mapRequestToResponse(*record), nil
}

// Cancel is available to the requester; other actors need the
// leave:cancel_any grant. Cancelling a PENDING request is a plain status
// flip; cancelling an APPROVED request also reverses the balance commit with
// negative deltas, under the same locks as approval.
func (s *service) Cancel(ctx context.Context, id, actorID string) (LeaveRequestResponse, error) {
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	txRepo := s.repo.WithTx(tx)

	record, err := txRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaveerrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}
	if !isAllowedStatusTransition(record.Status, StatusCancelled) {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidTransition
	}

	if actor != record.UserID {
		allowed, err := s.authorizer.Enforce(ctx, domain.EnforceRequest{
			EmployeeID: actorID,
			Resource:   "leave",
			Action:     "cancel_any",
		})
		if err != nil {
			return LeaveRequestResponse{}, err
		}
		if !allowed {
			return LeaveRequestResponse{}, leaveerrors.ErrNotRequestOwner
		}
	}

	wasApproved := record.Status == StatusApproved
	if wasApproved {
		period, err := ParsePeriod(record.SemiAnnualPeriod)
		if err != nil {
			return LeaveRequestResponse{}, err
		}
		if err := txRepo.AcquireBalanceLock(ctx, record.UserID.String(), period); err != nil {
			return LeaveRequestResponse{}, err
		}
		if err := s.commitApprovalBalances(ctx, txRepo, record, period, -1); err != nil {
			return LeaveRequestResponse{}, err
		}
	}

	now := time.Now()
	record.Status = StatusCancelled
	record.DecidedBy = &actor
	record.DecidedAt = &now
	if err := txRepo.UpdateStatus(ctx, record); err != nil {
		return LeaveRequestResponse{}, err
	}

	if wasApproved {
		if err := s.stageDecisionEvent(ctx, tx, record, events.LeaveEventCancelled); err != nil {
			return LeaveRequestResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return LeaveRequestResponse{}, leaveerrors.ErrConcurrencyConflict
		}
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("leave request cancelled",
		zap.String("request_id", record.ID.String()),
		zap.Bool("was_approved", wasApproved),
	)
	return mapRequestToResponse(*record), nil
}

func (s *service) GetBalance(ctx context.Context, userID, period string) (BalanceResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return BalanceResponse{}, leaveerrors.ErrInvalidUserID
	}

	var p Period
	if period == "" {
		p = PeriodOf(time.Now())
	} else {
		var err error
		p, err = ParsePeriod(period)
		if err != nil {
			return BalanceResponse{}, err
		}
	}

	b, err := s.repo.GetBalance(ctx, userID, p)
	if err != nil {
		return BalanceResponse{}, err
	}
	return BalanceResponse{
		UserID:            userID,
		Period:            p.String(),
		VacationDaysUsed:  b.VacationDaysUsed,
		VacationDaysLeft:  s.policy.MaxVacationDaysPerPeriod - b.VacationDaysUsed,
		WeekendLeavesUsed: b.WeekendLeavesUsed,
		WeekendLeavesLeft: s.policy.MaxWeekendLeavesPerPeriod - b.WeekendLeavesUsed,
	}, nil
}

func (s *service) ResetBalance(ctx context.Context, userID, period string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return leaveerrors.ErrInvalidUserID
	}
	p, err := ParsePeriod(period)
	if err != nil {
		return err
	}
	if err := s.repo.ResetBalance(ctx, userID, p); err != nil {
		return err
	}
	s.logger.Warn("balance reset",
		zap.String("user_id", userID),
		zap.String("period", p.String()),
	)
	return nil
}

// OnApprovedLeave lets the attendance module refuse clock-ins during an
// approved leave.
func (s *service) OnApprovedLeave(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return false, leaveerrors.ErrInvalidUserID
	}
	return s.repo.HasApprovedOnDate(ctx, employeeID, date.Format("2006-01-02"))
}

// authorizeDecision enforces the approval tier: every decision needs
// leave:approve; requests flagged for the management tier additionally need
// leave:approve_extended.
func (s *service) authorizeDecision(ctx context.Context, actorID string, record *LeaveRequest) error {
	allowed, err := s.authorizer.Enforce(ctx, domain.EnforceRequest{
		EmployeeID: actorID,
		Resource:   "leave",
		Action:     "approve",
	})
	if err != nil {
		return err
	}
	if !allowed {
		return leaveerrors.ErrManagementApprovalRequired
	}

	if record.RequiresManagementApproval {
		allowed, err := s.authorizer.Enforce(ctx, domain.EnforceRequest{
			EmployeeID: actorID,
			Resource:   "leave",
			Action:     "approve_extended",
		})
		if err != nil {
			return err
		}
		if !allowed {
			return leaveerrors.ErrManagementApprovalRequired
		}
	}
	return nil
}

// commitApprovalBalances applies (sign=1) or reverses (sign=-1) the counter
// movement an approval implies. Maternity and other non-vacation types do
// not touch the semi-annual counters.
func (s *service) commitApprovalBalances(ctx context.Context, txRepo Repository, record *LeaveRequest, period Period, sign int) error {
	if LeaveType(record.LeaveType) != LeaveTypeVacation {
		return nil
	}

	vacationDelta := sign * record.BusinessDays
	weekendDelta := 0
	if record.IsWeekendLeave {
		weekendDelta = sign
	}

	b, err := txRepo.CommitBalance(ctx, record.UserID.String(), period, vacationDelta, weekendDelta)
	if err != nil {
		return err
	}

	if b.VacationDaysUsed < 0 || b.WeekendLeavesUsed < 0 {
		return leaveerrors.ErrBalanceUnderflow
	}
	if b.VacationDaysUsed > s.policy.MaxVacationDaysPerPeriod ||
		b.WeekendLeavesUsed > s.policy.MaxWeekendLeavesPerPeriod {
		return leaveerrors.ErrConcurrencyConflict
	}
	return nil
}

// stageDecisionEvent writes the decision to the transactional outbox so the
// kafka publish shares the decision's commit/rollback fate.
func (s *service) stageDecisionEvent(ctx context.Context, tx *sql.Tx, record *LeaveRequest, eventType string) error {
	if s.outboxRepo == nil {
		return nil
	}

	payload, err := json.Marshal(events.LeaveDecisionEvent{
		EventType:        eventType,
		RequestID:        record.ID.String(),
		UserID:           record.UserID.String(),
		TeamID:           record.TeamID.String(),
		LeaveType:        record.LeaveType,
		Status:           record.Status,
		SemiAnnualPeriod: record.SemiAnnualPeriod,
		OccurredAt:       time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	// carry the HTTP correlation id so the published event can be traced
	// back to the decision call; background callers fall back to the row id
	correlationID := contextutil.GetRequestID(ctx)
	if correlationID == "" {
		correlationID = record.ID.String()
	}

	return s.outboxRepo.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     correlationID,
		AggregateType: "leave_request",
		AggregateID:   record.ID.String(),
		EventType:     eventType,
		Topic:         events.LeaveDecisionTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// isSerializationFailure matches postgres SQLSTATE 40001, raised when a
// serializable transaction loses to a concurrent one.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapRequests(records []LeaveRequest) []LeaveRequestResponse {
	resp := make([]LeaveRequestResponse, len(records))
	for i, r := range records {
		resp[i] = mapRequestToResponse(r)
	}
	return resp
}

func mapValidation(res ValidationResult) ValidationResponse {
	period := ""
	if res.Period != (Period{}) {
		period = res.Period.String()
	}
	return ValidationResponse{
		Admissible:     res.Admissible,
		Violations:     res.Violations,
		BusinessDays:   res.BusinessDays,
		Period:         period,
		Category:       string(res.Decision.Category),
		ApprovalTier:   string(res.Decision.Tier),
		IsWeekendLeave: res.IsWeekendLeave,
	}
}
