package leave_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"attendance-dashboard/internal/calendar"
	"attendance-dashboard/internal/domain"
	"attendance-dashboard/internal/leave"
	leaveerrors "attendance-dashboard/internal/leave/errors"
	"attendance-dashboard/internal/messaging/kafka"
	"attendance-dashboard/internal/shared/contextutil"
	"attendance-dashboard/internal/team"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeLeaveRepository struct {
	withTxFn                  func(tx *sql.Tx) leave.Repository
	createFn                  func(ctx context.Context, req *leave.LeaveRequest) error
	findByIDFn                func(ctx context.Context, id string) (*leave.LeaveRequest, error)
	findByIDForUpdateFn       func(ctx context.Context, id string) (*leave.LeaveRequest, error)
	updateStatusFn            func(ctx context.Context, req *leave.LeaveRequest) error
	findAllByTeamFn           func(ctx context.Context, teamID, status string) ([]leave.LeaveRequest, error)
	findAllByUserFn           func(ctx context.Context, userID string) ([]leave.LeaveRequest, error)
	findApprovedOverlappingFn func(ctx context.Context, teamID, start, end string, excludeID *string) ([]leave.LeaveRequest, error)
	hasApprovedOnDateFn       func(ctx context.Context, userID, date string) (bool, error)
	getBalanceFn              func(ctx context.Context, userID string, p leave.Period) (leave.SemiAnnualBalance, error)
	commitBalanceFn           func(ctx context.Context, userID string, p leave.Period, vacationDelta, weekendDelta int) (leave.SemiAnnualBalance, error)
	resetBalanceFn            func(ctx context.Context, userID string, p leave.Period) error
	teamLocks                 []string
	balanceLocks              []string
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeLeaveRepository) Create(ctx context.Context, req *leave.LeaveRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return nil
}

func (f *fakeLeaveRepository) FindByID(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindByIDForUpdate(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	if f.findByIDForUpdateFn != nil {
		return f.findByIDForUpdateFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) UpdateStatus(ctx context.Context, req *leave.LeaveRequest) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, req)
	}
	return nil
}

func (f *fakeLeaveRepository) FindAllByTeam(ctx context.Context, teamID, status string) ([]leave.LeaveRequest, error) {
	if f.findAllByTeamFn != nil {
		return f.findAllByTeamFn(ctx, teamID, status)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindAllByUser(ctx context.Context, userID string) ([]leave.LeaveRequest, error) {
	if f.findAllByUserFn != nil {
		return f.findAllByUserFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindApprovedOverlapping(ctx context.Context, teamID, start, end string, excludeID *string) ([]leave.LeaveRequest, error) {
	if f.findApprovedOverlappingFn != nil {
		return f.findApprovedOverlappingFn(ctx, teamID, start, end, excludeID)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) HasApprovedOnDate(ctx context.Context, userID, date string) (bool, error) {
	if f.hasApprovedOnDateFn != nil {
		return f.hasApprovedOnDateFn(ctx, userID, date)
	}
	return false, nil
}

func (f *fakeLeaveRepository) GetBalance(ctx context.Context, userID string, p leave.Period) (leave.SemiAnnualBalance, error) {
	if f.getBalanceFn != nil {
		return f.getBalanceFn(ctx, userID, p)
	}
	return leave.SemiAnnualBalance{Year: p.Year, Half: p.Half}, nil
}

func (f *fakeLeaveRepository) CommitBalance(ctx context.Context, userID string, p leave.Period, vacationDelta, weekendDelta int) (leave.SemiAnnualBalance, error) {
	if f.commitBalanceFn != nil {
		return f.commitBalanceFn(ctx, userID, p, vacationDelta, weekendDelta)
	}
	return leave.SemiAnnualBalance{
		Year: p.Year, Half: p.Half,
		VacationDaysUsed:  vacationDelta,
		WeekendLeavesUsed: weekendDelta,
	}, nil
}

func (f *fakeLeaveRepository) ResetBalance(ctx context.Context, userID string, p leave.Period) error {
	if f.resetBalanceFn != nil {
		return f.resetBalanceFn(ctx, userID, p)
	}
	return nil
}

func (f *fakeLeaveRepository) AcquireTeamLock(ctx context.Context, teamID string) error {
	f.teamLocks = append(f.teamLocks, teamID)
	return nil
}

func (f *fakeLeaveRepository) AcquireBalanceLock(ctx context.Context, userID string, p leave.Period) error {
	f.balanceLocks = append(f.balanceLocks, userID+":"+p.String())
	return nil
}

type fakeCalendarService struct {
	holidays []calendar.Holiday
}

func (f *fakeCalendarService) Calculator(ctx context.Context) (*calendar.Calculator, error) {
	return calendar.NewCalculator(calendar.DefaultWeekConfig(), f.holidays), nil
}

type fakeDirectory struct {
	membership team.Membership
	err        error
}

func (f *fakeDirectory) MembershipOf(ctx context.Context, employeeID string) (team.Membership, error) {
	if f.err != nil {
		return team.Membership{}, f.err
	}
	m := f.membership
	if m.EmployeeID == "" {
		m.EmployeeID = employeeID
	}
	return m, nil
}

type fakeAuthorizer struct {
	allowed map[string]bool
}

func (f *fakeAuthorizer) Enforce(ctx context.Context, req domain.EnforceRequest) (bool, error) {
	if f.allowed == nil {
		return true, nil
	}
	return f.allowed[req.Resource+":"+req.Action], nil
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}
func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }
func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type leaveServiceDeps struct {
	db         *sql.DB
	sqlMock    sqlmock.Sqlmock
	service    leave.Service
	repo       *fakeLeaveRepository
	directory  *fakeDirectory
	authorizer *fakeAuthorizer
	outbox     *fakeOutboxRepository
}

func setupLeaveServiceTest(t *testing.T, teamSize int) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeLeaveRepository{}
	directory := &fakeDirectory{
		membership: team.Membership{TeamID: uuid.New().String(), TeamSize: teamSize},
	}
	authorizer := &fakeAuthorizer{}
	outbox := &fakeOutboxRepository{}

	svc := leave.NewServiceWithOutbox(
		db, repo, &fakeCalendarService{}, directory, authorizer,
		leave.DefaultPolicy(), outbox,
	)

	return &leaveServiceDeps{
		db:         db,
		sqlMock:    sqlMock,
		service:    svc,
		repo:       repo,
		directory:  directory,
		authorizer: authorizer,
		outbox:     outbox,
	}
}

func TestLeaveService_Submit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()

	t.Run("admissible request persists as pending", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		var created *leave.LeaveRequest
		deps.repo.createFn = func(ctx context.Context, req *leave.LeaveRequest) error {
			created = req
			return nil
		}

		resp, err := deps.service.Submit(ctx, leave.SubmitLeaveRequest{
			UserID:    userID,
			LeaveType: "VACATION",
			StartDate: "2025-03-03",
			EndDate:   "2025-03-05",
			Reason:    "family trip",
		})

		assert.NoError(t, err)
		assert.True(t, resp.Admissible)
		assert.NotNil(t, resp.Request)
		assert.NotNil(t, created)
		assert.Equal(t, leave.StatusPending, created.Status)
		assert.Equal(t, 3, created.BusinessDays)
		assert.Equal(t, "2025-H1", created.SemiAnnualPeriod)
		assert.Equal(t, string(leave.CategoryRegular), created.Category)
		assert.False(t, created.RequiresManagementApproval)
	})

	t.Run("extended request is flagged for management", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		var created *leave.LeaveRequest
		deps.repo.createFn = func(ctx context.Context, req *leave.LeaveRequest) error {
			created = req
			return nil
		}

		resp, err := deps.service.Submit(ctx, leave.SubmitLeaveRequest{
			UserID:    userID,
			LeaveType: "VACATION",
			StartDate: "2025-03-02",
			EndDate:   "2025-03-06",
		})

		assert.NoError(t, err)
		assert.True(t, resp.Admissible)
		assert.Equal(t, 5, created.BusinessDays)
		assert.Equal(t, string(leave.CategoryExtended), created.Category)
		assert.True(t, created.RequiresManagementApproval)
	})

	t.Run("inadmissible request is not persisted", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		deps.repo.getBalanceFn = func(ctx context.Context, uid string, p leave.Period) (leave.SemiAnnualBalance, error) {
			return leave.SemiAnnualBalance{Year: p.Year, Half: p.Half, VacationDaysUsed: 11}, nil
		}
		deps.repo.createFn = func(ctx context.Context, req *leave.LeaveRequest) error {
			t.Fatal("create must not be called for an inadmissible request")
			return nil
		}

		resp, err := deps.service.Submit(ctx, leave.SubmitLeaveRequest{
			UserID:    userID,
			LeaveType: "VACATION",
			StartDate: "2025-03-03",
			EndDate:   "2025-03-05",
		})

		assert.NoError(t, err)
		assert.False(t, resp.Admissible)
		assert.Nil(t, resp.Request)
		assert.Len(t, resp.Violations, 1)
		assert.Equal(t, "INSUFFICIENT_BALANCE", resp.Violations[0].Code)
	})

	t.Run("unknown leave type fails fast", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		_, err := deps.service.Submit(ctx, leave.SubmitLeaveRequest{
			UserID:    userID,
			LeaveType: "SABBATICAL",
			StartDate: "2025-03-03",
			EndDate:   "2025-03-05",
		})
		assert.True(t, errors.Is(err, leaveerrors.ErrInvalidLeaveType))
	})
}

func pendingVacation(userID, teamID uuid.UUID) *leave.LeaveRequest {
	return &leave.LeaveRequest{
		ID:               uuid.New(),
		UserID:           userID,
		TeamID:           teamID,
		LeaveType:        "VACATION",
		StartDate:        time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		BusinessDays:     3,
		Category:         string(leave.CategoryRegular),
		SemiAnnualPeriod: "2025-H1",
		Status:           leave.StatusPending,
		CreatedBy:        userID,
	}
}

func TestLeaveService_Approve(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	teamID := uuid.New()
	actorID := uuid.New().String()

	t.Run("success commits balances and stages the event", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		record := pendingVacation(userID, teamID)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return record, nil
		}

		var committedVacation, committedWeekend int
		deps.repo.commitBalanceFn = func(ctx context.Context, uid string, p leave.Period, vac, wk int) (leave.SemiAnnualBalance, error) {
			committedVacation, committedWeekend = vac, wk
			return leave.SemiAnnualBalance{Year: p.Year, Half: p.Half, VacationDaysUsed: vac, WeekendLeavesUsed: wk}, nil
		}

		var updated *leave.LeaveRequest
		deps.repo.updateStatusFn = func(ctx context.Context, req *leave.LeaveRequest) error {
			updated = req
			return nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Approve(ctx, record.ID.String(), actorID, leave.DecideLeaveRequest{})

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		assert.Equal(t, 3, committedVacation)
		assert.Equal(t, 0, committedWeekend)
		assert.NotNil(t, updated)
		assert.Equal(t, actorID, updated.DecidedBy.String())
		assert.Contains(t, deps.repo.teamLocks, teamID.String())
		assert.Contains(t, deps.repo.balanceLocks, userID.String()+":2025-H1")

		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "leave.approved", deps.outbox.created[0].EventType)
		assert.Equal(t, "hr.leave.decision.v1", deps.outbox.created[0].Topic)
	})

	t.Run("staged event carries the request correlation id", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		record := pendingVacation(userID, teamID)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return record, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		tracedCtx := contextutil.WithRequestID(context.Background(), "req-trace-42")
		_, err := deps.service.Approve(tracedCtx, record.ID.String(), actorID, leave.DecideLeaveRequest{})

		assert.NoError(t, err)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "req-trace-42", deps.outbox.created[0].RequestID)
	})

	t.Run("weekend leave consumes a weekend slot", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		record := pendingVacation(userID, teamID)
		record.IsWeekendLeave = true
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return record, nil
		}

		var committedWeekend int
		deps.repo.commitBalanceFn = func(ctx context.Context, uid string, p leave.Period, vac, wk int) (leave.SemiAnnualBalance, error) {
			committedWeekend = wk
			return leave.SemiAnnualBalance{VacationDaysUsed: vac, WeekendLeavesUsed: wk}, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		_, err := deps.service.Approve(ctx, record.ID.String(), actorID, leave.DecideLeaveRequest{})
		assert.NoError(t, err)
		assert.Equal(t, 1, committedWeekend)
	})

	t.Run("capacity recheck failure rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 2)
		defer deps.db.Close()

		record := pendingVacation(userID, teamID)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return record, nil
		}
		deps.repo.findApprovedOverlappingFn = func(ctx context.Context, tid, start, end string, excludeID *string) ([]leave.LeaveRequest, error) {
			assert.NotNil(t, excludeID)
			return []leave.LeaveRequest{*pendingVacation(uuid.New(), teamID)}, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Approve(ctx, record.ID.String(), actorID, leave.DecideLeaveRequest{})
		assert.True(t, errors.Is(err, leaveerrors.ErrConcurrencyConflict))
		assert.Empty(t, deps.outbox.created)
	})

	t.Run("counter over the cap after commit conflicts", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		record := pendingVacation(userID, teamID)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return record, nil
		}
		deps.repo.commitBalanceFn = func(ctx context.Context, uid string, p leave.Period, vac, wk int) (leave.SemiAnnualBalance, error) {
			return leave.SemiAnnualBalance{VacationDaysUsed: 13}, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Approve(ctx, record.ID.String(), actorID, leave.DecideLeaveRequest{})
		assert.True(t, errors.Is(err, leaveerrors.ErrConcurrencyConflict))
	})

	t.Run("management tier is required for extended requests", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		record := pendingVacation(userID, teamID)
		record.RequiresManagementApproval = true
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return record, nil
		}
		deps.authorizer.allowed = map[string]bool{"leave:approve": true} // approve_extended missing

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Approve(ctx, record.ID.String(), actorID, leave.DecideLeaveRequest{})
		assert.True(t, errors.Is(err, leaveerrors.ErrManagementApprovalRequired))
	})

	t.Run("approving a non-pending request is an invalid transition", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		record := pendingVacation(userID, teamID)
		record.Status = leave.StatusRejected
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return record, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Approve(ctx, record.ID.String(), actorID, leave.DecideLeaveRequest{})
		assert.True(t, errors.Is(err, leaveerrors.ErrInvalidTransition))
	})
}

func TestLeaveService_Reject(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("notes are mandatory", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		_, err := deps.service.Reject(ctx, uuid.New().String(), actorID, leave.DecideLeaveRequest{})
		assert.True(t, errors.Is(err, leaveerrors.ErrNotesRequired))
	})

	t.Run("success stores notes and stages the event", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		record := pendingVacation(uuid.New(), uuid.New())
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return record, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Reject(ctx, record.ID.String(), actorID, leave.DecideLeaveRequest{Notes: "coverage gap"})
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
		assert.Equal(t, "coverage gap", *resp.AdminNotes)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "leave.rejected", deps.outbox.created[0].EventType)
	})
}

func TestLeaveService_Cancel(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	teamID := uuid.New()
	actorID := userID.String()

	t.Run("cancelling a pending request skips balances", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		record := pendingVacation(userID, teamID)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return record, nil
		}
		deps.repo.commitBalanceFn = func(ctx context.Context, uid string, p leave.Period, vac, wk int) (leave.SemiAnnualBalance, error) {
			t.Fatal("balances must not move when cancelling a pending request")
			return leave.SemiAnnualBalance{}, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Cancel(ctx, record.ID.String(), actorID)
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusCancelled, resp.Status)
		assert.Empty(t, deps.outbox.created)
	})

	t.Run("cancelling an approved request reverses the commit", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		record := pendingVacation(userID, teamID)
		record.Status = leave.StatusApproved
		record.IsWeekendLeave = true
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return record, nil
		}

		var vacDelta, weekendDelta int
		deps.repo.commitBalanceFn = func(ctx context.Context, uid string, p leave.Period, vac, wk int) (leave.SemiAnnualBalance, error) {
			vacDelta, weekendDelta = vac, wk
			return leave.SemiAnnualBalance{VacationDaysUsed: 0, WeekendLeavesUsed: 0}, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Cancel(ctx, record.ID.String(), actorID)
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusCancelled, resp.Status)
		assert.Equal(t, -3, vacDelta)
		assert.Equal(t, -1, weekendDelta)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "leave.cancelled", deps.outbox.created[0].EventType)
	})

	t.Run("a colleague cannot cancel someone else's request", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		record := pendingVacation(userID, teamID)
		record.Status = leave.StatusApproved
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return record, nil
		}
		deps.repo.commitBalanceFn = func(ctx context.Context, uid string, p leave.Period, vac, wk int) (leave.SemiAnnualBalance, error) {
			t.Fatal("balances must not move for an unauthorized cancel")
			return leave.SemiAnnualBalance{}, nil
		}
		deps.authorizer.allowed = map[string]bool{"leave:approve": true} // cancel_any missing

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Cancel(ctx, record.ID.String(), uuid.New().String())
		assert.True(t, errors.Is(err, leaveerrors.ErrNotRequestOwner))
		assert.Empty(t, deps.outbox.created)
	})

	t.Run("the cancel_any grant cancels on behalf", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		record := pendingVacation(userID, teamID)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return record, nil
		}
		deps.authorizer.allowed = map[string]bool{"leave:cancel_any": true}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Cancel(ctx, record.ID.String(), uuid.New().String())
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusCancelled, resp.Status)
	})

	t.Run("reversal below zero is an underflow", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, 10)
		defer deps.db.Close()

		record := pendingVacation(userID, teamID)
		record.Status = leave.StatusApproved
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.LeaveRequest, error) {
			return record, nil
		}
		deps.repo.commitBalanceFn = func(ctx context.Context, uid string, p leave.Period, vac, wk int) (leave.SemiAnnualBalance, error) {
			return leave.SemiAnnualBalance{VacationDaysUsed: -1}, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Cancel(ctx, record.ID.String(), actorID)
		assert.True(t, errors.Is(err, leaveerrors.ErrBalanceUnderflow))
	})
}

func TestLeaveService_GetBalance(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()

	deps := setupLeaveServiceTest(t, 10)
	defer deps.db.Close()

	deps.repo.getBalanceFn = func(ctx context.Context, uid string, p leave.Period) (leave.SemiAnnualBalance, error) {
		return leave.SemiAnnualBalance{Year: p.Year, Half: p.Half, VacationDaysUsed: 9, WeekendLeavesUsed: 1}, nil
	}

	resp, err := deps.service.GetBalance(ctx, userID, "2025-H1")
	assert.NoError(t, err)
	assert.Equal(t, "2025-H1", resp.Period)
	assert.Equal(t, 9, resp.VacationDaysUsed)
	assert.Equal(t, 3, resp.VacationDaysLeft)
	assert.Equal(t, 1, resp.WeekendLeavesUsed)
	assert.Equal(t, 1, resp.WeekendLeavesLeft)
}

func TestLeaveService_OnApprovedLeave(t *testing.T) {
	ctx := context.Background()
	deps := setupLeaveServiceTest(t, 10)
	defer deps.db.Close()

	deps.repo.hasApprovedOnDateFn = func(ctx context.Context, uid, date string) (bool, error) {
		return date == "2025-03-03", nil
	}

	onLeave, err := deps.service.OnApprovedLeave(ctx, uuid.New().String(), time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.True(t, onLeave)

	onLeave, err = deps.service.OnApprovedLeave(ctx, uuid.New().String(), time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.False(t, onLeave)
}
