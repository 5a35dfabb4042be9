package leave_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"attendance-dashboard/internal/leave"
	leaveerrors "attendance-dashboard/internal/leave/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeService struct {
	validateFn     func(ctx context.Context, req leave.ValidateLeaveRequest) (leave.ValidationResponse, error)
	submitFn       func(ctx context.Context, req leave.SubmitLeaveRequest) (leave.SubmitLeaveResponse, error)
	getByIDFn      func(ctx context.Context, id string) (leave.LeaveRequestResponse, error)
	getAllByTeamFn func(ctx context.Context, teamID, status string) ([]leave.LeaveRequestResponse, error)
	getAllByUserFn func(ctx context.Context, userID string) ([]leave.LeaveRequestResponse, error)
	approveFn      func(ctx context.Context, id, actorID string, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error)
	rejectFn       func(ctx context.Context, id, actorID string, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error)
	cancelFn       func(ctx context.Context, id, actorID string) (leave.LeaveRequestResponse, error)
	getBalanceFn   func(ctx context.Context, userID, period string) (leave.BalanceResponse, error)
	resetBalanceFn func(ctx context.Context, userID, period string) error
}

func (f *fakeService) Validate(ctx context.Context, req leave.ValidateLeaveRequest) (leave.ValidationResponse, error) {
	return f.validateFn(ctx, req)
}
func (f *fakeService) Submit(ctx context.Context, req leave.SubmitLeaveRequest) (leave.SubmitLeaveResponse, error) {
	return f.submitFn(ctx, req)
}
func (f *fakeService) GetByID(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeService) GetAllByTeam(ctx context.Context, teamID, status string) ([]leave.LeaveRequestResponse, error) {
	return f.getAllByTeamFn(ctx, teamID, status)
}
func (f *fakeService) GetAllByUser(ctx context.Context, userID string) ([]leave.LeaveRequestResponse, error) {
	return f.getAllByUserFn(ctx, userID)
}
func (f *fakeService) Approve(ctx context.Context, id, actorID string, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
	return f.approveFn(ctx, id, actorID, req)
}
func (f *fakeService) Reject(ctx context.Context, id, actorID string, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
	return f.rejectFn(ctx, id, actorID, req)
}
func (f *fakeService) Cancel(ctx context.Context, id, actorID string) (leave.LeaveRequestResponse, error) {
	return f.cancelFn(ctx, id, actorID)
}
func (f *fakeService) GetBalance(ctx context.Context, userID, period string) (leave.BalanceResponse, error) {
	return f.getBalanceFn(ctx, userID, period)
}
func (f *fakeService) ResetBalance(ctx context.Context, userID, period string) error {
	return f.resetBalanceFn(ctx, userID, period)
}
func (f *fakeService) OnApprovedLeave(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	return false, nil
}

func TestLeaveHandler_Validate(t *testing.T) {
	t.Run("inadmissible is still a 200", func(t *testing.T) {
		userID := uuid.New().String()
		svc := &fakeService{
			validateFn: func(ctx context.Context, req leave.ValidateLeaveRequest) (leave.ValidationResponse, error) {
				return leave.ValidationResponse{
					Admissible: false,
					Violations: []leave.Violation{{Code: "INSUFFICIENT_BALANCE", Message: "not enough days"}},
				}, nil
			},
		}
		h := leave.NewHandler(svc, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"user_id":"` + userID + `","leave_type":"VACATION","start_date":"2025-03-03","end_date":"2025-03-05"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/validate", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("employee_id", userID)

		h.Validate(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leave.ValidationResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.False(t, got.Admissible)
		assert.Len(t, got.Violations, 1)
	})

	t.Run("negative validation error", func(t *testing.T) {
		h := leave.NewHandler(&fakeService{}, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/validate", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Validate(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})
}

func TestLeaveHandler_Submit(t *testing.T) {
	t.Run("admissible request is created", func(t *testing.T) {
		userID := uuid.New().String()
		svc := &fakeService{
			submitFn: func(ctx context.Context, req leave.SubmitLeaveRequest) (leave.SubmitLeaveResponse, error) {
				assert.Equal(t, userID, req.UserID)
				return leave.SubmitLeaveResponse{
					Admissible: true,
					Request: &leave.LeaveRequestResponse{
						ID:     uuid.New().String(),
						UserID: req.UserID,
						Status: leave.StatusPending,
					},
				}, nil
			},
		}
		h := leave.NewHandler(svc, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"user_id":"` + userID + `","leave_type":"VACATION","start_date":"2025-03-03","end_date":"2025-03-05"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("employee_id", userID)

		h.Submit(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leave.SubmitLeaveResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.True(t, got.Admissible)
		assert.Equal(t, leave.StatusPending, got.Request.Status)
	})

	t.Run("inadmissible request is unprocessable", func(t *testing.T) {
		userID := uuid.New().String()
		svc := &fakeService{
			submitFn: func(ctx context.Context, req leave.SubmitLeaveRequest) (leave.SubmitLeaveResponse, error) {
				return leave.SubmitLeaveResponse{
					Admissible: false,
					Violations: []leave.Violation{
						{Code: "MAX_DURATION_EXCEEDED", Message: "too long"},
						{Code: "TEAM_CAPACITY_EXCEEDED", Message: "team saturated", ConflictDates: []string{"2025-03-03"}},
					},
				}, nil
			},
		}
		h := leave.NewHandler(svc, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"user_id":"` + userID + `","leave_type":"VACATION","start_date":"2025-03-02","end_date":"2025-03-09"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("employee_id", userID)

		h.Submit(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "NOT_ADMISSIBLE", env.Error.Code)
		var violations []leave.Violation
		assert.NoError(t, json.Unmarshal(env.Error.Details, &violations))
		assert.Len(t, violations, 2)
	})

	t.Run("user_id defaults to the authenticated employee", func(t *testing.T) {
		actorID := uuid.New().String()
		svc := &fakeService{
			submitFn: func(ctx context.Context, req leave.SubmitLeaveRequest) (leave.SubmitLeaveResponse, error) {
				assert.Equal(t, actorID, req.UserID)
				return leave.SubmitLeaveResponse{
					Admissible: true,
					Request:    &leave.LeaveRequestResponse{ID: uuid.New().String(), UserID: req.UserID, Status: leave.StatusPending},
				}, nil
			},
		}
		h := leave.NewHandler(svc, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"leave_type":"VACATION","start_date":"2025-03-03","end_date":"2025-03-05"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("employee_id", actorID)

		h.Submit(c)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("filing for a colleague without an HR role is forbidden", func(t *testing.T) {
		svc := &fakeService{
			submitFn: func(ctx context.Context, req leave.SubmitLeaveRequest) (leave.SubmitLeaveResponse, error) {
				t.Fatal("the service must not see a mismatched subject")
				return leave.SubmitLeaveResponse{}, nil
			},
		}
		h := leave.NewHandler(svc, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"user_id":"` + uuid.New().String() + `","leave_type":"VACATION","start_date":"2025-03-03","end_date":"2025-03-05"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("employee_id", uuid.New().String())
		c.Set("role", "EMPLOYEE")

		h.Submit(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
	})

	t.Run("an HR role can file on behalf", func(t *testing.T) {
		subjectID := uuid.New().String()
		svc := &fakeService{
			submitFn: func(ctx context.Context, req leave.SubmitLeaveRequest) (leave.SubmitLeaveResponse, error) {
				assert.Equal(t, subjectID, req.UserID)
				return leave.SubmitLeaveResponse{
					Admissible: true,
					Request:    &leave.LeaveRequestResponse{ID: uuid.New().String(), UserID: req.UserID, Status: leave.StatusPending},
				}, nil
			},
		}
		h := leave.NewHandler(svc, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"user_id":"` + subjectID + `","leave_type":"VACATION","start_date":"2025-03-03","end_date":"2025-03-05"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("employee_id", uuid.New().String())
		c.Set("role", "HR")

		h.Submit(c)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("unknown leave type fails binding", func(t *testing.T) {
		h := leave.NewHandler(&fakeService{}, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"user_id":"` + uuid.New().String() + `","leave_type":"SABBATICAL","start_date":"2025-03-03","end_date":"2025-03-05"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Submit(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})
}

func TestLeaveHandler_Approve(t *testing.T) {
	t.Run("empty body approves with the employee id", func(t *testing.T) {
		requestID := uuid.New().String()
		actorID := uuid.New().String()
		svc := &fakeService{
			approveFn: func(ctx context.Context, id, aid string, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
				assert.Equal(t, requestID, id)
				assert.Equal(t, actorID, aid)
				return leave.LeaveRequestResponse{ID: id, Status: leave.StatusApproved}, nil
			},
		}
		h := leave.NewHandler(svc, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/"+requestID+"/approve", nil)
		c.Params = []gin.Param{{Key: "id", Value: requestID}}
		c.Set("employee_id", actorID)

		h.Approve(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leave.LeaveRequestResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, leave.StatusApproved, got.Status)
	})

	t.Run("concurrency conflict is retried once", func(t *testing.T) {
		requestID := uuid.New().String()
		calls := 0
		svc := &fakeService{
			approveFn: func(ctx context.Context, id, aid string, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
				calls++
				if calls == 1 {
					return leave.LeaveRequestResponse{}, leaveerrors.ErrConcurrencyConflict
				}
				return leave.LeaveRequestResponse{ID: id, Status: leave.StatusApproved}, nil
			},
		}
		h := leave.NewHandler(svc, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/"+requestID+"/approve", nil)
		c.Params = []gin.Param{{Key: "id", Value: requestID}}
		c.Set("user_id_validated", uuid.New().String())

		h.Approve(c)

		assert.Equal(t, 2, calls)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("persistent conflict surfaces after the retry", func(t *testing.T) {
		calls := 0
		svc := &fakeService{
			approveFn: func(ctx context.Context, id, aid string, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
				calls++
				return leave.LeaveRequestResponse{}, leaveerrors.ErrConcurrencyConflict
			},
		}
		h := leave.NewHandler(svc, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/x/approve", nil)
		c.Params = []gin.Param{{Key: "id", Value: "x"}}
		c.Set("employee_id", uuid.New().String())

		h.Approve(c)

		assert.Equal(t, 2, calls)
		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "CONCURRENCY_CONFLICT", env.Error.Code)
	})

	t.Run("management tier denial is forbidden", func(t *testing.T) {
		svc := &fakeService{
			approveFn: func(ctx context.Context, id, aid string, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
				return leave.LeaveRequestResponse{}, leaveerrors.ErrManagementApprovalRequired
			},
		}
		h := leave.NewHandler(svc, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/x/approve", nil)
		c.Params = []gin.Param{{Key: "id", Value: "x"}}
		c.Set("employee_id", uuid.New().String())

		h.Approve(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
	})
}

func TestLeaveHandler_Reject(t *testing.T) {
	t.Run("missing notes bubbles up from the service", func(t *testing.T) {
		svc := &fakeService{
			rejectFn: func(ctx context.Context, id, aid string, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
				return leave.LeaveRequestResponse{}, leaveerrors.ErrNotesRequired
			},
		}
		h := leave.NewHandler(svc, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/x/reject", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "id", Value: "x"}}
		c.Set("employee_id", uuid.New().String())

		h.Reject(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("success carries the notes through", func(t *testing.T) {
		requestID := uuid.New().String()
		svc := &fakeService{
			rejectFn: func(ctx context.Context, id, aid string, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
				assert.Equal(t, "coverage gap", req.Notes)
				notes := req.Notes
				return leave.LeaveRequestResponse{ID: id, Status: leave.StatusRejected, AdminNotes: &notes}, nil
			},
		}
		h := leave.NewHandler(svc, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/"+requestID+"/reject", strings.NewReader(`{"notes":"coverage gap"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "id", Value: requestID}}
		c.Set("employee_id", uuid.New().String())

		h.Reject(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		var got leave.LeaveRequestResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, leave.StatusRejected, got.Status)
		assert.Equal(t, "coverage gap", *got.AdminNotes)
	})

	t.Run("success fills the idempotency cache and drops the lock", func(t *testing.T) {
		requestID := uuid.New().String()
		notes := "coverage gap"
		resp := leave.LeaveRequestResponse{ID: requestID, Status: leave.StatusRejected, AdminNotes: &notes}
		svc := &fakeService{
			rejectFn: func(ctx context.Context, id, aid string, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
				return resp, nil
			},
		}

		rdb, redisMock := redismock.NewClientMock()
		h := leave.NewHandler(svc, rdb)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/"+requestID+"/reject", strings.NewReader(`{"notes":"coverage gap"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "id", Value: requestID}}
		c.Set("employee_id", uuid.New().String())

		cacheKey := "idemp:/leave-requests/:id/reject:user:key"
		lockKey := cacheKey + ":lock"
		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", lockKey)

		cached, err := json.Marshal(resp)
		assert.NoError(t, err)
		redisMock.ExpectSet(cacheKey, cached, 24*time.Hour).SetVal("OK")
		redisMock.ExpectDel(lockKey).SetVal(1)

		h.Reject(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}

func TestLeaveHandler_GetAll(t *testing.T) {
	t.Run("user_id query wins", func(t *testing.T) {
		userID := uuid.New().String()
		svc := &fakeService{
			getAllByUserFn: func(ctx context.Context, uid string) ([]leave.LeaveRequestResponse, error) {
				assert.Equal(t, userID, uid)
				return []leave.LeaveRequestResponse{{ID: uuid.New().String(), UserID: uid}}, nil
			},
		}
		h := leave.NewHandler(svc, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-requests?user_id="+userID, nil)

		h.GetAll(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("falls back to the JWT team", func(t *testing.T) {
		teamID := uuid.New().String()
		svc := &fakeService{
			getAllByTeamFn: func(ctx context.Context, tid, status string) ([]leave.LeaveRequestResponse, error) {
				assert.Equal(t, teamID, tid)
				assert.Equal(t, "PENDING", status)
				return nil, nil
			},
		}
		h := leave.NewHandler(svc, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-requests?status=PENDING", nil)
		c.Set("team_id", teamID)

		h.GetAll(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no team anywhere is a validation error", func(t *testing.T) {
		h := leave.NewHandler(&fakeService{}, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-requests", nil)

		h.GetAll(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})
}

func TestLeaveHandler_GetBalance(t *testing.T) {
	userID := uuid.New().String()
	svc := &fakeService{
		getBalanceFn: func(ctx context.Context, uid, period string) (leave.BalanceResponse, error) {
			assert.Equal(t, userID, uid)
			assert.Equal(t, "2025-H1", period)
			return leave.BalanceResponse{UserID: uid, Period: period, VacationDaysUsed: 4, VacationDaysLeft: 8}, nil
		},
	}
	h := leave.NewHandler(svc, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/leave-balances/"+userID+"?period=2025-H1", nil)
	c.Params = []gin.Param{{Key: "user_id", Value: userID}}

	h.GetBalance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w.Body.Bytes())
	var got leave.BalanceResponse
	assert.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 8, got.VacationDaysLeft)
}

func TestLeaveHandler_ResetBalance(t *testing.T) {
	t.Run("period is required", func(t *testing.T) {
		h := leave.NewHandler(&fakeService{}, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-balances/x/reset", nil)
		c.Params = []gin.Param{{Key: "user_id", Value: "x"}}

		h.ResetBalance(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		userID := uuid.New().String()
		var gotPeriod string
		svc := &fakeService{
			resetBalanceFn: func(ctx context.Context, uid, period string) error {
				gotPeriod = period
				return nil
			},
		}
		h := leave.NewHandler(svc, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-balances/"+userID+"/reset?period=2025-H2", nil)
		c.Params = []gin.Param{{Key: "user_id", Value: userID}}

		h.ResetBalance(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2025-H2", gotPeriod)
	})
}
