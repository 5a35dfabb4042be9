package leave

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	leaveerrors "attendance-dashboard/internal/leave/errors"
	"attendance-dashboard/internal/shared/apperror"
	"attendance-dashboard/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const idempotencyCacheTTL = 24 * time.Hour

type Handler struct {
	service Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, rdb: rdb, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	h.releaseIdempotencyLock(c)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// actorID resolves who is acting: the employee id from the JWT claims, with
// the validated user id as fallback for service accounts.
func actorID(c *gin.Context) string {
	if id := c.GetString("employee_id"); id != "" {
		return id
	}
	return c.GetString("user_id_validated")
}

// resolveSubject ties the request subject to the caller: an empty user_id is
// filled from the JWT, and filing for someone else needs an HR-side role.
func resolveSubject(c *gin.Context, req *SubmitLeaveRequest) error {
	actor := actorID(c)
	if req.UserID == "" {
		if actor == "" {
			return leaveerrors.ErrInvalidUserID
		}
		req.UserID = actor
		return nil
	}
	if actor == "" {
		return leaveerrors.ErrInvalidActorID
	}
	if req.UserID == actor {
		return nil
	}
	if isHRRole(c.GetString("role")) {
		return nil
	}
	return leaveerrors.ErrSubjectMismatch
}

func isHRRole(role string) bool {
	switch role {
	case "ADMIN", "HR":
		return true
	default:
		return false
	}
}

func (h *Handler) Validate(c *gin.Context) {
	var req ValidateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}
	if err := resolveSubject(c, &req); err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.Validate(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Submit(c *gin.Context) {
	var req SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}
	if err := resolveSubject(c, &req); err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if !resp.Admissible {
		h.releaseIdempotencyLock(c)
		response.Error(c, http.StatusUnprocessableEntity, "NOT_ADMISSIBLE",
			"leave request violates one or more rules", resp.Violations)
		return
	}

	h.fillIdempotencyCache(c, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	if userID := c.Query("user_id"); userID != "" {
		resp, err := h.service.GetAllByUser(c.Request.Context(), userID)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, resp, nil)
		return
	}

	teamID := c.Query("team_id")
	if teamID == "" {
		teamID = c.GetString("team_id")
	}
	if teamID == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR",
			"team_id or user_id query parameter is required", nil)
		return
	}

	resp, err := h.service.GetAllByTeam(c.Request.Context(), teamID, c.Query("status"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	var req DecideLeaveRequest
	// notes are optional on approval, so an empty body is fine
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	id := c.Param("id")
	actor := actorID(c)

	resp, err := h.service.Approve(c.Request.Context(), id, actor, req)
	if errors.Is(err, leaveerrors.ErrConcurrencyConflict) {
		// One transparent retry: serialization losers usually win the rerun.
		resp, err = h.service.Approve(c.Request.Context(), id, actor, req)
	}
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.fillIdempotencyCache(c, resp)
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	var req DecideLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.fillIdempotencyCache(c, resp)
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	resp, err := h.service.Cancel(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetBalance(c *gin.Context) {
	resp, err := h.service.GetBalance(c.Request.Context(), c.Param("user_id"), c.Query("period"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ResetBalance(c *gin.Context) {
	period := c.Query("period")
	if period == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "period query parameter is required", nil)
		return
	}

	if err := h.service.ResetBalance(c.Request.Context(), c.Param("user_id"), period); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reset": true}, nil)
}

// fillIdempotencyCache stores the successful response under the key the
// idempotency middleware computed, then releases the in-flight lock.
func (h *Handler) fillIdempotencyCache(c *gin.Context, payload any) {
	cacheKey := c.GetString("idempotency_cache_key")
	if h.rdb == nil || cacheKey == "" {
		return
	}
	if body, err := json.Marshal(payload); err == nil {
		if err := h.rdb.Set(c.Request.Context(), cacheKey, body, idempotencyCacheTTL).Err(); err != nil {
			h.logger.Warn("idempotency cache fill failed", zap.Error(err))
		}
	}
	h.releaseIdempotencyLock(c)
}

func (h *Handler) releaseIdempotencyLock(c *gin.Context) {
	lockKey := c.GetString("idempotency_lock_key")
	if h.rdb == nil || lockKey == "" {
		return
	}
	if err := h.rdb.Del(c.Request.Context(), lockKey).Err(); err != nil {
		h.logger.Warn("idempotency lock release failed", zap.Error(err))
	}
}
