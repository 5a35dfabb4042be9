package leave

import (
	"attendance-dashboard/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
) {
	requests := r.Group("/leave-requests")
	requests.Use(middleware.AuthMiddleware(), middleware.ExtractUserID())
	{
		requests.POST("/validate", middleware.RBACAuthorize(rbacService, "leave", "create"), handler.Validate)
		requests.POST("", middleware.RBACAuthorize(rbacService, "leave", "create"), middleware.Idempotency(rdb), handler.Submit)
		requests.GET("", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetAll)
		requests.GET("/:id", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetByID)

		// tier enforcement beyond leave:approve happens in the service,
		// which knows whether the request needs the management tier
		requests.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "leave", "approve"), middleware.Idempotency(rdb), handler.Approve)
		requests.POST("/:id/reject", middleware.RBACAuthorize(rbacService, "leave", "approve"), middleware.Idempotency(rdb), handler.Reject)
		requests.POST("/:id/cancel", handler.Cancel)
	}

	balances := r.Group("/leave-balances")
	balances.Use(middleware.AuthMiddleware(), middleware.ExtractUserID())
	{
		balances.GET("/:user_id", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetBalance)
		balances.POST("/:user_id/reset", middleware.RBACAuthorize(rbacService, "balance", "manage"), handler.ResetBalance)
	}
}
