package team

import (
	"attendance-dashboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	teams := r.Group("/teams")
	teams.Use(middleware.AuthMiddleware())
	{
		teams.GET("", middleware.RBACAuthorize(rbacService, "team", "read"), handler.GetAll)
		teams.GET("/:id/members", middleware.RBACAuthorize(rbacService, "team", "read"), handler.GetMembers)
		teams.POST("", middleware.RBACAuthorize(rbacService, "team", "manage"), handler.Create)
	}
}
