package calendar

import (
	"attendance-dashboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	cal := r.Group("/calendar")
	cal.Use(middleware.AuthMiddleware())
	{
		cal.GET("/business-days", handler.GetBusinessDays)
		cal.GET("/holidays", handler.GetHolidays)
		cal.POST("/holidays", middleware.RBACAuthorize(rbacService, "holiday", "manage"), handler.CreateHoliday)
		cal.PUT("/holidays/:id", middleware.RBACAuthorize(rbacService, "holiday", "manage"), handler.UpdateHoliday)
		cal.DELETE("/holidays/:id", middleware.RBACAuthorize(rbacService, "holiday", "manage"), handler.DeleteHoliday)
	}
}
