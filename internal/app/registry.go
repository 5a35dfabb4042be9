package app

import (
	"database/sql"
	"path/filepath"

	"attendance-dashboard/internal/attendance"
	"attendance-dashboard/internal/auth"
	"attendance-dashboard/internal/calendar"
	"attendance-dashboard/internal/leave"
	"attendance-dashboard/internal/messaging/kafka"
	"attendance-dashboard/internal/middleware"
	"attendance-dashboard/internal/rbac"
	"attendance-dashboard/internal/rbac/infra"
	"attendance-dashboard/internal/team"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	calendarRepo := calendar.NewRepository(gormDB)
	teamRepo := team.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	calendarService := calendar.NewService(calendarRepo, rdb, calendar.DefaultWeekConfig())
	teamService := team.NewService(teamRepo)
	authService := auth.NewService(authRepo, teamService)
	leaveService := leave.NewServiceWithOutbox(
		db, leaveRepo, calendarService, teamService, rbacService,
		leave.PolicyFromEnv(), outboxRepo,
	)
	attendanceService := attendance.NewService(db, attendanceRepo, leaveService, attendance.ConfigFromEnv())

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	attendanceHandler := attendance.NewHandler(attendanceService)
	calendarHandler := calendar.NewHandler(calendarService)
	teamHandler := team.NewHandler(teamService)
	leaveHandler := leave.NewHandler(leaveService, rdb)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	router.Use(middleware.RequestID(), middleware.ContextLogger(zap.L()))

	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService)
		calendar.RegisterRoutes(api, calendarHandler, rbacService)
		team.RegisterRoutes(api, teamHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb)
		rbac.RegisterRoutes(api, rbacHandler, rbacService)
	}

	return nil
}
