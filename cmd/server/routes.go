package main

import (
	"github.com/gin-gonic/gin"

	"github.com/qualitrack/backend/internal/attendance"
	"github.com/qualitrack/backend/internal/auth"
	"github.com/qualitrack/backend/internal/batches"
	"github.com/qualitrack/backend/internal/certifications"
	"github.com/qualitrack/backend/internal/holidays"
	"github.com/qualitrack/backend/internal/lob"
	"github.com/qualitrack/backend/internal/metrics"
	"github.com/qualitrack/backend/internal/middleware"
	"github.com/qualitrack/backend/internal/organizations"
	"github.com/qualitrack/backend/internal/phasechange"
	"github.com/qualitrack/backend/internal/reports"
	"github.com/qualitrack/backend/internal/users"
	"github.com/qualitrack/backend/pkg/response"
)

// apiHandlers bundles everything registerRoutes mounts.
type apiHandlers struct {
	auth        *auth.Handler
	orgs        *organizations.Handler
	users       *users.Handler
	lob         *lob.Handler
	holidays    *holidays.Handler
	batches     *batches.Handler
	attendance  *attendance.Handler
	metrics     *metrics.Handler
	phaseChange *phasechange.Handler
	certs       *certifications.Handler
	reports     *reports.Handler

	jwtAuth     gin.HandlerFunc
	orgAccess   gin.HandlerFunc
	batchAccess gin.HandlerFunc
}

// registerRoutes mounts health, auth and the protected API route table.
func registerRoutes(router *gin.Engine, h apiHandlers) {
	orgAccess := h.orgAccess
	batchAccess := h.batchAccess

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", h.auth.Login)
		authGroup.POST("/register", h.auth.Register)
	}

	// Protected API (JWT required)
	api := router.Group("/api")
	api.Use(h.jwtAuth)
	{
		// Organizations and settings
		api.POST("/organizations", middleware.RequireRole("admin"), h.orgs.Create)
		api.GET("/organizations/:orgId", orgAccess, h.orgs.Get)
		api.GET("/organizations/:orgId/settings", orgAccess, h.orgs.GetSettings)
		api.PUT("/organizations/:orgId/settings", orgAccess, middleware.RequireRole("admin", "manager"), h.orgs.UpdateSettings)

		// Users
		api.GET("/organizations/:orgId/users", orgAccess, h.users.List)
		api.GET("/organizations/:orgId/users/tree", orgAccess, h.users.Tree)
		api.POST("/organizations/:orgId/users", orgAccess, middleware.RequireRole("admin", "manager"), h.users.Create)
		api.POST("/organizations/:orgId/users/bulk", orgAccess, middleware.RequireRole("admin", "manager"), h.users.Bulk)
		api.GET("/organizations/:orgId/users/bulk/template", orgAccess, h.users.Template)
		api.PATCH("/users/:id", middleware.RequireRole("admin", "manager"), h.users.Update)
		api.DELETE("/users/:id", middleware.RequireRole("admin", "manager"), h.users.Delete)

		// Lines of business and processes
		api.GET("/organizations/:orgId/line-of-businesses", orgAccess, h.lob.List)
		api.POST("/organizations/:orgId/line-of-businesses", orgAccess, middleware.RequireRole("admin", "manager"), h.lob.Create)
		api.PATCH("/line-of-businesses/:id", middleware.RequireRole("admin", "manager"), h.lob.Update)
		api.DELETE("/line-of-businesses/:id", middleware.RequireRole("admin", "manager"), h.lob.Delete)
		api.POST("/line-of-businesses/:id/processes", middleware.RequireRole("admin", "manager"), h.lob.CreateProcess)
		api.PATCH("/processes/:id", middleware.RequireRole("admin", "manager"), h.lob.UpdateProcess)
		api.DELETE("/processes/:id", middleware.RequireRole("admin", "manager"), h.lob.DeleteProcess)

		// Holidays
		api.GET("/organizations/:orgId/holidays", orgAccess, h.holidays.List)
		api.POST("/organizations/:orgId/holidays", orgAccess, middleware.RequireRole("admin", "manager"), h.holidays.Create)
		api.PATCH("/holidays/:id", middleware.RequireRole("admin", "manager"), h.holidays.Update)
		api.DELETE("/holidays/:id", middleware.RequireRole("admin", "manager"), h.holidays.Delete)

		// Batches and rosters
		api.GET("/organizations/:orgId/batches", orgAccess, h.batches.List)
		api.POST("/organizations/:orgId/batches", orgAccess, middleware.RequireRole("admin", "manager"), h.batches.Create)
		api.GET("/batches/:batchId", batchAccess, h.batches.Get)
		api.PATCH("/batches/:batchId", batchAccess, middleware.RequireRole("admin", "manager"), h.batches.Update)
		api.DELETE("/batches/:batchId", batchAccess, middleware.RequireRole("admin"), h.batches.Delete)
		api.GET("/batches/:batchId/trainees", batchAccess, h.batches.Roster)
		api.POST("/batches/:batchId/trainees", batchAccess, middleware.RequireRole("admin", "manager", "trainer"), h.batches.Enroll)
		api.DELETE("/batches/:batchId/trainees/:userId", batchAccess, middleware.RequireRole("admin", "manager"), h.batches.Unenroll)

		// Attendance
		api.POST("/attendance", middleware.RequireRole("admin", "manager", "trainer"), h.attendance.Mark)
		api.GET("/attendance/overview", h.attendance.Overview)
		api.GET("/batches/:batchId/attendance/history", batchAccess, h.attendance.History)

		// Derived batch metrics
		api.GET("/batches/:batchId/metrics", batchAccess, h.metrics.Get)

		// Phase change workflow
		api.GET("/batches/:batchId/phase-change-requests", batchAccess, h.phaseChange.List)
		api.POST("/batches/:batchId/phase-change-requests", batchAccess, middleware.RequireRole("admin", "manager", "trainer"), h.phaseChange.Create)
		api.PATCH("/phase-change-requests/:id", middleware.RequireRole("admin", "manager"), h.phaseChange.Review)
		api.DELETE("/phase-change-requests/:id", h.phaseChange.Delete)

		// Certification evaluations and refreshers
		api.GET("/batches/:batchId/certification-evaluations", batchAccess, h.certs.List)
		api.POST("/batches/:batchId/certification-evaluations", batchAccess, middleware.RequireRole("admin", "manager", "quality_analyst"), h.certs.Create)
		api.PATCH("/certification-evaluations/:id", middleware.RequireRole("admin", "manager", "quality_analyst"), h.certs.RecordResult)
		api.GET("/batches/:batchId/refreshers", batchAccess, h.certs.ListRefreshers)
		api.POST("/batches/:batchId/trainees/:userId/refresher", batchAccess, middleware.RequireRole("admin", "manager", "trainer", "quality_analyst"), h.certs.ScheduleRefresher)
		api.PATCH("/refreshers/:id", middleware.RequireRole("admin", "manager", "trainer", "quality_analyst"), h.certs.SetRefresherWindow)

		// Reports
		api.GET("/batches/:batchId/reports/insight.pdf", batchAccess, h.reports.Insight)
		api.POST("/batches/:batchId/reports", batchAccess, middleware.RequireRole("admin", "manager"), h.reports.Generate)
		api.GET("/batches/:batchId/reports", batchAccess, h.reports.Archive)

		// Org-scoped aliases for batch-nested resources; same handlers,
		// with both the org and batch access checks applied.
		api.GET("/organizations/:orgId/attendance/overview", orgAccess, h.attendance.Overview)
		ob := api.Group("/organizations/:orgId/batches/:batchId", orgAccess, batchAccess)
		{
			ob.GET("", h.batches.Get)
			ob.GET("/trainees", h.batches.Roster)
			ob.GET("/attendance/history", h.attendance.History)
			ob.GET("/metrics", h.metrics.Get)
			ob.GET("/certification-evaluations", h.certs.List)
			ob.POST("/trainees/:userId/refresher", middleware.RequireRole("admin", "manager", "trainer", "quality_analyst"), h.certs.ScheduleRefresher)
			ob.POST("/trainees/:userId/set-refresher", middleware.RequireRole("admin", "manager", "trainer", "quality_analyst"), h.certs.SetTraineeRefresherWindow)
		}
	}
}
