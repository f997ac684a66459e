package main

import (
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qualitrack/backend/internal/attendance"
	"github.com/qualitrack/backend/internal/auth"
	"github.com/qualitrack/backend/internal/batches"
	"github.com/qualitrack/backend/internal/certifications"
	"github.com/qualitrack/backend/internal/holidays"
	"github.com/qualitrack/backend/internal/lob"
	"github.com/qualitrack/backend/internal/metrics"
	"github.com/qualitrack/backend/internal/organizations"
	"github.com/qualitrack/backend/internal/phasechange"
	"github.com/qualitrack/backend/internal/reports"
	"github.com/qualitrack/backend/internal/users"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	passthrough := func(c *gin.Context) { c.Next() }

	router := gin.New()
	registerRoutes(router, apiHandlers{
		auth:        auth.NewHandler(nil, nil, logger),
		orgs:        organizations.NewHandler(nil),
		users:       users.NewHandler(nil, nil, nil, logger),
		lob:         lob.NewHandler(nil, logger),
		holidays:    holidays.NewHandler(nil, logger),
		batches:     batches.NewHandler(nil, logger),
		attendance:  attendance.NewHandler(nil, nil, nil, nil, nil, nil, logger),
		metrics:     metrics.NewHandler(nil, nil, nil, logger),
		phaseChange: phasechange.NewHandler(nil, nil, nil, nil, nil, logger),
		certs:       certifications.NewHandler(nil, nil, logger),
		reports:     reports.NewHandler(nil, nil, nil, nil, logger),
		jwtAuth:     passthrough,
		orgAccess:   passthrough,
		batchAccess: passthrough,
	})
	return router
}

func TestRouteTableServesOrgScopedPaths(t *testing.T) {
	mounted := make(map[string]bool)
	for _, r := range testRouter(t).Routes() {
		mounted[r.Method+" "+r.Path] = true
	}

	want := []string{
		// Org-scoped shapes.
		"GET /api/organizations/:orgId/batches/:batchId",
		"GET /api/organizations/:orgId/batches/:batchId/trainees",
		"GET /api/organizations/:orgId/attendance/overview",
		"GET /api/organizations/:orgId/batches/:batchId/attendance/history",
		"GET /api/organizations/:orgId/batches/:batchId/metrics",
		"GET /api/organizations/:orgId/batches/:batchId/certification-evaluations",
		"POST /api/organizations/:orgId/batches/:batchId/trainees/:userId/refresher",
		"POST /api/organizations/:orgId/batches/:batchId/trainees/:userId/set-refresher",
		// Flattened counterparts stay mounted.
		"GET /api/batches/:batchId/metrics",
		"GET /api/attendance/overview",
		"POST /api/attendance",
		"POST /api/batches/:batchId/phase-change-requests",
		"PATCH /api/phase-change-requests/:id",
		"POST /api/organizations/:orgId/users/bulk",
		"GET /api/organizations/:orgId/users/bulk/template",
		"GET /api/batches/:batchId/reports/insight.pdf",
	}
	for _, w := range want {
		if !mounted[w] {
			t.Errorf("route not mounted: %s", w)
		}
	}
}
