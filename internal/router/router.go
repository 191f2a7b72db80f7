// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/asset-maintenance/internal/handler"
	"github.com/iliyamo/asset-maintenance/internal/middleware"
)

// RegisterRoutes registers unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers authentication routes.  Register, login and
// refresh live under /v1/auth; logout and me need an access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.POST("/auth/logout", a.Logout)
	auth.GET("/me", a.Me)
}

// RegisterMaintenance registers the asset registry and the schedule API.
// Every route requires a JWT; limit runs after authentication so the
// bucket key can include the user.
func RegisterMaintenance(e *echo.Echo, r *handler.RegistryHandler, s *handler.ScheduleHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), limit)

	// ---- Assets ----
	g.POST("/assets", r.CreateAsset)
	g.GET("/assets", r.ListAssets)
	g.GET("/assets/:id", r.GetAsset)
	g.DELETE("/assets/:id", r.DeleteAsset)

	// ---- Maintenance types ----
	g.POST("/maintenance-types", r.CreateType)
	g.POST("/maintenance-types/create-defaults", r.CreateDefaultTypes)
	g.GET("/maintenance-types", r.ListTypes)
	g.GET("/maintenance-types/:id", r.GetType)
	g.DELETE("/maintenance-types/:id", r.DeleteType)

	// ---- Maintenance records ----
	g.POST("/maintenance-records", r.CreateRecord)
	g.GET("/maintenance-records", r.ListRecords)
	g.GET("/maintenance-records/asset/:assetId", r.ListRecordsByAsset)
	g.GET("/maintenance-records/:id", r.GetRecord)

	// ---- Schedules ----
	ms := g.Group("/maintenance-schedules")
	ms.GET("", s.List)
	ms.GET("/stats", s.Stats)
	ms.GET("/upcoming", s.Upcoming)
	ms.GET("/overdue", s.Overdue)
	ms.GET("/asset/:assetId", s.ByAsset)
	ms.GET("/:id", s.Get)
	ms.POST("", s.Create)
	ms.PUT("/:id", s.Update)
	ms.PATCH("/:id", s.Update)
	ms.DELETE("/:id", s.Delete)
	ms.POST("/:id/complete", s.Complete)
}
