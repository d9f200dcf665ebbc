package handler

import (
	"net/http"
	"strings"

	"github.com/bitfantasy/nimo-qc/internal/middleware"
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the service on r.
func RegisterRoutes(r *gin.Engine, h *Handlers, jwtSecret string) {
	r.GET("/health/live", h.Health.Live)
	r.GET("/health/ready", h.Health.Ready)
	r.GET("/version", h.Health.Version)

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"code": 40400, "message": "Not found"})
			return
		}
		c.String(http.StatusNotFound, "not found")
	})

	v1 := r.Group("/api/v1", middleware.JWTAuth(jwtSecret))
	{
		v1.GET("/events", h.SSE.Stream)

		v1.GET("/master-parts", h.MasterPart.List)
		v1.GET("/master-parts/:code/specs", h.MasterPart.Specs)
		v1.GET("/progress", h.MasterPart.Progress)

		v1.GET("/forms", h.Form.Kinds)
		v1.GET("/forms/:kind/schema", h.Form.Schema)
		v1.POST("/forms/:kind/sessions", h.Form.Open)

		sessions := v1.Group("/sessions/:id")
		{
			sessions.GET("", h.Form.Get)
			sessions.DELETE("", h.Form.Close)
			sessions.PATCH("/fields", h.Form.UpdateFields)
			sessions.POST("/edit", middleware.RequireRole(entity.RoleHOD), h.Form.ToggleEdit)

			sessions.POST("/grids/:grid/columns", h.Form.AddColumn)
			sessions.DELETE("/grids/:grid/columns/:index", h.Form.RemoveColumn)
			sessions.PUT("/grids/:grid/labels/:index", h.Form.SetColumnLabel)
			sessions.PUT("/grids/:grid/cells", h.Form.SetCells)
			sessions.POST("/grids/:grid/rows", h.Form.AddRow)
			sessions.PUT("/grids/:grid/rows/:rowId", h.Form.UpdateRow)
			sessions.DELETE("/grids/:grid/rows/:rowId", h.Form.RemoveRow)

			sessions.POST("/attachments", h.Form.AddAttachment)
			sessions.DELETE("/attachments/:section", h.Form.RemoveAttachment)

			sessions.POST("/preview", h.Form.Preview)
			sessions.POST("/back", h.Form.Back)
			sessions.POST("/submit", h.Form.Submit)
			sessions.GET("/print", h.Form.Print)
			sessions.GET("/export", h.Form.Export)
		}

		v1.GET("/submissions", middleware.RequireRole(entity.RoleHOD), h.Submission.List)
	}
}
