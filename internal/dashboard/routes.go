package dashboard

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	// Embedded static assets (served from assets/ subdir of the embed.FS).
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	router.GET("/healthz", handleHealth())

	protected := router.Group("/")
	if opts.Auth.Secret != "" {
		protected.Use(requireAuth(opts.Auth))
	}

	protected.GET("/", handleIndex(opts.Stats))

	api := protected.Group("/api")
	api.GET("/statistics", handleStatistics(opts.Stats))
	api.GET("/activity", handleActivity(opts.Stats))
	api.GET("/categories", handleCategories(opts.Stats))
	api.GET("/overview", handleOverview(opts.Stats))
	api.GET("/events", handleSSE(opts.Stats, opts.RefreshInterval, opts.HeartbeatInterval))
}

func handleIndex(r Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ov := r.Overview(c.Request.Context())
		c.HTML(http.StatusOK, "layout.html", newPageData(ov))
	}
}

func handleStatistics(r Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, r.PlatformStatistics(c.Request.Context()))
	}
}

func handleActivity(r Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, r.RecentActivity(c.Request.Context()))
	}
}

func handleCategories(r Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, r.CategoryPerformance(c.Request.Context()))
	}
}

func handleOverview(r Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, r.Overview(c.Request.Context()))
	}
}

func handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
