package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matchyard/matchyard/internal/stats"
	"github.com/rs/zerolog"
)

// Reporter produces the marketplace reports. *stats.Service implements it.
type Reporter interface {
	PlatformStatistics(ctx context.Context) stats.PlatformStatistics
	RecentActivity(ctx context.Context) []stats.RecentActivity
	CategoryPerformance(ctx context.Context) []stats.CategoryPerformance
	Overview(ctx context.Context) stats.Overview
}

// Defaults for the live event stream.
const (
	DefaultRefreshInterval   = 5 * time.Second
	DefaultHeartbeatInterval = 15 * time.Second
)

// AuthOpts enables bearer token checks. An empty Secret disables auth.
type AuthOpts struct {
	Secret       string
	RequiredRole string
}

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	Stats             Reporter
	Port              int
	Out               io.Writer
	Logger            zerolog.Logger
	Auth              AuthOpts
	RefreshInterval   time.Duration
	HeartbeatInterval time.Duration
}

func (o *StartOpts) applyDefaults() {
	if o.Port <= 0 {
		o.Port = 8080
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = DefaultRefreshInterval
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = DefaultHeartbeatInterval
	}
}

// NewRouter builds the dashboard's gin engine.
func NewRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.Stats == nil {
		return nil, fmt.Errorf("dashboard: stats reporter is required")
	}
	opts.applyDefaults()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(opts.Logger), recovery())

	// Parse embedded templates.
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	registerRoutes(router, opts)
	return router, nil
}

// Start launches the dashboard HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}
	opts.applyDefaults()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Dashboard running at http://localhost:%d\n", opts.Port)
	}
	opts.Logger.Info().Int("port", opts.Port).Bool("auth", opts.Auth.Secret != "").Msg("dashboard started")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// parseTemplates loads the embedded HTML templates.
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}
