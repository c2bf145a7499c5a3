package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/matchyard/matchyard/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Default report tuning.
const (
	DefaultActivityWindow = 30 * 24 * time.Hour
	DefaultActivityLimit  = 20
)

// Log reasons attached to degraded reports.
const (
	ReasonSchemaUnavailable = "schema_unavailable"
	ReasonQueryFailed       = "query_failed"
	ReasonPanic             = "panic"
)

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	ActivityWindow time.Duration
	ActivityLimit  int
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Service runs the dashboard reports against the marketplace database. It
// only reads. A Service is safe for concurrent use.
type Service struct {
	db     *gorm.DB
	log    zerolog.Logger
	window time.Duration
	limit  int
	now    func() time.Time
}

// New creates a Service reading from db.
func New(db *gorm.DB, logger zerolog.Logger, opts Options) *Service {
	s := &Service{
		db:     db,
		log:    logger.With().Str("component", "stats").Logger(),
		window: opts.ActivityWindow,
		limit:  opts.ActivityLimit,
		now:    opts.Now,
	}
	if s.window <= 0 {
		s.window = DefaultActivityWindow
	}
	if s.limit <= 0 {
		s.limit = DefaultActivityLimit
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// logger prefers the request-scoped logger carried by ctx.
func (s *Service) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		sub := l.With().Str("component", "stats").Logger()
		return &sub
	}
	return &s.log
}

// PlatformStatistics returns the headline counters. When the resources table
// cannot be read, or any counter query fails, the sample record is returned
// instead.
func (s *Service) PlatformStatistics(ctx context.Context) (out PlatformStatistics) {
	log := s.logger(ctx)
	defer s.guard(ctx, "platform_statistics", func() { out = SampleStatistics() })

	if err := probeSchema(ctx, s.db); err != nil {
		log.Warn().Err(err).
			Str("op", "platform_statistics").
			Str("reason", ReasonSchemaUnavailable).
			Msg("resources table unavailable, using sample statistics")
		return SampleStatistics()
	}

	var st PlatformStatistics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(safe(func() (err error) { st.TotalListings, err = countResources(gctx, s.db); return }))
	g.Go(safe(func() (err error) { st.SuccessfulMatches, err = countMatches(gctx, s.db); return }))
	g.Go(safe(func() (err error) { st.PendingConnections, err = countUnread(gctx, s.db); return }))
	g.Go(safe(func() (err error) { st.TotalInterests, err = countMessages(gctx, s.db); return }))
	if err := g.Wait(); err != nil {
		log.Error().Err(err).
			Str("op", "platform_statistics").
			Str("reason", ReasonQueryFailed).
			Msg("statistics query failed, using sample statistics")
		return SampleStatistics()
	}

	st.ActiveListings = ActiveListings(st.TotalListings, st.SuccessfulMatches)
	return st
}

// RecentActivity returns the newest classified events from the trailing
// activity window. Any failure yields an empty feed.
func (s *Service) RecentActivity(ctx context.Context) (out []RecentActivity) {
	log := s.logger(ctx)
	defer s.guard(ctx, "recent_activity", func() { out = []RecentActivity{} })

	since := s.now().UTC().Add(-s.window)
	resources, messages, err := s.fetch(ctx,
		func(ctx context.Context) ([]models.Resource, error) { return resourcesSince(ctx, s.db, since) },
		func(ctx context.Context) ([]models.Message, error) { return messagesSince(ctx, s.db, since) },
	)
	if err != nil {
		log.Error().Err(err).
			Str("op", "recent_activity").
			Str("reason", ReasonQueryFailed).
			Msg("activity query failed")
		return []RecentActivity{}
	}
	return BuildActivity(resources, messages, s.limit)
}

// CategoryPerformance returns one summary per category, in report order.
// Any failure yields an empty list.
func (s *Service) CategoryPerformance(ctx context.Context) (out []CategoryPerformance) {
	log := s.logger(ctx)
	defer s.guard(ctx, "category_performance", func() { out = []CategoryPerformance{} })

	resources, messages, err := s.fetch(ctx,
		func(ctx context.Context) ([]models.Resource, error) { return allResources(ctx, s.db) },
		func(ctx context.Context) ([]models.Message, error) { return allMessages(ctx, s.db) },
	)
	if err != nil {
		log.Error().Err(err).
			Str("op", "category_performance").
			Str("reason", ReasonQueryFailed).
			Msg("category query failed")
		return []CategoryPerformance{}
	}
	return SummarizeCategories(resources, messages)
}

// Overview computes all three reports concurrently.
func (s *Service) Overview(ctx context.Context) Overview {
	var ov Overview
	var g errgroup.Group
	g.Go(func() error { ov.Statistics = s.PlatformStatistics(ctx); return nil })
	g.Go(func() error { ov.Activity = s.RecentActivity(ctx); return nil })
	g.Go(func() error { ov.Categories = s.CategoryPerformance(ctx); return nil })
	_ = g.Wait()
	return ov
}

// fetch runs the resource and message queries of a report concurrently.
func (s *Service) fetch(
	ctx context.Context,
	resourcesFn func(context.Context) ([]models.Resource, error),
	messagesFn func(context.Context) ([]models.Message, error),
) ([]models.Resource, []models.Message, error) {
	var (
		resources []models.Resource
		messages  []models.Message
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(safe(func() (err error) {
		resources, err = resourcesFn(gctx)
		if err != nil {
			return fmt.Errorf("list resources: %w", err)
		}
		return nil
	}))
	g.Go(safe(func() (err error) {
		messages, err = messagesFn(gctx)
		if err != nil {
			return fmt.Errorf("list messages: %w", err)
		}
		return nil
	}))
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return resources, messages, nil
}

// guard recovers a panic in a report and replaces its result with fallback.
// It must be deferred directly.
func (s *Service) guard(ctx context.Context, op string, fallback func()) {
	r := recover()
	if r == nil {
		return
	}
	s.logger(ctx).Error().
		Str("op", op).
		Str("reason", ReasonPanic).
		Interface("panic", r).
		Msg("recovered from panic in report")
	fallback()
}

// safe converts a panic inside an errgroup goroutine into an error.
func safe(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}
}
