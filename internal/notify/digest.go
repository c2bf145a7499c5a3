package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matchyard/matchyard/internal/stats"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseSchedule validates a 5-field cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("notify: parse schedule %q: %w", expr, err)
	}
	return sched, nil
}

// NextRun returns the first fire time of expr after from.
func NextRun(expr string, from time.Time) (time.Time, error) {
	sched, err := ParseSchedule(expr)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// Reporter supplies the overview a digest is built from.
type Reporter interface {
	Overview(ctx context.Context) stats.Overview
}

// Dispatcher builds digests and sends them to every notifier.
type Dispatcher struct {
	reporter  Reporter
	notifiers []Notifier
	log       zerolog.Logger
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(r Reporter, notifiers []Notifier, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		reporter:  r,
		notifiers: notifiers,
		log:       logger.With().Str("component", "digest").Logger(),
		now:       time.Now,
	}
}

// SendOnce builds one digest and sends it to all notifiers. A failing
// notifier does not stop the others; all failures are returned joined.
func (d *Dispatcher) SendOnce(ctx context.Context) error {
	if len(d.notifiers) == 0 {
		return errors.New("notify: no notifiers configured")
	}

	digest := BuildDigest(d.reporter.Overview(ctx), d.now())

	var errs []error
	for _, n := range d.notifiers {
		if err := n.Send(ctx, digest); err != nil {
			d.log.Error().Err(err).Str("notifier", n.Name()).Msg("digest send failed")
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
			continue
		}
		d.log.Info().Str("notifier", n.Name()).Msg("digest sent")
	}
	return errors.Join(errs...)
}

// Run sends a digest on every tick of schedule until ctx is cancelled.
// Send failures are logged and do not stop the schedule.
func (d *Dispatcher) Run(ctx context.Context, schedule string) error {
	next, err := NextRun(schedule, d.now())
	if err != nil {
		return err
	}

	c := cron.New(cron.WithParser(cronParser))
	if _, err := c.AddFunc(schedule, func() {
		_ = d.SendOnce(ctx)
	}); err != nil {
		return fmt.Errorf("notify: schedule digest: %w", err)
	}

	c.Start()
	d.log.Info().Str("schedule", schedule).Time("next", next).Msg("digest scheduled")

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
