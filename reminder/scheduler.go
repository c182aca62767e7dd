package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

const jobName = "ticket-reminders"

type Runner interface {
	Run(ctx context.Context) (Result, error)
}

// Scheduler runs a reminder job on a cron schedule. A run still in progress when
// the next one is due causes that next run to be skipped.
type Scheduler struct {
	scheduler gocron.Scheduler
	job       Runner
	cron      string
}

// NewScheduler evaluates cron in location.
func NewScheduler(job Runner, cron string, clock clockwork.Clock, location *time.Location) (*Scheduler, error) {
	if location == nil {
		location = time.UTC
	}

	s, err := gocron.NewScheduler(gocron.WithClock(clock), gocron.WithLocation(location))
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		job:       job,
		cron:      cron,
	}, nil
}

func (s *Scheduler) Run(ctx context.Context) error {
	logger := log.FromContext(ctx).WithField("job", jobName)

	_, err := s.scheduler.NewJob(
		gocron.CronJob(s.cron, false),
		gocron.NewTask(func() {
			s.runOnce(ctx, logger)
		}),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("scheduling reminder job: %w", err)
	}

	logger.WithField("cron", s.cron).Info("Starting reminder scheduler...")
	s.scheduler.Start()

	<-ctx.Done()

	logger.Info("Shutting down reminder scheduler...")
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutting down scheduler: %w", err)
	}

	return nil
}

func (s *Scheduler) runOnce(ctx context.Context, logger *logrus.Entry) {
	res, err := s.job.Run(ctx)
	if err != nil {
		logger.WithError(err).Error("Reminder run failed")
		return
	}

	logger.WithFields(logrus.Fields{
		"accepted": res.Accepted,
		"skipped":  res.Skipped,
		"failed":   res.Failed,
	}).Debug("Reminder run completed")
}
