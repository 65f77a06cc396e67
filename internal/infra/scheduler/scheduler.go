package scheduler

import (
	"context"
	"time"

	"github.com/Latsika/AirportApp/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CheckPointScheduler fires the daily morning check point. The engine is
// check-point driven and does not depend on this job for correctness
// (any app open after the deadline catches up), but the sweep guarantees
// a deadline is noticed on days nobody logs in before it.
type CheckPointScheduler struct {
	cronEngine       *cron.Cron
	engine           app.CheckPoint
	logger           *logrus.Logger
	cronMorningCheck string
}

func NewCheckPointScheduler(
	engine app.CheckPoint,
	logger *logrus.Logger,
	loc *time.Location,
	cronMorningCheck string, // e.g. "0 8 * * *" (08:00 in the reporting zone)
) *CheckPointScheduler {
	return &CheckPointScheduler{
		cronEngine:       cron.New(cron.WithLocation(loc)),
		engine:           engine,
		logger:           logger,
		cronMorningCheck: cronMorningCheck,
	}
}

func (s *CheckPointScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronMorningCheck, func() {
		s.logger.Info("Cron job triggered: morning check point.")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		summary, err := s.engine.CheckAndNotify(ctx, time.Now())
		if err != nil {
			s.logger.WithError(err).Error("Morning check point failed; pending events will be retried at the next check point.")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"new_events":    summary.NewEvents,
			"popup_queued":  summary.Delivery.PopupQueued,
			"email_sent":    summary.Delivery.EmailSent,
			"email_skipped": summary.Delivery.EmailSkipped,
		}).Info("Morning check point completed.")
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Info("Check point scheduler started.")
	return nil
}

func (s *CheckPointScheduler) Stop() {
	s.logger.Info("Stopping check point scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Check point scheduler gracefully stopped.")
}
