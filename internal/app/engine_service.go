// internal/app/engine_service.go
package app

import (
	"context"
	"sync"
	"time"

	"github.com/Latsika/AirportApp/internal/domain/popup"

	"github.com/sirupsen/logrus"
)

// CheckPoint is the surface the surrounding application (and the cron
// sweep) invokes on app open and on export actions.
type CheckPoint interface {
	CheckAndNotify(ctx context.Context, at time.Time) (*CheckSummary, error)
}

// CheckSummary is what the UI renders after a check point: how many new
// events this pass produced, the delivery outcome, and the unread popup
// list for the admin.
type CheckSummary struct {
	NewEvents int
	Delivery  *DeliveryReport
	Unread    []*popup.Notification
}

// EngineService ties the evaluator and the dispatcher into one check
// point. Correctness under concurrent check points is carried by the
// snapshot store's unique index and idempotent delivery marking; the
// mutex only prevents two overlapping passes from both racing past the
// wasNew check and sending duplicate best-effort emails.
type EngineService struct {
	mu         sync.Mutex
	evaluator  *EvaluatorService
	dispatcher *DispatcherService
	popups     popup.Repository
	logger     *logrus.Logger
}

func NewEngineService(
	evaluator *EvaluatorService,
	dispatcher *DispatcherService,
	popups popup.Repository,
	logger *logrus.Logger,
) *EngineService {
	return &EngineService{
		evaluator:  evaluator,
		dispatcher: dispatcher,
		popups:     popups,
		logger:     logger,
	}
}

// CheckAndNotify evaluates all trigger rules at the given instant, then
// delivers everything pending (including snapshots left over from
// earlier failed passes). A storage failure leaves the remaining events
// pending; the next check point retries them safely.
func (s *EngineService) CheckAndNotify(ctx context.Context, at time.Time) (*CheckSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := &CheckSummary{}

	events, err := s.evaluator.Evaluate(ctx, at)
	summary.NewEvents = len(events)
	if err != nil {
		return summary, err
	}

	summary.Delivery, err = s.dispatcher.DeliverPending(ctx, at)
	if err != nil {
		return summary, err
	}

	summary.Unread, err = s.popups.ListUnread(ctx)
	if err != nil {
		return summary, err
	}

	return summary, nil
}

// AcknowledgePopups advances the admin session's read cursor over the
// popup queue.
func (s *EngineService) AcknowledgePopups(ctx context.Context, ids []int64, at time.Time) error {
	return s.popups.MarkRead(ctx, ids, at)
}
