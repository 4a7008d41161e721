package sniper

import (
	"context"
	"fmt"
	"time"

	"github.com/puntaluxe/growth-engine/internal/observability/metrics"
	"github.com/puntaluxe/growth-engine/internal/outreach"
	"github.com/puntaluxe/growth-engine/pkg/logging"
)

// enqueuer is the outreach queue surface the service needs.
type enqueuer interface {
	Enqueue(ctx context.Context, leadID, channel string, scheduledFor time.Time) (bool, error)
}

// Notifier alerts the agency about a qualified prospect. Best-effort; a
// failure never fails the triage action.
type Notifier interface {
	ProspectQualified(ctx context.Context, leadID string) error
}

// DecisionRecorder tracks daily triage decisions for the dashboard rollups.
// Best-effort as well.
type DecisionRecorder interface {
	RecordDecision(ctx context.Context, decision string) error
}

// Service is the triage controller. Every operator action is a guarded
// store write with a typed result; the caller commits its local update only
// after the write succeeds.
type Service struct {
	store    ProspectStore
	queue    enqueuer
	notifier Notifier
	rollup   DecisionRecorder
	metrics  *metrics.TriageMetrics
	logger   *logging.Logger
	now      func() time.Time
}

func NewService(store ProspectStore, queue enqueuer, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:  store,
		queue:  queue,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithNotifier enables qualification emails.
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// WithRollup enables daily decision rollups.
func (s *Service) WithRollup(r DecisionRecorder) *Service {
	s.rollup = r
	return s
}

// WithMetrics enables triage counters.
func (s *Service) WithMetrics(m *metrics.TriageMetrics) *Service {
	s.metrics = m
	return s
}

// Approve moves a new prospect to qualified and enqueues exactly one
// outreach task for it. The two writes are treated as one logical unit:
// when the enqueue fails the status write is compensated and the caller
// gets ErrOutreachFailed, so the operator can retry.
func (s *Service) Approve(ctx context.Context, id string) (Status, error) {
	if err := s.store.TransitionStatus(ctx, id, StatusNew, StatusQualified); err != nil {
		s.metrics.ObserveAction("approve", "error")
		return "", err
	}

	created, err := s.queue.Enqueue(ctx, id, outreach.ChannelWhatsApp, s.now())
	if err != nil {
		// Roll the status back so the prospect stays actionable. The revert
		// bypasses the operator state machine on purpose.
		if revertErr := s.store.TransitionStatus(ctx, id, StatusQualified, StatusNew); revertErr != nil {
			s.logger.Error("approve compensation failed", "error", revertErr, "lead_id", id)
		}
		s.metrics.ObserveAction("approve", "error")
		return "", fmt.Errorf("%w: %v", ErrOutreachFailed, err)
	}
	if created {
		s.metrics.ObserveOutreachEnqueued()
	}

	s.metrics.ObserveAction("approve", "ok")
	s.recordDecision(ctx, "approved")
	if s.notifier != nil {
		if err := s.notifier.ProspectQualified(ctx, id); err != nil {
			s.logger.Warn("qualification notify failed", "error", err, "lead_id", id)
		}
	}
	s.logger.Info("prospect approved", "lead_id", id, "task_created", created)
	return StatusQualified, nil
}

// FlagForVideoAudit moves a new prospect to contacted. No outreach task is
// created.
func (s *Service) FlagForVideoAudit(ctx context.Context, id string) (Status, error) {
	if err := s.store.TransitionStatus(ctx, id, StatusNew, StatusContacted); err != nil {
		s.metrics.ObserveAction("video_audit", "error")
		return "", err
	}
	s.metrics.ObserveAction("video_audit", "ok")
	s.recordDecision(ctx, "video_audit")
	s.logger.Info("prospect flagged for video audit", "lead_id", id)
	return StatusContacted, nil
}

// Reject moves a new prospect to disqualified, a terminal status. The row
// is kept, never deleted.
func (s *Service) Reject(ctx context.Context, id string) (Status, error) {
	if err := s.store.TransitionStatus(ctx, id, StatusNew, StatusDisqualified); err != nil {
		s.metrics.ObserveAction("reject", "error")
		return "", err
	}
	s.metrics.ObserveAction("reject", "ok")
	s.recordDecision(ctx, "rejected")
	s.logger.Info("prospect rejected", "lead_id", id)
	return StatusDisqualified, nil
}

func (s *Service) recordDecision(ctx context.Context, decision string) {
	if s.rollup == nil {
		return
	}
	if err := s.rollup.RecordDecision(ctx, decision); err != nil {
		s.logger.Warn("decision rollup failed", "error", err, "decision", decision)
	}
}
