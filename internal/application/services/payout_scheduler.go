package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	domainRepos "github.com/acecasino/payout_automation/internal/domain/repositories"
	"github.com/acecasino/payout_automation/internal/notification"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SchedulerConfig holds the scheduler tunables
type SchedulerConfig struct {
	TickInterval time.Duration
	TickTimeout  time.Duration
}

// PayoutScheduler drives the periodic processing pass. Only one tick runs at
// a time: a tick that finds the previous one still running is skipped, not
// queued. The emergency halt is advisory — it is checked before each queue
// and each batch but never aborts a treasury call already in flight.
type PayoutScheduler struct {
	queueManager     *QueueManager
	batchProcessor   *BatchProcessor
	audit            *AuditService
	notificationRepo domainRepos.AdminNotificationRepository
	notifier         notification.Sender
	logger           *zap.Logger
	config           SchedulerConfig
	processorConfig  BatchProcessorConfig
	cron             *cron.Cron
	isProcessing     atomic.Bool
	emergencyHalt    atomic.Bool
	haltReason       atomic.Value
	isRunning        bool
	now              func() time.Time
}

// NewPayoutScheduler creates a new payout scheduler
func NewPayoutScheduler(
	queueManager *QueueManager,
	batchProcessor *BatchProcessor,
	audit *AuditService,
	notificationRepo domainRepos.AdminNotificationRepository,
	notifier notification.Sender,
	logger *zap.Logger,
	config SchedulerConfig,
	processorConfig BatchProcessorConfig,
) *PayoutScheduler {
	if config.TickInterval <= 0 {
		config.TickInterval = 60 * time.Second
	}
	if config.TickTimeout <= 0 {
		config.TickTimeout = 5 * time.Minute
	}
	return &PayoutScheduler{
		queueManager:     queueManager,
		batchProcessor:   batchProcessor,
		audit:            audit,
		notificationRepo: notificationRepo,
		notifier:         notifier,
		logger:           logger,
		config:           config,
		processorConfig:  processorConfig,
		cron:             cron.New(cron.WithSeconds()),
		now:              time.Now,
	}
}

// Start begins the periodic tick
func (s *PayoutScheduler) Start() error {
	if s.isRunning {
		s.logger.Warn("Payout scheduler is already running")
		return nil
	}

	spec := fmt.Sprintf("@every %s", s.config.TickInterval)
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.TickTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Info("Payout scheduler started",
		zap.Duration("tick_interval", s.config.TickInterval),
	)
	return nil
}

// Stop halts the periodic tick
func (s *PayoutScheduler) Stop() {
	if !s.isRunning {
		return
	}
	s.cron.Stop()
	s.isRunning = false
	s.logger.Info("Payout scheduler stopped")
}

// IsRunning returns whether the cron loop is active
func (s *PayoutScheduler) IsRunning() bool {
	return s.isRunning
}

// IsHalted returns whether emergency halt is in effect
func (s *PayoutScheduler) IsHalted() bool {
	return s.emergencyHalt.Load()
}

// RunOnce executes a single processing pass over the due queues
func (s *PayoutScheduler) RunOnce(ctx context.Context) *entities.TickResult {
	result := &entities.TickResult{}

	if s.emergencyHalt.Load() {
		result.Halted = true
		return result
	}
	if !s.isProcessing.CompareAndSwap(false, true) {
		s.logger.Warn("Previous tick still running, skipping")
		return result
	}
	defer s.isProcessing.Store(false)

	tickStart := s.now()
	shouldStop := func() bool {
		if s.emergencyHalt.Load() {
			return true
		}
		budget := s.processorConfig.MaxProcessingTime
		return budget > 0 && s.now().Sub(tickStart) > budget
	}

	due := s.queueManager.DueQueues(tickStart)
	for _, queue := range due {
		if shouldStop() {
			result.QueuesSkipped++
			continue
		}

		requests := s.queueManager.MarkProcessing(queue)
		queueResult, remaining := s.batchProcessor.ProcessQueue(ctx, queue.ID, requests, shouldStop)
		result.QueueResults = append(result.QueueResults, *queueResult)
		result.QueuesProcessed++

		if len(remaining) > 0 {
			s.queueManager.Requeue(queue, remaining)
			continue
		}

		s.queueManager.MarkCompleted(queue)
		s.audit.Record(ctx, s.processorConfig.AutomationIdentity, entities.AuditEventQueueCompleted, map[string]interface{}{
			"queue_id": queue.ID,
			"executed": queueResult.Executed,
			"rejected": queueResult.Rejected,
			"failed":   len(queueResult.Failed),
		})
	}

	s.queueManager.GarbageCollect(s.now())

	result.Halted = s.emergencyHalt.Load()
	if result.QueuesProcessed > 0 {
		s.logger.Info("Scheduler tick completed",
			zap.Int("queues_processed", result.QueuesProcessed),
			zap.Int("queues_skipped", result.QueuesSkipped),
			zap.Duration("duration", s.now().Sub(tickStart)),
		)
	}
	return result
}

// EmergencyHalt stops all further queue and batch admission. The audit record
// is written immediately, regardless of in-flight work. Halting an already
// halted engine returns ErrProcessingHalted and keeps the original reason.
func (s *PayoutScheduler) EmergencyHalt(ctx context.Context, reason, actor string) error {
	if !s.emergencyHalt.CompareAndSwap(false, true) {
		return ErrProcessingHalted
	}
	s.haltReason.Store(reason)

	s.logger.Warn("Emergency halt engaged",
		zap.String("reason", reason),
		zap.String("actor", actor),
	)

	s.audit.Record(ctx, actor, entities.AuditEventEmergencyHalt, map[string]interface{}{
		"reason": reason,
	})

	message := fmt.Sprintf("EMERGENCY HALT by %s: %s", actor, reason)
	record := &entities.AdminNotification{
		Type:    entities.NotificationEmergencyHalt,
		Message: message,
	}
	if err := s.notificationRepo.Create(ctx, record); err != nil {
		s.logger.Error("Failed to persist halt notification", zap.Error(err))
	}
	if err := s.notifier.Send(message); err != nil {
		s.logger.Warn("Failed to deliver halt notification", zap.Error(err))
	}
	return nil
}

// Resume clears the emergency halt, auditing the identity that cleared it
func (s *PayoutScheduler) Resume(ctx context.Context, authorizedBy string) {
	s.emergencyHalt.Store(false)

	s.logger.Info("Processing resumed", zap.String("authorized_by", authorizedBy))

	s.audit.Record(ctx, authorizedBy, entities.AuditEventProcessingResumed, nil)

	message := fmt.Sprintf("Payout processing resumed by %s", authorizedBy)
	record := &entities.AdminNotification{
		Type:    entities.NotificationProcessingResumed,
		Message: message,
	}
	if err := s.notificationRepo.Create(ctx, record); err != nil {
		s.logger.Error("Failed to persist resume notification", zap.Error(err))
	}
	if err := s.notifier.Send(message); err != nil {
		s.logger.Warn("Failed to deliver resume notification", zap.Error(err))
	}
}

// HaltReason returns the reason for the current halt, if any
func (s *PayoutScheduler) HaltReason() string {
	if !s.emergencyHalt.Load() {
		return ""
	}
	if reason, ok := s.haltReason.Load().(string); ok {
		return reason
	}
	return ""
}
