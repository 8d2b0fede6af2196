package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	"go.uber.org/zap"
)

// queueRetention is how long a completed queue survives before collection
const queueRetention = 24 * time.Hour

// QueueManager owns the in-memory processing queues. Queue identity is
// queue type plus calendar day; all access goes through the manager's lock so
// the admission path and the scheduler tick never race on queue state.
type QueueManager struct {
	logger *zap.Logger
	queues map[string]*entities.ProcessingQueue
	mutex  sync.RWMutex
	now    func() time.Time
}

// NewQueueManager creates a new queue manager
func NewQueueManager(logger *zap.Logger) *QueueManager {
	return &QueueManager{
		logger: logger,
		queues: make(map[string]*entities.ProcessingQueue),
		now:    time.Now,
	}
}

// Enqueue places a payout request into the queue for its schedule type,
// creating the day's queue on first insertion.
func (m *QueueManager) Enqueue(req *entities.AutomatedPayoutRequest) *entities.ProcessingQueue {
	queueType := entities.QueueTypeForSchedule(req.ScheduleType)
	now := m.now()
	id := queueID(queueType, now)

	m.mutex.Lock()
	defer m.mutex.Unlock()

	queue, exists := m.queues[id]
	if !exists {
		queue = &entities.ProcessingQueue{
			ID:           id,
			Type:         queueType,
			Priority:     queueType.Weight(),
			Status:       entities.QueueStatusPending,
			ScheduledFor: req.ScheduledFor,
			CreatedAt:    now,
		}
		m.queues[id] = queue
		m.logger.Info("Processing queue created",
			zap.String("queue_id", id),
			zap.String("queue_type", string(queueType)),
		)
	}
	// a completed queue that receives a new request reopens; inserting into a
	// PROCESSING queue is safe because MarkProcessing detached the batch being
	// drained, so the new request waits for the next pass
	if queue.Status == entities.QueueStatusCompleted {
		queue.Status = entities.QueueStatusPending
		queue.CompletedAt = nil
	}
	if req.ScheduledFor.Before(queue.ScheduledFor) {
		queue.ScheduledFor = req.ScheduledFor
	}

	queue.Insert(req)

	m.logger.Debug("Payout request queued",
		zap.String("queue_id", id),
		zap.Int("request_id", req.ID),
		zap.String("priority", string(req.Priority)),
		zap.Int("queue_depth", len(queue.Requests)),
	)

	return queue
}

// DueQueues returns pending queues whose scheduled time has passed, sorted
// descending by queue priority.
func (m *QueueManager) DueQueues(now time.Time) []*entities.ProcessingQueue {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	due := make([]*entities.ProcessingQueue, 0)
	for _, queue := range m.queues {
		if queue.Status == entities.QueueStatusPending && !queue.ScheduledFor.After(now) {
			due = append(due, queue)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].Priority > due[j].Priority
	})
	return due
}

// MarkProcessing flags a queue as actively draining and detaches its request
// slice. The batch processor works on the returned snapshot; the live queue is
// never read outside the manager's lock, and requests admitted while the
// snapshot drains accumulate on the queue for the next pass.
func (m *QueueManager) MarkProcessing(queue *entities.ProcessingQueue) []*entities.AutomatedPayoutRequest {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	queue.Status = entities.QueueStatusProcessing
	drained := queue.Requests
	queue.Requests = nil
	queue.EstimatedProcessingTime = 0
	return drained
}

// MarkCompleted flags a queue as drained and stamps the completion time. A
// queue that picked up requests while its snapshot was draining goes back to
// PENDING instead, so the next tick processes them.
func (m *QueueManager) MarkCompleted(queue *entities.ProcessingQueue) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if len(queue.Requests) > 0 {
		queue.Status = entities.QueueStatusPending
		return
	}
	now := m.now()
	queue.Status = entities.QueueStatusCompleted
	queue.CompletedAt = &now
}

// Requeue returns a queue to PENDING, merging the given unprocessed requests
// with any admitted while the queue was draining. Used when a halt or time
// budget leaves part of a snapshot unprocessed.
func (m *QueueManager) Requeue(queue *entities.ProcessingQueue, remaining []*entities.AutomatedPayoutRequest) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, req := range remaining {
		queue.Insert(req)
	}
	queue.Status = entities.QueueStatusPending
}

// GarbageCollect drops queues completed more than the retention period ago
// and returns how many were removed.
func (m *QueueManager) GarbageCollect(now time.Time) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	removed := 0
	for id, queue := range m.queues {
		if queue.Status != entities.QueueStatusCompleted || queue.CompletedAt == nil {
			continue
		}
		if now.Sub(*queue.CompletedAt) > queueRetention {
			delete(m.queues, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("Garbage collected completed queues", zap.Int("removed", removed))
	}
	return removed
}

// Status returns a snapshot of every live queue for the operational API
func (m *QueueManager) Status() []entities.QueueSnapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snapshots := make([]entities.QueueSnapshot, 0, len(m.queues))
	for _, queue := range m.queues {
		snapshots = append(snapshots, queue.Snapshot())
	}
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Priority > snapshots[j].Priority
	})
	return snapshots
}

func queueID(queueType entities.QueueType, day time.Time) string {
	return fmt.Sprintf("%s-%s", queueType, day.Format("2006-01-02"))
}
