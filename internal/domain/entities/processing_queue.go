package entities

import (
	"sort"
	"time"
)

// QueueType buckets payout requests by how they should be drained
type QueueType string

const (
	QueueTypeEmergency QueueType = "EMERGENCY"
	QueueTypeRealTime  QueueType = "REAL_TIME"
	QueueTypeManual    QueueType = "MANUAL"
	QueueTypeThreshold QueueType = "THRESHOLD"
	QueueTypeScheduled QueueType = "SCHEDULED"
)

// Weight returns the queue-level priority (higher drains first)
func (t QueueType) Weight() int {
	switch t {
	case QueueTypeEmergency:
		return 100
	case QueueTypeRealTime:
		return 80
	case QueueTypeManual:
		return 60
	case QueueTypeThreshold:
		return 40
	default:
		return 20
	}
}

// QueueTypeForSchedule maps a request schedule type to its queue type
func QueueTypeForSchedule(schedule PayoutScheduleType) QueueType {
	switch schedule {
	case ScheduleTypeRealTime:
		return QueueTypeRealTime
	case ScheduleTypeThresholdTriggered:
		return QueueTypeThreshold
	case ScheduleTypeManualOverride:
		return QueueTypeManual
	default:
		return QueueTypeScheduled
	}
}

// QueueStatus is the processing queue lifecycle
type QueueStatus string

const (
	QueueStatusPending    QueueStatus = "PENDING"
	QueueStatusProcessing QueueStatus = "PROCESSING"
	QueueStatusCompleted  QueueStatus = "COMPLETED"
)

// ProcessingQueue is an in-memory, typed, prioritized bucket of payout
// requests for one calendar day. It is never persisted; completed queues are
// garbage-collected 24 hours after completion.
type ProcessingQueue struct {
	ID                      string
	Type                    QueueType
	Priority                int
	Status                  QueueStatus
	Requests                []*AutomatedPayoutRequest
	ScheduledFor            time.Time
	CompletedAt             *time.Time
	EstimatedProcessingTime time.Duration
	CreatedAt               time.Time
}

// Insert adds a request, re-sorts by request priority and refreshes the
// estimated processing time.
func (q *ProcessingQueue) Insert(req *AutomatedPayoutRequest) {
	q.Requests = append(q.Requests, req)
	sort.SliceStable(q.Requests, func(i, j int) bool {
		return q.Requests[i].Priority.Weight() > q.Requests[j].Priority.Weight()
	})
	q.EstimatedProcessingTime = q.estimateProcessingTime()
}

func (q *ProcessingQueue) estimateProcessingTime() time.Duration {
	manualReview := 0
	highRisk := 0
	for _, req := range q.Requests {
		if req.AutomationDecision == DecisionManualReview {
			manualReview++
		}
		if req.RiskScore > 70 {
			highRisk++
		}
	}
	return time.Duration(len(q.Requests))*30*time.Second +
		time.Duration(manualReview)*300*time.Second +
		time.Duration(highRisk)*60*time.Second
}

// QueueSnapshot is a read-only view of a queue for the operational API
type QueueSnapshot struct {
	ID                      string        `json:"id"`
	Type                    QueueType     `json:"type"`
	Priority                int           `json:"priority"`
	Status                  QueueStatus   `json:"status"`
	RequestCount            int           `json:"request_count"`
	ScheduledFor            time.Time     `json:"scheduled_for"`
	EstimatedProcessingTime time.Duration `json:"estimated_processing_time"`
}

// Snapshot returns a copy safe to hand outside the queue manager's lock
func (q *ProcessingQueue) Snapshot() QueueSnapshot {
	return QueueSnapshot{
		ID:                      q.ID,
		Type:                    q.Type,
		Priority:                q.Priority,
		Status:                  q.Status,
		RequestCount:            len(q.Requests),
		ScheduledFor:            q.ScheduledFor,
		EstimatedProcessingTime: q.EstimatedProcessingTime,
	}
}
