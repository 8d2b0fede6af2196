package services

import (
	"testing"
	"time"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newQueueManagerAt(now time.Time) *QueueManager {
	m := NewQueueManager(zap.NewNop())
	m.now = func() time.Time { return now }
	return m
}

func queuedRequest(id int, schedule entities.PayoutScheduleType, priority entities.PayoutPriority, scheduledFor time.Time) *entities.AutomatedPayoutRequest {
	return &entities.AutomatedPayoutRequest{
		ID:                 id,
		MerchantID:         1,
		ScheduleType:       schedule,
		Priority:           priority,
		Status:             entities.PayoutStatusPending,
		AutomationDecision: entities.DecisionAutoApprove,
		ScheduledFor:       scheduledFor,
	}
}

func TestEnqueue_MapsScheduleTypeToQueueType(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newQueueManagerAt(now)

	cases := []struct {
		schedule entities.PayoutScheduleType
		want     entities.QueueType
		weight   int
	}{
		{entities.ScheduleTypeRealTime, entities.QueueTypeRealTime, 80},
		{entities.ScheduleTypeManualOverride, entities.QueueTypeManual, 60},
		{entities.ScheduleTypeThresholdTriggered, entities.QueueTypeThreshold, 40},
		{entities.ScheduleTypeScheduled, entities.QueueTypeScheduled, 20},
	}

	for i, tc := range cases {
		queue := m.Enqueue(queuedRequest(i+1, tc.schedule, entities.PriorityNormal, now))
		assert.Equal(t, tc.want, queue.Type)
		assert.Equal(t, tc.weight, queue.Priority)
		assert.Equal(t, string(tc.want)+"-2026-03-10", queue.ID)
	}
}

func TestEnqueue_SameDayRequestsShareQueue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newQueueManagerAt(now)

	first := m.Enqueue(queuedRequest(1, entities.ScheduleTypeScheduled, entities.PriorityNormal, now))
	second := m.Enqueue(queuedRequest(2, entities.ScheduleTypeScheduled, entities.PriorityNormal, now))

	assert.Same(t, first, second)
	assert.Len(t, second.Requests, 2)
}

func TestEnqueue_SortsByRequestPriority(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newQueueManagerAt(now)

	m.Enqueue(queuedRequest(1, entities.ScheduleTypeScheduled, entities.PriorityLow, now))
	m.Enqueue(queuedRequest(2, entities.ScheduleTypeScheduled, entities.PriorityUrgent, now))
	queue := m.Enqueue(queuedRequest(3, entities.ScheduleTypeScheduled, entities.PriorityHigh, now))

	require.Len(t, queue.Requests, 3)
	assert.Equal(t, 2, queue.Requests[0].ID)
	assert.Equal(t, 3, queue.Requests[1].ID)
	assert.Equal(t, 1, queue.Requests[2].ID)
}

func TestEnqueue_EarlierRequestPullsQueueForward(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newQueueManagerAt(now)

	later := now.Add(2 * time.Hour)
	earlier := now.Add(30 * time.Minute)
	m.Enqueue(queuedRequest(1, entities.ScheduleTypeScheduled, entities.PriorityNormal, later))
	queue := m.Enqueue(queuedRequest(2, entities.ScheduleTypeScheduled, entities.PriorityNormal, earlier))

	assert.Equal(t, earlier, queue.ScheduledFor)
}

func TestEstimatedProcessingTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newQueueManagerAt(now)

	plain := queuedRequest(1, entities.ScheduleTypeScheduled, entities.PriorityNormal, now)
	review := queuedRequest(2, entities.ScheduleTypeScheduled, entities.PriorityNormal, now)
	review.AutomationDecision = entities.DecisionManualReview
	risky := queuedRequest(3, entities.ScheduleTypeScheduled, entities.PriorityNormal, now)
	risky.RiskScore = 85

	m.Enqueue(plain)
	m.Enqueue(review)
	queue := m.Enqueue(risky)

	// 3 requests * 30s + 1 manual review * 300s + 1 high risk * 60s
	assert.Equal(t, 450*time.Second, queue.EstimatedProcessingTime)
}

func TestDueQueues_OrderAndFiltering(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newQueueManagerAt(now)

	m.Enqueue(queuedRequest(1, entities.ScheduleTypeScheduled, entities.PriorityNormal, now.Add(-time.Hour)))
	m.Enqueue(queuedRequest(2, entities.ScheduleTypeRealTime, entities.PriorityUrgent, now.Add(-time.Minute)))
	m.Enqueue(queuedRequest(3, entities.ScheduleTypeManualOverride, entities.PriorityHigh, now.Add(time.Hour)))

	due := m.DueQueues(now)
	require.Len(t, due, 2, "future queue must not be due")
	assert.Equal(t, entities.QueueTypeRealTime, due[0].Type)
	assert.Equal(t, entities.QueueTypeScheduled, due[1].Type)
}

func TestMarkProcessing_DetachesRequests(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newQueueManagerAt(now)

	queue := m.Enqueue(queuedRequest(1, entities.ScheduleTypeScheduled, entities.PriorityNormal, now))
	m.Enqueue(queuedRequest(2, entities.ScheduleTypeScheduled, entities.PriorityNormal, now))

	drained := m.MarkProcessing(queue)

	assert.Equal(t, entities.QueueStatusProcessing, queue.Status)
	require.Len(t, drained, 2)
	assert.Empty(t, queue.Requests, "the live queue holds nothing while the snapshot drains")

	// a request admitted mid-drain lands on the queue, not the snapshot
	m.Enqueue(queuedRequest(3, entities.ScheduleTypeScheduled, entities.PriorityNormal, now))
	assert.Len(t, drained, 2)
	require.Len(t, queue.Requests, 1)
	assert.Equal(t, 3, queue.Requests[0].ID)
}

func TestMarkCompleted_KeepsQueueWithMidDrainArrivals(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newQueueManagerAt(now)

	queue := m.Enqueue(queuedRequest(1, entities.ScheduleTypeScheduled, entities.PriorityNormal, now))
	m.MarkProcessing(queue)
	m.Enqueue(queuedRequest(2, entities.ScheduleTypeScheduled, entities.PriorityNormal, now))

	m.MarkCompleted(queue)

	assert.Equal(t, entities.QueueStatusPending, queue.Status)
	assert.Nil(t, queue.CompletedAt)
	assert.Len(t, m.DueQueues(now), 1, "the arrival is picked up on the next tick")
}

func TestEnqueue_ReopensCompletedQueue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newQueueManagerAt(now)

	queue := m.Enqueue(queuedRequest(1, entities.ScheduleTypeScheduled, entities.PriorityNormal, now))
	m.MarkProcessing(queue)
	m.MarkCompleted(queue)
	require.Equal(t, entities.QueueStatusCompleted, queue.Status)

	reopened := m.Enqueue(queuedRequest(2, entities.ScheduleTypeScheduled, entities.PriorityNormal, now))

	assert.Same(t, queue, reopened)
	assert.Equal(t, entities.QueueStatusPending, queue.Status)
	assert.Nil(t, queue.CompletedAt)
	assert.Equal(t, 0, m.GarbageCollect(now.Add(48*time.Hour)), "reopened queue is not collectable")
}

func TestRequeue_MergesMidDrainArrivals(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newQueueManagerAt(now)

	deferred := queuedRequest(1, entities.ScheduleTypeScheduled, entities.PriorityLow, now)
	queue := m.Enqueue(deferred)
	m.MarkProcessing(queue)
	m.Enqueue(queuedRequest(2, entities.ScheduleTypeScheduled, entities.PriorityUrgent, now))

	m.Requeue(queue, []*entities.AutomatedPayoutRequest{deferred})

	assert.Equal(t, entities.QueueStatusPending, queue.Status)
	require.Len(t, queue.Requests, 2)
	assert.Equal(t, 2, queue.Requests[0].ID, "the urgent arrival outranks the deferred request")
	assert.Equal(t, 1, queue.Requests[1].ID)
}

func TestRequeue_ReturnsQueueToPending(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newQueueManagerAt(now)

	kept := queuedRequest(2, entities.ScheduleTypeScheduled, entities.PriorityNormal, now)
	queue := m.Enqueue(queuedRequest(1, entities.ScheduleTypeScheduled, entities.PriorityNormal, now))
	m.Enqueue(kept)

	m.MarkProcessing(queue)
	assert.Equal(t, entities.QueueStatusProcessing, queue.Status)

	m.Requeue(queue, []*entities.AutomatedPayoutRequest{kept})
	assert.Equal(t, entities.QueueStatusPending, queue.Status)
	require.Len(t, queue.Requests, 1)
	assert.Equal(t, 2, queue.Requests[0].ID)
	assert.Len(t, m.DueQueues(now), 1, "requeued queue is due again")
}

func TestGarbageCollect_RemovesOldCompletedQueues(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newQueueManagerAt(now)

	queue := m.Enqueue(queuedRequest(1, entities.ScheduleTypeScheduled, entities.PriorityNormal, now))
	m.MarkProcessing(queue)
	m.MarkCompleted(queue)

	assert.Equal(t, 0, m.GarbageCollect(now.Add(23*time.Hour)), "retained within 24h")
	assert.Len(t, m.Status(), 1)

	assert.Equal(t, 1, m.GarbageCollect(now.Add(25*time.Hour)))
	assert.Len(t, m.Status(), 0)
}

func TestGarbageCollect_IgnoresPendingQueues(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newQueueManagerAt(now)

	m.Enqueue(queuedRequest(1, entities.ScheduleTypeScheduled, entities.PriorityNormal, now))

	assert.Equal(t, 0, m.GarbageCollect(now.Add(48*time.Hour)))
	assert.Len(t, m.Status(), 1)
}

func TestStatus_SnapshotsSortedByPriority(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newQueueManagerAt(now)

	m.Enqueue(queuedRequest(1, entities.ScheduleTypeScheduled, entities.PriorityNormal, now))
	m.Enqueue(queuedRequest(2, entities.ScheduleTypeRealTime, entities.PriorityUrgent, now))

	snapshots := m.Status()
	require.Len(t, snapshots, 2)
	assert.Equal(t, entities.QueueTypeRealTime, snapshots[0].Type)
	assert.Equal(t, 80, snapshots[0].Priority)
	assert.Equal(t, entities.QueueTypeScheduled, snapshots[1].Type)
}
