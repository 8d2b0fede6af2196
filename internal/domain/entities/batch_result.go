package entities

// QueueProcessingResult represents the outcome of draining one queue
type QueueProcessingResult struct {
	QueueID        string               `json:"queue_id"`
	TotalRequests  int                  `json:"total_requests"`
	Executed       int                  `json:"executed"`
	Rejected       int                  `json:"rejected"`
	ManualReview   int                  `json:"manual_review"`
	Deferred       int                  `json:"deferred"`
	Failed         []FailedPayoutDetail `json:"failed"`
	BatchesStarted int                  `json:"batches_started"`
}

// FailedPayoutDetail captures why one request in a batch failed
type FailedPayoutDetail struct {
	RequestID int    `json:"request_id"`
	Network   string `json:"network"`
	Amount    string `json:"amount"`
	Reason    string `json:"reason"`
	Error     string `json:"error"`
}

// TickResult represents one scheduler pass over the due queues
type TickResult struct {
	QueuesProcessed int                     `json:"queues_processed"`
	QueuesSkipped   int                     `json:"queues_skipped"`
	QueueResults    []QueueProcessingResult `json:"queue_results"`
	Halted          bool                    `json:"halted"`
}
