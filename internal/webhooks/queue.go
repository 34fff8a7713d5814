package webhooks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Delivery states.
const (
	StatusPending   = "pending"
	StatusRetry     = "retry"
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

type Delivery struct {
	ID            string     `json:"id"`
	EventType     string     `json:"eventType"`
	URL           string     `json:"url"`
	Secret        string     `json:"-"`
	Payload       []byte     `json:"-"`
	Status        string     `json:"status"`
	Attempts      int        `json:"attempts"`
	NextAttemptAt time.Time  `json:"nextAttemptAt,omitempty"`
	LastError     string     `json:"lastError,omitempty"`
	ResponseCode  int        `json:"responseCode,omitempty"`
	LatencyMs     int        `json:"latencyMs,omitempty"`
	DeliveredAt   *time.Time `json:"deliveredAt,omitempty"`
}

// Queue holds pending deliveries for the Worker.
type Queue interface {
	Enqueue(ctx context.Context, eventType, url, secret string, payload []byte) (string, error)
	FetchDue(ctx context.Context, limit int) ([]Delivery, error)
	Mark(ctx context.Context, id string, success bool, nextAttemptAt time.Time, lastError string, responseCode, latencyMs int) error
	Fail(ctx context.Context, id string, lastError string, responseCode, latencyMs int) error
	List(ctx context.Context, status string, limit int) ([]Delivery, error)
	Retry(ctx context.Context, id string) error
}

// DefaultRetain is how many delivered or failed entries a MemoryQueue keeps
// for listing and retry.
const DefaultRetain = 1000

// MemoryQueue is an in-process Queue. Deliveries do not survive a restart.
// Only the newest Retain deliveries in a terminal state are kept; pending and
// retrying ones are never dropped. A negative Retain keeps everything.
type MemoryQueue struct {
	Retain int

	mu    sync.Mutex
	items map[string]*Delivery
	order []string
	now   func() time.Time
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{Retain: DefaultRetain, items: map[string]*Delivery{}, now: time.Now}
}

func terminal(status string) bool { return status == StatusDelivered || status == StatusFailed }

// prune drops the oldest terminal deliveries beyond Retain. Caller holds mu.
func (q *MemoryQueue) prune() {
	done := 0
	for _, id := range q.order {
		if terminal(q.items[id].Status) {
			done++
		}
	}
	excess := done - q.Retain
	if q.Retain < 0 || excess <= 0 {
		return
	}
	kept := q.order[:0]
	for _, id := range q.order {
		if excess > 0 && terminal(q.items[id].Status) {
			delete(q.items, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	q.order = kept
}

func (q *MemoryQueue) Enqueue(ctx context.Context, eventType, url, secret string, payload []byte) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := uuid.New().String()
	q.items[id] = &Delivery{ID: id, EventType: eventType, URL: url, Secret: secret, Payload: payload, Status: StatusPending, NextAttemptAt: q.now()}
	q.order = append(q.order, id)
	return id, nil
}

func (q *MemoryQueue) FetchDue(ctx context.Context, limit int) ([]Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	out := []Delivery{}
	for _, id := range q.order {
		d := q.items[id]
		if (d.Status == StatusPending || d.Status == StatusRetry) && !d.NextAttemptAt.After(now) {
			out = append(out, *d)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (q *MemoryQueue) Mark(ctx context.Context, id string, success bool, nextAttemptAt time.Time, lastError string, responseCode, latencyMs int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	d, ok := q.items[id]
	if !ok {
		return fmt.Errorf("delivery %s not found", id)
	}
	d.Attempts++
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	if success {
		now := q.now()
		d.Status = StatusDelivered
		d.DeliveredAt = &now
		d.LastError = ""
		q.prune()
		return nil
	}
	d.Status = StatusRetry
	d.LastError = lastError
	d.NextAttemptAt = nextAttemptAt
	return nil
}

// Fail moves a delivery to the dead-letter state.
func (q *MemoryQueue) Fail(ctx context.Context, id string, lastError string, responseCode, latencyMs int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	d, ok := q.items[id]
	if !ok {
		return fmt.Errorf("delivery %s not found", id)
	}
	d.Attempts++
	d.Status = StatusFailed
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	q.prune()
	return nil
}

func (q *MemoryQueue) List(ctx context.Context, status string, limit int) ([]Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := []Delivery{}
	for _, id := range q.order {
		d := q.items[id]
		if status == "" || d.Status == status {
			out = append(out, *d)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// Retry puts a delivery back in the pending state, due now.
func (q *MemoryQueue) Retry(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	d, ok := q.items[id]
	if !ok {
		return fmt.Errorf("delivery %s not found", id)
	}
	d.Status = StatusPending
	d.NextAttemptAt = q.now()
	return nil
}
