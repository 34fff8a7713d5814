package webhooks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const EventSolveCompleted = "solve.completed"

// Subscription receives events of the listed types, or of every type when
// Events is empty.
type Subscription struct {
	URL    string
	Secret string
	Events []string
}

func (s Subscription) wants(eventType string) bool {
	if len(s.Events) == 0 {
		return true
	}
	for _, e := range s.Events {
		if e == eventType || e == "*" {
			return true
		}
	}
	return false
}

type Publisher struct {
	Queue Queue
	Subs  []Subscription
	Log   *zap.Logger
}

func NewPublisher(q Queue, subs []Subscription, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{Queue: q, Subs: subs, Log: log}
}

// Emit enqueues an event for every matching subscription.
func (p *Publisher) Emit(ctx context.Context, eventType string, data any) {
	if p == nil || len(p.Subs) == 0 {
		return
	}
	payload := map[string]any{
		"id":   "evt_" + uuid.New().String(),
		"type": eventType,
		"ts":   time.Now().UTC().Format(time.RFC3339),
		"data": data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		p.Log.Error("webhook payload", zap.String("event", eventType), zap.Error(err))
		return
	}
	for _, s := range p.Subs {
		if !s.wants(eventType) {
			continue
		}
		if _, err := p.Queue.Enqueue(ctx, eventType, s.URL, s.Secret, body); err != nil {
			p.Log.Warn("webhook enqueue failed", zap.String("url", s.URL), zap.Error(err))
		}
	}
}
