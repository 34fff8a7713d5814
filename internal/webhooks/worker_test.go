package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerProcessOnce_SuccessAndSignature(t *testing.T) {
	var (
		mu      sync.Mutex
		gotSig  string
		gotType string
		gotBody []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotSig = r.Header.Get(SignatureHeader)
		gotType = r.Header.Get(EventTypeHeader)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	q := NewMemoryQueue()
	pub := NewPublisher(q, []Subscription{
		{URL: srv.URL, Secret: "secret", Events: []string{EventSolveCompleted}},
		{URL: srv.URL + "/other", Events: []string{"dataset.created"}},
	}, nil)
	pub.Emit(context.Background(), EventSolveCompleted, map[string]any{"runId": "r1"})

	pending, err := q.List(context.Background(), StatusPending, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1, "only the matching subscription is queued")

	w := NewWorker(q, 3, nil)
	w.HTTP = srv.Client()
	w.processOnce()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, EventSolveCompleted, gotType)
	assert.True(t, VerifyHMAC("secret", gotBody, gotSig))
	var env map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &env))
	assert.Equal(t, EventSolveCompleted, env["type"])

	delivered, _ := q.List(context.Background(), StatusDelivered, 0)
	require.Len(t, delivered, 1)
	assert.Equal(t, 1, delivered[0].Attempts)
	assert.NotNil(t, delivered[0].DeliveredAt)
}

func TestWorkerRetriesThenDeadLetters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	q := NewMemoryQueue()
	id, err := q.Enqueue(context.Background(), EventSolveCompleted, srv.URL, "", []byte(`{}`))
	require.NoError(t, err)

	w := NewWorker(q, 2, nil)
	w.HTTP = srv.Client()
	w.processOnce()

	retry, _ := q.List(context.Background(), StatusRetry, 0)
	require.Len(t, retry, 1)
	assert.Equal(t, "HTTP 500", retry[0].LastError)
	assert.True(t, retry[0].NextAttemptAt.After(time.Now()))

	// not due yet
	due, _ := q.FetchDue(context.Background(), 0)
	assert.Empty(t, due)

	require.NoError(t, q.Retry(context.Background(), id))
	w.processOnce()
	failed, _ := q.List(context.Background(), StatusFailed, 0)
	require.Len(t, failed, 1)
	assert.Equal(t, 2, failed[0].Attempts)
	assert.Equal(t, 500, failed[0].ResponseCode)
}

func TestSignature(t *testing.T) {
	sig := SignHMAC("k", []byte("body"))
	assert.Regexp(t, `^sha256=[0-9a-f]{64}$`, sig)
	assert.True(t, VerifyHMAC("k", []byte("body"), sig))
	assert.True(t, VerifyHMAC("k", []byte("body"), sig[len("sha256="):]))
	assert.False(t, VerifyHMAC("k", []byte("tampered"), sig))
	assert.False(t, VerifyHMAC("k", []byte("body"), "zz"))
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, time.Second, nextBackoff(-3))
	assert.Equal(t, 8*time.Second, nextBackoff(3))
	assert.Equal(t, 1024*time.Second, nextBackoff(50))
}

func TestEmitWithoutSubscriptions(t *testing.T) {
	var p *Publisher
	p.Emit(context.Background(), EventSolveCompleted, nil)
	q := NewMemoryQueue()
	NewPublisher(q, nil, nil).Emit(context.Background(), EventSolveCompleted, nil)
	all, _ := q.List(context.Background(), "", 0)
	assert.Empty(t, all)
}

func TestMemoryQueuePrunesFinishedDeliveries(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()
	q.Retain = 2

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := q.Enqueue(ctx, EventSolveCompleted, "http://hooks.invalid", "", []byte(`{}`))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, q.Mark(ctx, ids[0], true, time.Time{}, "", 200, 1))
	require.NoError(t, q.Fail(ctx, ids[1], "gone", 410, 1))
	require.NoError(t, q.Mark(ctx, ids[2], false, time.Now().Add(time.Hour), "HTTP 500", 500, 1))
	require.NoError(t, q.Mark(ctx, ids[3], true, time.Time{}, "", 200, 1))

	all, err := q.List(ctx, "", 0)
	require.NoError(t, err)
	got := make([]string, len(all))
	for i, d := range all {
		got[i] = d.ID
	}
	// oldest finished delivery dropped; retrying and pending ones kept
	assert.Equal(t, []string{ids[1], ids[2], ids[3], ids[4]}, got)
	assert.Error(t, q.Retry(ctx, ids[0]))

	due, err := q.FetchDue(ctx, 0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, ids[4], due[0].ID)
}
