//go:build integration

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"arelyz/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

type failingHandler struct{ calls int }

func (h *failingHandler) Process(context.Context, json.RawMessage) error {
	h.calls++
	return errors.New("disk full")
}

func TestPool_FalloVaALaDLQYSeReencola(t *testing.T) {
	prev := backoffUnit
	backoffUnit = time.Millisecond
	t.Cleanup(func() { backoffUnit = prev })

	rdb := newTestRedis(t)
	ctx := context.Background()
	h := &failingHandler{}
	pool := NewPool(rdb, Route{Queue: QueueArqueoExport, Handler: h, Attempts: 2})

	job, err := json.Marshal(Job{Type: JobArqueoExport, Payload: json.RawMessage(`{"arqueo_id":"x"}`)})
	require.NoError(t, err)
	pool.process(ctx, QueueArqueoExport, string(job))
	pool.process(ctx, QueueArqueoExport, "not json")

	assert.Equal(t, 2, h.calls)
	n, err := DLQLength(ctx, rdb, QueueArqueoExport)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	entries, err := ListDLQ(ctx, rdb, QueueArqueoExport, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, JobArqueoExport, entries[0].JobType, "oldest first")
	assert.Equal(t, "disk full", entries[0].Reason)
	assert.Equal(t, 2, entries[0].Attempts)

	moved, err := RequeueDLQ(ctx, rdb, QueueArqueoExport, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, moved, "invalid envelopes stay in the DLQ")

	queued, err := rdb.LLen(ctx, QueueArqueoExport).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, queued)

	lengths, err := DLQLengths(ctx, rdb)
	require.NoError(t, err)
	assert.EqualValues(t, 1, lengths[QueueArqueoExport])
	assert.EqualValues(t, 0, lengths[QueueEmail])
}

func TestDispatcher_Encola(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	d := NewDispatcher(rdb)

	require.NoError(t, d.EnqueueEmail(ctx, EmailJobPayload{ToEmail: "o@x.mx", Subject: "s"}))
	raw, err := rdb.RPop(ctx, QueueEmail).Result()
	require.NoError(t, err)

	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, JobEmail, job.Type)
	assert.JSONEq(t, `{"to_email":"o@x.mx","subject":"s","body":""}`, string(job.Payload))
}
