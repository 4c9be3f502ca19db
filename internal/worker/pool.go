package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueArqueoExport = "jobs:arqueo_export"
	QueueEmail        = "jobs:email"

	JobArqueoExport = "arqueo_export"
	JobEmail        = "email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler processes one job payload. A returned error counts as a failed attempt.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Route binds a queue to its handler. Attempts <= 0 means a single attempt.
type Route struct {
	Queue    string
	Handler  Handler
	Attempts int
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueExportArqueo schedules the XLSX/PDF receipt of a committed arqueo.
func (d *Dispatcher) EnqueueExportArqueo(ctx context.Context, arqueoID uuid.UUID) error {
	return d.enqueue(ctx, QueueArqueoExport, JobArqueoExport, ExportJobPayload{ArqueoID: arqueoID.String()})
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", jobType, err)
	}
	return nil
}

// Pool consumes every routed queue. Jobs that still fail after their
// attempts are moved to the DLQ.
type Pool struct {
	rdb    *redis.Client
	routes map[string]Route
	queues []string
}

func NewPool(rdb *redis.Client, routes ...Route) *Pool {
	p := &Pool{rdb: rdb, routes: make(map[string]Route, len(routes))}
	for _, r := range routes {
		p.routes[r.Queue] = r
		p.queues = append(p.queues, r.Queue)
	}
	return p
}

// Start launches numWorkers goroutines consuming all queues.
// Each goroutine blocks on BRPOP and uses no CPU when idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Strs("queues", p.queues).Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s, then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, "unknown", json.RawMessage(raw), "invalid envelope: "+err.Error(), 0)
		return
	}

	route, ok := p.routes[queue]
	if !ok {
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("no handler for queue")
		return
	}
	attempts := route.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	log.Info().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	err := withRetry(ctx, attempts, func(attempt int) error {
		if err := route.Handler.Process(ctx, job.Payload); err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("type", job.Type).Msg("job attempt failed")
			return err
		}
		return nil
	})
	if err != nil {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), attempts)
	}
}
