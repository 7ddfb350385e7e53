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
	QueueReceiptEmail = "jobs:receipt_email"
	QueueReportWarmup = "jobs:report_warmup"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// CacheWarmer recomputes a tenant's sales report cache. Implemented by the
// report service; declared here so the worker does not depend on it.
type CacheWarmer interface {
	WarmSalesCache(ctx context.Context, tenantID uuid.UUID) error
}

// Dispatcher enqueues async jobs into Redis lists. Everything here is
// best-effort: a failed enqueue never fails the business operation that
// triggered it.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReceiptEmail pushes a post-sale receipt e-mail job.
func (d *Dispatcher) EnqueueReceiptEmail(ctx context.Context, payload ReceiptEmailPayload) error {
	return d.enqueue(ctx, QueueReceiptEmail, "receipt_email", payload)
}

// EnqueueReportWarmup schedules a report-cache recompute for the tenant.
func (d *Dispatcher) EnqueueReportWarmup(ctx context.Context, tenantID string) error {
	return d.enqueue(ctx, QueueReportWarmup, "report_warmup", ReportWarmupPayload{TenantID: tenantID})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	if d.rdb == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers holds the processors the pool routes jobs to.
type Handlers struct {
	Email  *EmailWorker
	Warmer CacheWarmer
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers Handlers) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers Handlers) {
	queues := []string{QueueReceiptEmail, QueueReportWarmup}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, result[0], result[1], handlers)
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, queue, raw string, handlers Handlers) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, "unknown", json.RawMessage(raw), "unmarshal: "+err.Error(), 1)
		return
	}

	switch job.Type {
	case "receipt_email":
		if handlers.Email == nil {
			return
		}
		if err := handlers.Email.Process(ctx, job.Payload); err != nil {
			SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), maxEmailAttempts)
		}
	case "report_warmup":
		if err := processWarmup(ctx, job.Payload, handlers.Warmer); err != nil {
			SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), 1)
		}
	default:
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("unknown job type")
	}
}

// ReportWarmupPayload is the job envelope sent to QueueReportWarmup.
type ReportWarmupPayload struct {
	TenantID string `json:"tenant_id"`
}

func processWarmup(ctx context.Context, raw json.RawMessage, warmer CacheWarmer) error {
	if warmer == nil {
		return nil
	}
	var payload ReportWarmupPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return fmt.Errorf("invalid tenant id %q: %w", payload.TenantID, err)
	}
	if err := warmer.WarmSalesCache(ctx, tenantID); err != nil {
		return fmt.Errorf("recompute for tenant %s: %w", payload.TenantID, err)
	}
	return nil
}
