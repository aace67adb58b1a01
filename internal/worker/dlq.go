package worker

// Dead-letter handling: a job that keeps failing after maxJobAttempts is
// parked on a Redis list named dlq:<source queue> together with the failure
// reason, so an operator can inspect or replay it.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

type DLQEntry struct {
	SourceQueue string          `json:"source_queue"`
	JobType     string          `json:"job_type"`
	Payload     json.RawMessage `json:"payload"`
	Reason      string          `json:"reason"`
	Attempts    int             `json:"attempts"`
	FailedAt    time.Time       `json:"failed_at"`
}

// deadLetter parks an exhausted job. Errors here are logged and swallowed:
// the job is already lost to normal processing, and the worker loop must not
// stall on DLQ bookkeeping.
func (d *Dispatcher) deadLetter(ctx context.Context, queue string, job Job, reason string) {
	entry := DLQEntry{
		SourceQueue: queue,
		JobType:     job.Type,
		Payload:     job.Payload,
		Reason:      reason,
		Attempts:    job.Attempts,
		FailedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal entry")
		return
	}
	if err := d.rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: push")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("job moved to dead letter queue")
}

// DLQLength reports how many jobs are parked for a queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
