package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is the smallest useful unit. Extend as needed later (trace, retry, etc).
type Job struct {
	ExpenseID   uuid.UUID
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
