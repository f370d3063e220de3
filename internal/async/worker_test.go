package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProcessor struct {
	mu        sync.Mutex
	processed []uuid.UUID
	err       error
	block     chan struct{}
}

func (p *countingProcessor) ProcessReceipt(_ context.Context, expenseID uuid.UUID) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	p.processed = append(p.processed, expenseID)
	p.mu.Unlock()
	return p.err
}

func (p *countingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.processed)
}

func TestProcessorQueueProcessesJobs(t *testing.T) {
	proc := &countingProcessor{}
	q := NewProcessorQueue(proc, nil, WithWorkers(2), WithQueueSize(8))

	ids := make(map[uuid.UUID]bool)
	for i := 0; i < 5; i++ {
		id := uuid.New()
		ids[id] = true
		require.NoError(t, q.Enqueue(context.Background(), Job{ExpenseID: id, SubmittedAt: time.Now()}))
	}

	q.Shutdown(context.Background())

	require.Equal(t, 5, proc.count())
	for _, id := range proc.processed {
		assert.True(t, ids[id])
	}
}

func TestProcessorQueueShutdownDrains(t *testing.T) {
	proc := &countingProcessor{block: make(chan struct{})}
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithQueueSize(8))

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{ExpenseID: uuid.New()}))
	}
	close(proc.block)

	q.Shutdown(context.Background())
	assert.Equal(t, 3, proc.count())

	// enqueue after shutdown is a no-op, not a panic
	require.NoError(t, q.Enqueue(context.Background(), Job{ExpenseID: uuid.New()}))
	assert.Equal(t, 3, proc.count())

	// repeated shutdown is safe
	q.Shutdown(context.Background())
}

func TestProcessorQueueKeepsWorkingAfterErrors(t *testing.T) {
	proc := &countingProcessor{err: errors.New("extraction blew up")}
	q := NewProcessorQueue(proc, nil, WithWorkers(1))

	for i := 0; i < 4; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{ExpenseID: uuid.New()}))
	}
	q.Shutdown(context.Background())

	// failures are logged per job; the pool keeps consuming
	assert.Equal(t, 4, proc.count())
}
