// Package queuetest provides an in-memory queue.Dispatcher for tests.
package queuetest

import (
	"context"
	"sync"

	"github.com/hibiken/asynq"
)

type Recorder struct {
	mu    sync.Mutex
	Tasks []*asynq.Task
	Err   error
}

func (r *Recorder) Enqueue(_ context.Context, task *asynq.Task, _ ...asynq.Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Tasks = append(r.Tasks, task)
	return nil
}

// Types lists the recorded task types in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		out = append(out, t.Type())
	}
	return out
}

// Count returns how many tasks of taskType were recorded.
func (r *Recorder) Count(taskType string) int {
	n := 0
	for _, t := range r.Types() {
		if t == taskType {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.Tasks = nil
	r.mu.Unlock()
}
