// Package readyqueue holds the processes waiting to run, in
// dispatch order for whichever policy the engine was configured with.
package readyqueue

import (
	"sync"

	"github.com/oswarriors/ossim/internal/process"
)

// Policy selects the ready queue's ordering discipline.
type Policy string

const (
	RoundRobin        Policy = "RR"
	ShortestTimeRemain Policy = "STR"
)

// Queue is a mutex-guarded, policy-aware sequence of processes plus
// the monotonic pid counter used to stamp new arrivals.
type Queue struct {
	mu      sync.Mutex
	policy  Policy
	procs   []*process.Process
	nextPid int
}

// New creates an empty queue under the given policy. Pids start at 1.
func New(policy Policy) *Queue {
	return &Queue{policy: policy, nextPid: 1}
}

// NextPid returns the pid that will be assigned to the next arrival
// and advances the counter.
func (q *Queue) NextPid() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := q.nextPid
	q.nextPid++
	return id
}

// Insert appends p at the tail and marks it READY.
func (q *Queue) Insert(p *process.Process) {
	q.mu.Lock()
	defer q.mu.Unlock()
	p.State = process.StateReady
	q.procs = append(q.procs, p)
}

// Pop removes and returns the head process, or nil if empty.
func (q *Queue) Pop() *process.Process {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.procs) == 0 {
		return nil
	}
	p := q.procs[0]
	q.procs = q.procs[1:]
	return p
}

// Len reports the current length.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.procs)
}

// Resort re-orders the queue per policy. A no-op for RR. For STR it
// performs a stable ascending selection sort by RemMs, preserving
// arrival order among equal keys (the scan only moves to a later
// candidate on a strict improvement, so it picks the first-seen
// process at the minimum RemMs, and moving it to the front shifts the
// processes it passes without reordering them).
func (q *Queue) Resort() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.policy != ShortestTimeRemain {
		return
	}
	q.resortLocked()
}

// Policy reports the queue's configured discipline.
func (q *Queue) Policy() Policy {
	return q.policy
}

// InsertBatch appends every process in procs and, under STR, resorts
// once — atomically with respect to Pop, so a batch never becomes
// visible to a dispatching engine half-inserted.
func (q *Queue) InsertBatch(procs []*process.Process) {
	if len(procs) == 0 {
		return
	}
	q.mu.Lock()
	for _, p := range procs {
		p.State = process.StateReady
		q.procs = append(q.procs, p)
	}
	if q.policy == ShortestTimeRemain {
		q.resortLocked()
	}
	q.mu.Unlock()
}

func (q *Queue) resortLocked() {
	n := len(q.procs)
	for i := 0; i < n-1; i++ {
		min := i
		for j := i + 1; j < n; j++ {
			if q.procs[j].RemMs < q.procs[min].RemMs {
				min = j
			}
		}
		if min != i {
			p := q.procs[min]
			copy(q.procs[i+1:min+1], q.procs[i:min])
			q.procs[i] = p
		}
	}
}
