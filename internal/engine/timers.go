package engine

import (
	"sync"
	"time"

	"github.com/oswarriors/ossim/internal/metadata"
	"github.com/oswarriors/ossim/internal/readyqueue"
	"github.com/oswarriors/ossim/pkg/log"
)

// armGate implements the quantum timer's "wait until the engine
// signals the start of an operation" handshake (§4.7's waitForOp
// flag) as a non-blocking wakeup: signal is a no-op while the timer
// is already counting down a quantum, and wakes it exactly once per
// arming cycle otherwise.
type armGate struct {
	mu    sync.Mutex
	armed bool
	wake  chan struct{}
}

func newArmGate() armGate {
	return armGate{armed: true, wake: make(chan struct{}, 1)}
}

// signal is called by the engine immediately before executing an
// operation under RR. It wakes the timer only if it is currently
// armed (waiting), matching the "set waitForOp = false" step of the
// policy table.
func (a *armGate) signal() {
	a.mu.Lock()
	if a.armed {
		a.armed = false
		select {
		case a.wake <- struct{}{}:
		default:
		}
	}
	a.mu.Unlock()
}

// rearm is called by the timer once a quantum has elapsed, returning
// it to the armed state so the next signal wakes it again.
func (a *armGate) rearm() {
	a.mu.Lock()
	a.armed = true
	a.mu.Unlock()
}

// runQuantumTimer is the RR preemption clock: Armed -> wait for a
// signal -> sleep one quantum -> set rrFlag -> Armed. It runs for the
// lifetime of the engine once started at the first dispatched
// operation.
func (e *Engine) runQuantumTimer() {
	quantum := time.Duration(e.cfg.QuantumMs) * time.Millisecond
	for {
		<-e.arm.wake
		time.Sleep(quantum)
		e.rr.set()
		e.arm.rearm()
	}
}

// runBatchLoader fires 10 times at 100ms intervals, re-reading the
// metadata file from the start each tick and appending whatever
// processes it finds to the ready queue. Under STR it also raises the
// preemption flag so the engine re-evaluates before its next operation.
// It closes done once the tenth tick has been processed.
func (e *Engine) runBatchLoader(done chan<- struct{}) {
	defer close(done)
	for tick := 0; tick < 10; tick++ {
		time.Sleep(100 * time.Millisecond)

		batch, err := metadata.Load(e.cfg.MetadataPath, e.cfg.Table, e.queue)
		if err != nil {
			e.log.Warn("batch load failed, skipping tick",
				log.IntAttr("tick", tick),
				log.ErrAttr(err))
			continue
		}
		if len(batch) == 0 {
			continue
		}
		e.queue.InsertBatch(batch)
		if e.cfg.Policy == readyqueue.ShortestTimeRemain {
			e.str.set()
		}
		e.log.Debug("batch tick loaded processes",
			log.IntAttr("tick", tick),
			log.IntAttr("count", len(batch)))
	}
}
