// Package engine is the dispatch loop: it pops processes from the
// ready queue, runs their operations against the resource pools,
// memory allocator and clock, and honours preemption from the
// quantum timer (RR) or the batch loader (STR). It generalizes the
// teacher project's short-term scheduler goroutine — which pops from
// a ready slice, dispatches onto a pooled worker, and checks an
// interrupt channel between steps — into a single-executor loop
// driven by the two policies this simulator supports.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oswarriors/ossim/internal/cycletime"
	"github.com/oswarriors/ossim/internal/memstate"
	"github.com/oswarriors/ossim/internal/metadata"
	"github.com/oswarriors/ossim/internal/process"
	"github.com/oswarriors/ossim/internal/readyqueue"
	"github.com/oswarriors/ossim/internal/resource"
	"github.com/oswarriors/ossim/internal/trace"
	"github.com/oswarriors/ossim/pkg/log"
)

// Config is everything the engine needs to run one simulation.
type Config struct {
	MetadataPath string
	Table        *cycletime.Table
	Policy       readyqueue.Policy
	QuantumMs    int
	SystemMemKB  int
	BlockSizeKB  int
	Resources    ResourceCapacities
	Logger       *slog.Logger
}

// ResourceCapacities mirrors config.ResourceQuantities without the
// config package's import, keeping engine free of a dependency on
// the file-parsing layer.
type ResourceCapacities struct {
	HardDrive int
	Keyboard  int
	Scanner   int
	Monitor   int
	Projector int
}

// Engine owns the ready queue, resource pools, memory state and trace
// for one run, plus the preemption flags the timers in timers.go set.
type Engine struct {
	cfg   Config
	log   *slog.Logger
	queue *readyqueue.Queue
	pools map[string]*resource.Pool
	mem   *memstate.State
	trace *trace.Log

	rr  flag
	str flag
	arm armGate

	quantumStarted bool
	finishedMu     sync.Mutex
	finished       []*process.Process
}

// flag is a mutex-guarded boolean checked and cleared atomically.
type flag struct {
	mu sync.Mutex
	on bool
}

func (f *flag) set() {
	f.mu.Lock()
	f.on = true
	f.mu.Unlock()
}

// testAndClear reports whether the flag was set, clearing it either way.
func (f *flag) testAndClear() bool {
	f.mu.Lock()
	was := f.on
	f.on = false
	f.mu.Unlock()
	return was
}

// New builds an Engine from cfg. Resource pool prefixes follow the
// handle-name convention the trace format expects.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = log.BuildLogger("info")
	}
	e := &Engine{
		cfg:   cfg,
		log:   logger,
		queue: readyqueue.New(cfg.Policy),
		mem:   memstate.New(cfg.SystemMemKB, cfg.BlockSizeKB),
		trace: trace.NewLog(),
		pools: map[string]*resource.Pool{
			"HDD":  resource.NewPool("HDD", cfg.Resources.HardDrive),
			"KBRD": resource.NewPool("KBRD", cfg.Resources.Keyboard),
			"SCNR": resource.NewPool("SCNR", cfg.Resources.Scanner),
			"MNTR": resource.NewPool("MNTR", cfg.Resources.Monitor),
			"PROJ": resource.NewPool("PROJ", cfg.Resources.Projector),
		},
	}
	e.arm = newArmGate()
	return e
}

// Trace exposes the finished run's events; call only after Run returns.
func (e *Engine) Trace() []trace.Event {
	return e.trace.Events()
}

// Pools exposes the resource pools, keyed by handle prefix, for
// reporting peak concurrency after a run.
func (e *Engine) Pools() map[string]*resource.Pool {
	return e.pools
}

// FinishedProcesses returns every process that reached EXIT, in the
// order they finished.
func (e *Engine) FinishedProcesses() []*process.Process {
	e.finishedMu.Lock()
	defer e.finishedMu.Unlock()
	out := make([]*process.Process, len(e.finished))
	copy(out, e.finished)
	return out
}

// Run executes the simulation to completion: one initial metadata
// load, a 10-tick batch loader in the background, and the dispatch
// loop while the ready queue is non-empty. Run returns as soon as the
// queue is empty; processes that batch ticks add after that point are
// not dispatched.
func (e *Engine) Run() error {
	initial, err := metadata.Load(e.cfg.MetadataPath, e.cfg.Table, e.queue)
	if err != nil {
		return err
	}
	e.queue.InsertBatch(initial)
	e.log.Debug("initial batch loaded", log.IntAttr("count", len(initial)))

	loaderDone := make(chan struct{})
	go e.runBatchLoader(loaderDone)

	e.dispatchLoop()
	return nil
}

func (e *Engine) dispatchLoop() {
	for {
		p := e.queue.Pop()
		if p == nil {
			return
		}
		e.runProcess(p)
	}
}

func (e *Engine) runProcess(p *process.Process) {
	p.State = process.StateRunning
	if e.cfg.Policy == readyqueue.RoundRobin && !e.quantumStarted {
		e.quantumStarted = true
		go e.runQuantumTimer()
	}

	for !p.Done() {
		if e.cfg.Policy == readyqueue.RoundRobin {
			if e.rr.testAndClear() {
				e.preempt(p, "round robin")
				return
			}
			e.arm.signal()
		} else if e.cfg.Policy == readyqueue.ShortestTimeRemain {
			if e.str.testAndClear() {
				e.preempt(p, "STR")
				return
			}
		}
		e.executeOperation(p)
	}

	p.State = process.StateExit
	e.finishedMu.Lock()
	e.finished = append(e.finished, p)
	e.finishedMu.Unlock()
}

func (e *Engine) preempt(p *process.Process, which string) {
	p.State = process.StateReady
	e.queue.Insert(p)
	if e.cfg.Policy == readyqueue.ShortestTimeRemain {
		e.queue.Resort()
	}
	e.trace.Emit(fmt.Sprintf("Process %d", p.PID), fmt.Sprintf("Process interrupted by %s scheduling algorithm.", which))
}

func (e *Engine) executeOperation(p *process.Process) {
	op := p.Current()
	actor := fmt.Sprintf("Process %d", p.PID)
	decrementRem := e.cfg.Policy == readyqueue.ShortestTimeRemain

	switch op.Category {
	case process.CategoryAPP:
		if op.Descriptor == "begin" {
			e.trace.Emit("OS", fmt.Sprintf("preparing process %d", p.PID))
			e.trace.Emit("OS", fmt.Sprintf("starting process %d", p.PID))
		} else {
			e.trace.Emit("OS", fmt.Sprintf("End process %d", p.PID))
		}
	case process.CategoryCPU:
		e.trace.Emit(actor, "start processing action")
		e.sleepMs(op.Ms)
		e.trace.Emit(actor, "end processing action")
	case process.CategoryMEM:
		if op.Descriptor == "block" {
			e.trace.Emit(actor, "start memory blocking")
			e.sleepMs(op.Ms)
			e.trace.Emit(actor, "end memory blocking")
		} else {
			e.trace.Emit(actor, "allocating memory")
			e.sleepMs(op.Ms)
			addr := e.mem.Allocate()
			e.trace.Emit(actor, fmt.Sprintf("memory allocated at %s", memstate.FormatAddress(addr)))
		}
	case process.CategoryIN:
		e.runIO(p, op, "input")
	case process.CategoryOUT:
		e.runIO(p, op, "output")
	}

	p.Advance(decrementRem)
}

func (e *Engine) runIO(p *process.Process, op process.Operation, direction string) {
	actor := fmt.Sprintf("Process %d", p.PID)
	prefix := poolPrefix(op.Descriptor)
	pool := e.pools[prefix]

	handle := pool.Acquire()
	e.trace.Emit(actor, fmt.Sprintf("start %s %s on %s", op.Descriptor, direction, handle))
	e.sleepMs(op.Ms)
	e.trace.Emit(actor, fmt.Sprintf("end %s %s", op.Descriptor, direction))
	pool.Release(handle)
}

func poolPrefix(descriptor string) string {
	switch descriptor {
	case "hard drive":
		return "HDD"
	case "keyboard":
		return "KBRD"
	case "scanner":
		return "SCNR"
	case "monitor":
		return "MNTR"
	case "projector":
		return "PROJ"
	}
	return ""
}

func (e *Engine) sleepMs(ms int) {
	if ms <= 0 {
		return
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
