package consensus

import (
	"sync"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

// executionWorker runs the executions the pivot chain calls for, one at a
// time, on its own goroutine. Block intake only schedules runs. Runs that
// are scheduled while another is in progress are folded into the next one.
type executionWorker struct {
	execute func() ([]*externalapi.EpochExecutionResult, error)

	pendingLock sync.Mutex
	pending     []*externalapi.PendingExecution
	closed      bool

	wakeUp chan struct{}
	quit   chan struct{}
	wg     sync.WaitGroup
}

func newExecutionWorker(execute func() ([]*externalapi.EpochExecutionResult, error)) *executionWorker {
	return &executionWorker{
		execute: execute,
		wakeUp:  make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}
}

func (ew *executionWorker) start() {
	ew.wg.Add(1)
	spawn(func() {
		defer ew.wg.Done()

		for {
			select {
			case <-ew.quit:
				return
			case <-ew.wakeUp:
				ew.runPending()
			}
		}
	})
}

// schedule requests a run that starts after the call. It never blocks.
func (ew *executionWorker) schedule() *externalapi.PendingExecution {
	pending := externalapi.NewPendingExecution()

	ew.pendingLock.Lock()
	if ew.closed {
		ew.pendingLock.Unlock()
		pending.Complete(nil, externalapi.ErrConsensusClosed)
		return pending
	}
	ew.pending = append(ew.pending, pending)
	ew.pendingLock.Unlock()

	select {
	case ew.wakeUp <- struct{}{}:
	default:
	}
	return pending
}

func (ew *executionWorker) takePending() []*externalapi.PendingExecution {
	ew.pendingLock.Lock()
	defer ew.pendingLock.Unlock()

	pending := ew.pending
	ew.pending = nil
	return pending
}

func (ew *executionWorker) runPending() {
	waiters := ew.takePending()
	if len(waiters) == 0 {
		return
	}

	results, err := ew.execute()
	if err != nil {
		log.Errorf("Failed executing pending epochs: %+v", err)
	} else if len(results) > 0 {
		log.Debugf("Executed %d epochs for %d scheduled runs", len(results), len(waiters))
	}
	for _, waiter := range waiters {
		waiter.Complete(results, err)
	}
}

// stop waits for the run in progress to finish. Runs that didn't start
// complete with ErrConsensusClosed.
func (ew *executionWorker) stop() {
	ew.pendingLock.Lock()
	if ew.closed {
		ew.pendingLock.Unlock()
		return
	}
	ew.closed = true
	ew.pendingLock.Unlock()

	close(ew.quit)
	ew.wg.Wait()
	for _, waiter := range ew.takePending() {
		waiter.Complete(nil, externalapi.ErrConsensusClosed)
	}
}
