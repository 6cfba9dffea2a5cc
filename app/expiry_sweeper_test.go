package app

import (
	"sync"
	"testing"
	"time"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

type fakeRemover struct {
	mtx   sync.Mutex
	calls []time.Duration
	err   error
	swept chan struct{}
}

func (r *fakeRemover) RemoveExpired(olderThan time.Duration) ([]*externalapi.DomainHash, error) {
	r.mtx.Lock()
	r.calls = append(r.calls, olderThan)
	r.mtx.Unlock()

	select {
	case r.swept <- struct{}{}:
	default:
	}
	if r.err != nil {
		return nil, r.err
	}
	return []*externalapi.DomainHash{externalapi.NewZeroHash()}, nil
}

func (r *fakeRemover) callCount() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.calls)
}

func TestExpirySweeperRunsUntilStopped(t *testing.T) {
	remover := &fakeRemover{swept: make(chan struct{}, 1)}
	sweeper := newExpirySweeper(remover, time.Hour, time.Millisecond)
	sweeper.start()

	select {
	case <-remover.swept:
	case <-time.After(5 * time.Second):
		t.Fatalf("the sweeper never ran")
	}
	sweeper.stop()

	callsAfterStop := remover.callCount()
	time.Sleep(20 * time.Millisecond)
	if remover.callCount() != callsAfterStop {
		t.Fatalf("the sweeper kept running after stop")
	}
	remover.mtx.Lock()
	defer remover.mtx.Unlock()
	for _, olderThan := range remover.calls {
		if olderThan != time.Hour {
			t.Fatalf("expected the sweeper to pass its expiry, got %s", olderThan)
		}
	}
}

func TestExpirySweeperSurvivesErrors(t *testing.T) {
	remover := &fakeRemover{swept: make(chan struct{}, 1), err: errors.New("disk is gone")}
	sweeper := newExpirySweeper(remover, time.Minute, time.Millisecond)
	sweeper.start()
	defer sweeper.stop()

	for i := 0; i < 2; i++ {
		select {
		case <-remover.swept:
		case <-time.After(5 * time.Second):
			t.Fatalf("the sweeper stopped after a failed sweep")
		}
	}
}
