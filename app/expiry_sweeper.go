package app

import (
	"sync"
	"time"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

type expiredBlockRemover interface {
	RemoveExpired(olderThan time.Duration) ([]*externalapi.DomainHash, error)
}

// expirySweeper periodically drops blocks that never became graph-ready
type expirySweeper struct {
	remover  expiredBlockRemover
	expiry   time.Duration
	interval time.Duration

	quit chan struct{}
	wg   sync.WaitGroup
}

func newExpirySweeper(remover expiredBlockRemover, expiry time.Duration, interval time.Duration) *expirySweeper {
	return &expirySweeper{
		remover:  remover,
		expiry:   expiry,
		interval: interval,
		quit:     make(chan struct{}),
	}
}

func (s *expirySweeper) start() {
	s.wg.Add(1)
	spawn(func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.quit:
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	})
}

func (s *expirySweeper) sweep() {
	removed, err := s.remover.RemoveExpired(s.expiry)
	if err != nil {
		log.Errorf("Failed removing expired blocks: %+v", err)
		return
	}
	if len(removed) > 0 {
		log.Debugf("Swept %d blocks older than %s", len(removed), s.expiry)
	}
}

func (s *expirySweeper) stop() {
	close(s.quit)
	s.wg.Wait()
}
