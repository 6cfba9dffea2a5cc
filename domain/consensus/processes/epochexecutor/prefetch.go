package epochexecutor

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/accounts"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

type accountKey struct {
	space   externalapi.TransactionSpace
	address common.Address
}

// prefetch warms the state cache with every account the epoch's
// transactions touch. The reads themselves are thrown away.
func (ex *epochExecution) prefetch() error {
	keys := make(map[accountKey]struct{})
	for _, block := range ex.task.Blocks {
		keys[accountKey{space: externalapi.SpaceNative, address: block.Block.Header.Author}] = struct{}{}
		for _, transaction := range block.Block.Transactions {
			keys[accountKey{space: transaction.Space, address: transaction.From}] = struct{}{}
			if transaction.To != nil {
				keys[accountKey{space: transaction.Space, address: *transaction.To}] = struct{}{}
			}
		}
	}
	if len(keys) == 0 {
		return nil
	}

	group := errgroup.Group{}
	group.SetLimit(ex.prefetchWorkers)
	for key := range keys {
		key := key
		group.Go(func() error {
			_, _, err := ex.base.ReadState(accounts.AccountKey(key.space, key.address))
			return err
		})
	}
	err := group.Wait()
	if err != nil {
		return err
	}
	log.Tracef("Prefetched %d accounts for epoch %s", len(keys), ex.task.EpochHash)
	return nil
}
