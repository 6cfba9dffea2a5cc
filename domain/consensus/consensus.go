package consensus

import (
	"math/big"
	"sync"
	"time"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/logger"
	"github.com/Hoosat-Oy/treegraphd/util/staging"
	"github.com/pkg/errors"
)

// consensus guards the graph with lock and the execution state with
// executionLock. Readers take them shared. A caller that needs both takes
// executionLock first, and only the execution worker and init do.
type consensus struct {
	lock            *sync.RWMutex
	executionLock   *sync.RWMutex
	databaseContext model.DBManager

	arena             model.GraphArena
	pivotSelector     model.PivotSelector
	difficultyManager model.DifficultyManager
	blockProcessor    model.BlockProcessor
	executionManager  model.ExecutionManager
	epochExecutor     model.EpochExecutor
	executionWorker   *executionWorker

	blockStore            model.BlockStore
	blockStatusStore      model.BlockStatusStore
	consensusStateStore   model.ConsensusStateStore
	stateStore            model.StateStore
	receiptStore          model.ReceiptStore
	transactionIndexStore model.TransactionIndexStore
	executionResultStore  model.ExecutionResultStore
}

// init rebuilds the in-memory graph from the database, or inserts the
// genesis into an empty one, and brings the executed chain in line with the
// pivot chain.
func (s *consensus) init(genesisBlock *externalapi.DomainBlock) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "consensus.init")
	defer onEnd()

	s.executionLock.Lock()
	defer s.executionLock.Unlock()
	s.lock.Lock()
	defer s.lock.Unlock()

	loaded, err := s.blockProcessor.LoadBlocks()
	if err != nil {
		return err
	}
	if loaded == 0 {
		log.Infof("Initializing an empty database with the genesis block")
		_, err := s.blockProcessor.ValidateAndInsertBlock(genesisBlock)
		if err != nil {
			return errors.Wrap(err, "failed inserting the genesis block")
		}
	}

	err = s.executionManager.LoadExecutedChain()
	if err != nil {
		return err
	}
	results, err := s.executionManager.ExecutePending()
	if err != nil {
		return err
	}
	if len(results) > 0 {
		log.Infof("Executed %d pending epochs", len(results))
	}
	return nil
}

// SubmitBlock validates and inserts block. If blocks became ready it
// schedules an execution run and returns without waiting for it. The run is
// available through the result's Execution.
//
// A block with missing dependencies is inserted anyway. The returned error
// then lists the missing hashes alongside a non-nil result.
func (s *consensus) SubmitBlock(block *externalapi.DomainBlock) (*externalapi.BlockInsertionResult, error) {
	s.lock.Lock()
	processingResult, insertionErr := s.blockProcessor.ValidateAndInsertBlock(block)
	if processingResult == nil {
		s.lock.Unlock()
		return nil, insertionErr
	}

	result := &externalapi.BlockInsertionResult{
		NewlyReady:   make([]*externalapi.DomainHash, len(processingResult.NewlyReady)),
		PivotChanges: pivotChanges(processingResult.PivotUpdates),
	}
	for i, index := range processingResult.NewlyReady {
		result.NewlyReady[i] = s.arena.Hash(index)
	}
	s.lock.Unlock()

	if len(processingResult.NewlyReady) > 0 {
		result.Execution = s.executionWorker.schedule()
	}
	return result, insertionErr
}

// executePending plans the execution the pivot chain calls for under a
// shared graph lock, then executes it with only executionLock held
func (s *consensus) executePending() ([]*externalapi.EpochExecutionResult, error) {
	s.executionLock.Lock()
	defer s.executionLock.Unlock()

	s.lock.RLock()
	plan, err := s.executionManager.PlanExecution()
	s.lock.RUnlock()
	if err != nil {
		return nil, err
	}
	return s.executionManager.Execute(plan)
}

func (s *consensus) Close() {
	s.executionWorker.stop()
}

// pivotChanges folds consecutive pivot updates into the net change between
// the first pivot chain and the last one
func pivotChanges(updates []*model.PivotUpdate) *externalapi.PivotChanges {
	changes := &externalapi.PivotChanges{}
	for _, update := range updates {
		removedCount := len(update.Removed)
		if removedCount <= len(changes.Added) {
			changes.Added = changes.Added[:len(changes.Added)-removedCount]
		} else {
			removedFromOriginal := removedCount - len(changes.Added)
			changes.Added = nil
			changes.Removed = append(externalapi.CloneHashes(update.Removed[:removedFromOriginal]), changes.Removed...)
		}
		changes.Added = append(changes.Added, update.Added...)
	}
	return changes
}

func (s *consensus) GetBlock(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stagingArea := model.NewStagingArea()
	exists, err := s.blockStore.HasBlock(s.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}
	block, err := s.blockStore.Block(s.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, false, err
	}
	return block, true, nil
}

func (s *consensus) GetBlockHeader(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	index, ok := s.arena.Index(blockHash)
	if ok && s.arena.Header(index) != nil {
		return s.arena.Header(index).Clone(), nil
	}
	return s.blockStore.BlockHeader(s.databaseContext, model.NewStagingArea(), blockHash)
}

// GetBlockStatus returns the graph status of blockHash. ok is false if the
// arena doesn't know the hash at all.
func (s *consensus) GetBlockStatus(blockHash *externalapi.DomainHash) (externalapi.GraphStatus, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	index, ok := s.arena.Index(blockHash)
	if !ok {
		return externalapi.StatusUnrequested, false
	}
	return s.arena.Status(index), true
}

func (s *consensus) PivotChain() []*externalapi.DomainHash {
	s.lock.RLock()
	defer s.lock.RUnlock()

	pivot := s.pivotSelector.PivotChain()
	hashes := make([]*externalapi.DomainHash, len(pivot))
	for i, index := range pivot {
		hashes[i] = s.arena.Hash(index)
	}
	return hashes
}

func (s *consensus) PivotTip() *externalapi.DomainHash {
	s.lock.RLock()
	defer s.lock.RUnlock()

	tip := s.pivotSelector.PivotTip()
	if tip == model.NoIndex {
		return nil
	}
	return s.arena.Hash(tip)
}

// EpochBlocks returns the blocks of an epoch in execution order, the pivot
// block last
func (s *consensus) EpochBlocks(epochNumber uint64) ([]*externalapi.DomainHash, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	members, err := s.pivotSelector.EpochMembers(epochNumber)
	if err != nil {
		return nil, err
	}
	hashes := make([]*externalapi.DomainHash, len(members))
	for i, index := range members {
		hashes[i] = s.arena.Hash(index)
	}
	return hashes, nil
}

func (s *consensus) EpochNumberOf(blockHash *externalapi.DomainHash) (uint64, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.epochNumberOf(blockHash)
}

func (s *consensus) epochNumberOf(blockHash *externalapi.DomainHash) (uint64, bool) {
	index, ok := s.arena.Index(blockHash)
	if !ok {
		return 0, false
	}
	return s.pivotSelector.EpochNumberOf(index)
}

func (s *consensus) Terminals() []*externalapi.DomainHash {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.arena.Terminals()
}

func (s *consensus) TargetDifficulty(pivotBlockHash *externalapi.DomainHash) (*big.Int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.difficultyManager.TargetDifficulty(pivotBlockHash)
}

// NextBlockDifficulty returns the difficulty a block built on top of
// parentHash must declare
func (s *consensus) NextBlockDifficulty(parentHash *externalapi.DomainHash) (*big.Int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.difficultyManager.ExpectedDifficulty(parentHash)
}

// GetEpochExecutionResult returns the persisted execution result of an
// epoch. A result produced recently enough to still be cached is returned
// together with its receipts.
func (s *consensus) GetEpochExecutionResult(epochHash *externalapi.DomainHash) (*externalapi.EpochExecutionResult, error) {
	s.executionLock.RLock()
	defer s.executionLock.RUnlock()

	stored, err := s.executionResultStore.Result(s.databaseContext, model.NewStagingArea(), epochHash)
	if err != nil {
		return nil, err
	}
	recent, ok := s.epochExecutor.RecentResult(epochHash)
	if ok && recent.IsLocalMain == stored.IsLocalMain && recent.StateRoot.Equal(stored.StateRoot) {
		return recent, nil
	}
	return stored, nil
}

// GetBlockReceipts returns the receipts of blockHash as executed in the
// epoch it currently belongs to
func (s *consensus) GetBlockReceipts(blockHash *externalapi.DomainHash) (*externalapi.BlockReceipts, error) {
	s.lock.RLock()
	epochNumber, ok := s.epochNumberOf(blockHash)
	var epochHash *externalapi.DomainHash
	if ok {
		pivot := s.pivotSelector.PivotChain()
		epochHash = s.arena.Hash(pivot[epochNumber])
	}
	s.lock.RUnlock()
	if !ok {
		return nil, errors.Wrapf(database.ErrNotFound, "block %s is not in any epoch", blockHash)
	}

	s.executionLock.RLock()
	defer s.executionLock.RUnlock()

	return s.receiptStore.Get(s.databaseContext, model.NewStagingArea(), blockHash, epochHash)
}

func (s *consensus) GetTransactionLocation(transactionID *externalapi.DomainTransactionID) (
	*externalapi.TransactionLocation, bool, error) {

	s.executionLock.RLock()
	defer s.executionLock.RUnlock()

	return s.transactionIndexStore.Get(s.databaseContext, model.NewStagingArea(), transactionID)
}

// ReadState reads a key of the state the last executed epoch produced
func (s *consensus) ReadState(key []byte) ([]byte, bool, error) {
	s.executionLock.RLock()
	defer s.executionLock.RUnlock()

	return s.stateStore.ReadState(s.databaseContext, model.NewStagingArea(), key)
}

// RecomputeEpoch replays an executed epoch without side effects and
// compares it with its committed execution
func (s *consensus) RecomputeEpoch(epochHash *externalapi.DomainHash) (*externalapi.RecomputeResult, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "RecomputeEpoch")
	defer onEnd()

	s.executionLock.RLock()
	defer s.executionLock.RUnlock()

	return s.executionManager.RecomputeEpoch(epochHash)
}

// RemoveExpired drops blocks that stayed short of graph-ready for longer
// than olderThan, together with their persisted records
func (s *consensus) RemoveExpired(olderThan time.Duration) ([]*externalapi.DomainHash, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	genesis := s.arena.Genesis()
	removed := s.arena.RemoveExpired(olderThan, func(index model.ArenaIndex) bool {
		return index == genesis
	})
	if len(removed) == 0 {
		return nil, nil
	}

	stagingArea := model.NewStagingArea()
	for _, blockHash := range removed {
		hasBlock, err := s.blockStore.HasBlock(s.databaseContext, stagingArea, blockHash)
		if err != nil {
			return nil, err
		}
		if !hasBlock {
			continue
		}
		s.blockStore.Delete(stagingArea, blockHash)
		s.blockStatusStore.Delete(stagingArea, blockHash)
	}
	s.consensusStateStore.StageTerminals(stagingArea, s.arena.Terminals())
	err := staging.CommitAllChanges(s.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	log.Infof("Removed %d expired blocks", len(removed))
	return removed, nil
}
