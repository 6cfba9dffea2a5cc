package externalapi

// EpochState is the position of an epoch execution in its lifecycle.
type EpochState byte

const (
	// EpochStatePending means that the execution has not started yet
	EpochStatePending EpochState = iota
	// EpochStatePrefetching means that the accounts are being warmed
	EpochStatePrefetching
	// EpochStateExecuting means that transactions are being executed
	EpochStateExecuting
	// EpochStateCommitting means that results are being persisted
	EpochStateCommitting
	// EpochStateCanonical means that the results were persisted
	EpochStateCanonical
	// EpochStateDiscarded means that the results of a dry run were dropped
	EpochStateDiscarded
)

var epochStateStrings = map[EpochState]string{
	EpochStatePending:     "Pending",
	EpochStatePrefetching: "Prefetching",
	EpochStateExecuting:   "Executing",
	EpochStateCommitting:  "Committing",
	EpochStateCanonical:   "Canonical",
	EpochStateDiscarded:   "Discarded",
}

func (es EpochState) String() string {
	return epochStateStrings[es]
}

// EpochExecutionResult is the outcome of executing one epoch.
type EpochExecutionResult struct {
	EpochHash        *DomainHash
	EpochNumber      uint64
	StartBlockNumber uint64
	ExecutedBlocks   []*DomainHash
	SkippedBlocks    []*DomainHash

	StateRoot     *DomainHash
	ReceiptsRoot  *DomainHash
	LogsBloomHash *DomainHash

	IsLocalMain bool
	FinalState  EpochState

	// BlockReceipts and DebugTrace are not persisted as part of the result
	BlockReceipts []*BlockReceipts
	DebugTrace    []string
}

// NextBlockNumber returns the block number the following epoch starts at.
func (result *EpochExecutionResult) NextBlockNumber() uint64 {
	return result.StartBlockNumber + uint64(len(result.ExecutedBlocks))
}

// Clone returns a clone of the persisted part of EpochExecutionResult
func (result *EpochExecutionResult) Clone() *EpochExecutionResult {
	return &EpochExecutionResult{
		EpochHash:        result.EpochHash,
		EpochNumber:      result.EpochNumber,
		StartBlockNumber: result.StartBlockNumber,
		ExecutedBlocks:   CloneHashes(result.ExecutedBlocks),
		SkippedBlocks:    CloneHashes(result.SkippedBlocks),
		StateRoot:        result.StateRoot,
		ReceiptsRoot:     result.ReceiptsRoot,
		LogsBloomHash:    result.LogsBloomHash,
		IsLocalMain:      result.IsLocalMain,
		FinalState:       result.FinalState,
	}
}

// EpochExecutionContext is the persisted execution context of an epoch:
// which pivot block it ran under and from which parent state.
type EpochExecutionContext struct {
	EpochNumber     uint64
	ParentEpochHash *DomainHash
	MainBlockHash   *DomainHash
}

// RecomputeResult is returned by the debug replay of an epoch.
type RecomputeResult struct {
	EpochHash *DomainHash

	RecomputedStateRoot *DomainHash
	ConsensusStateRoot  *DomainHash

	RecomputedReceiptsRoot *DomainHash
	ConsensusReceiptsRoot  *DomainHash

	RecomputedLogsBloomHash *DomainHash
	ConsensusLogsBloomHash  *DomainHash

	DebugTrace []string
}

// Matches returns whether the replay reproduced the canonical commitments.
func (result *RecomputeResult) Matches() bool {
	return result.RecomputedStateRoot.Equal(result.ConsensusStateRoot) &&
		result.RecomputedReceiptsRoot.Equal(result.ConsensusReceiptsRoot) &&
		result.RecomputedLogsBloomHash.Equal(result.ConsensusLogsBloomHash)
}

// BlockInsertionResult describes what changed after a block was submitted.
type BlockInsertionResult struct {
	// NewlyReady are the blocks that became graph-ready, in topological order.
	NewlyReady []*DomainHash

	// PivotChanges lists the pivot blocks removed by a reorg (oldest first)
	// and the pivot blocks appended.
	PivotChanges *PivotChanges

	// Execution is the execution run the insertion scheduled. It is nil if
	// no block became ready.
	Execution *PendingExecution
}

// PendingExecution is an execution run that completes asynchronously.
type PendingExecution struct {
	done    chan struct{}
	results []*EpochExecutionResult
	err     error
}

// NewPendingExecution returns a PendingExecution that is not complete yet
func NewPendingExecution() *PendingExecution {
	return &PendingExecution{done: make(chan struct{})}
}

// Complete records the outcome of the run and releases its waiters. It
// must be called exactly once.
func (pe *PendingExecution) Complete(results []*EpochExecutionResult, err error) {
	pe.results = results
	pe.err = err
	close(pe.done)
}

// Done returns a channel that is closed once the run completes
func (pe *PendingExecution) Done() <-chan struct{} {
	return pe.done
}

// Wait blocks until the run completes and returns the epochs it executed.
// A nil PendingExecution returns immediately.
func (pe *PendingExecution) Wait() ([]*EpochExecutionResult, error) {
	if pe == nil {
		return nil, nil
	}
	<-pe.done
	return pe.results, pe.err
}

// PivotChanges is the delta between the previous and current pivot chain.
type PivotChanges struct {
	Removed []*DomainHash
	Added   []*DomainHash
}

// IsEmpty returns whether the pivot chain did not change
func (pc *PivotChanges) IsEmpty() bool {
	return len(pc.Removed) == 0 && len(pc.Added) == 0
}
