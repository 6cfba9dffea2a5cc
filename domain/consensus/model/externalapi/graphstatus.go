package externalapi

// GraphStatus is the position of a block in its intake lifecycle.
type GraphStatus byte

const (
	// StatusUnrequested is the zero value and is never stored.
	StatusUnrequested GraphStatus = iota

	// StatusRequested indicates that the block hash is known only as the
	// parent or referee of another block, and its header hasn't arrived yet.
	StatusRequested

	// StatusReceived indicates that the header arrived and passed validation
	// in isolation, but some of its dependencies are not yet graph-ready.
	StatusReceived

	// StatusPartialInvalid indicates that the block, or one of its
	// dependencies, failed validation. Such blocks stay in the graph for
	// diagnostics but never carry weight and never join an epoch.
	StatusPartialInvalid

	// StatusGraphReady indicates that the block and all of its past are valid
	// and present.
	StatusGraphReady
)

var graphStatusStrings = map[GraphStatus]string{
	StatusUnrequested:    "Unrequested",
	StatusRequested:      "Requested",
	StatusReceived:       "Received",
	StatusPartialInvalid: "PartialInvalid",
	StatusGraphReady:     "GraphReady",
}

func (gs GraphStatus) String() string {
	return graphStatusStrings[gs]
}

// BlockLocalStatus is the persisted per-block graph status together with the
// order in which the block was first inserted.
type BlockLocalStatus struct {
	Status         GraphStatus
	SequenceNumber uint64
}

// Clone returns a clone of BlockLocalStatus
func (bls *BlockLocalStatus) Clone() *BlockLocalStatus {
	return &BlockLocalStatus{
		Status:         bls.Status,
		SequenceNumber: bls.SequenceNumber,
	}
}
