package merkle

import (
	"math"
	"math/big"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/consensushashing"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/hashes"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// nextPowerOfTwo returns the next highest power of two from a given number if
// it is not already a power of two. This is a helper function used during the
// calculation of a merkle tree.
func nextPowerOfTwo(n int) int {
	// Return the number if it's already a power of 2.
	if n&(n-1) == 0 {
		return n
	}

	// Figure out and return the next power of two.
	exponent := uint(math.Log2(float64(n))) + 1
	return 1 << exponent // 2^exponent
}

// hashMerkleBranches takes two hashes, treated as the left and right tree
// nodes, and returns the hash of their concatenation. This is a helper
// function used to aid in the generation of a merkle tree.
func hashMerkleBranches(left, right *externalapi.DomainHash) *externalapi.DomainHash {
	w := hashes.NewMerkleBranchHashWriter()

	w.InfallibleWrite(left.ByteSlice())
	w.InfallibleWrite(right.ByteSlice())

	return w.Finalize()
}

// Root creates a merkle tree from the given leaves and returns its root.
// The root of an empty leaf list is the zero hash.
func Root(leaves []*externalapi.DomainHash) *externalapi.DomainHash {
	if len(leaves) == 0 {
		return externalapi.NewZeroHash()
	}

	// Calculate how many entries are required to hold the binary merkle
	// tree as a linear array and create an array of that size.
	nextPoT := nextPowerOfTwo(len(leaves))
	arraySize := nextPoT*2 - 1
	merkles := make([]*externalapi.DomainHash, arraySize)

	copy(merkles, leaves)

	// Start the array offset after the last leaf and adjusted to the
	// next power of two.
	offset := nextPoT
	for i := 0; i < arraySize-1; i += 2 {
		switch {
		// When there is no left child node, the parent is nil too.
		case merkles[i] == nil:
			merkles[offset] = nil

		// When there is no right child, the parent is generated by
		// hashing the concatenation of the left child with itself.
		case merkles[i+1] == nil:
			merkles[offset] = hashMerkleBranches(merkles[i], merkles[i])

		// The normal case sets the parent node to the hash of the
		// concatentation of the left and right children.
		default:
			merkles[offset] = hashMerkleBranches(merkles[i], merkles[i+1])
		}
		offset++
	}

	return merkles[len(merkles)-1]
}

// CalculateTransactionsRoot calculates the merkle root of a tree consisting
// of the given transaction IDs.
func CalculateTransactionsRoot(transactions []*externalapi.DomainTransaction) *externalapi.DomainHash {
	leaves := make([]*externalapi.DomainHash, len(transactions))
	for i, tx := range transactions {
		leaves[i] = (*externalapi.DomainHash)(consensushashing.TransactionID(tx))
	}
	return Root(leaves)
}

type logRLP struct {
	Space   uint8
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

type receiptRLP struct {
	TransactionID      common.Hash
	Status             uint8
	GasUsed            uint64
	AccumulatedGasUsed uint64
	GasFee             *big.Int
	Bloom              []byte
	Logs               []logRLP
	Phantoms           []common.Hash
}

// ReceiptHash returns the leaf hash committing to a single receipt
func ReceiptHash(receipt *externalapi.Receipt) *externalapi.DomainHash {
	encoded := receiptRLP{
		TransactionID:      common.Hash(*(*externalapi.DomainHash)(receipt.TransactionID).ByteArray()),
		Status:             uint8(receipt.Status),
		GasUsed:            receipt.GasUsed,
		AccumulatedGasUsed: receipt.AccumulatedGasUsed,
		GasFee:             new(big.Int),
		Bloom:              receipt.LogsBloom.Bytes(),
		Logs:               make([]logRLP, len(receipt.Logs)),
		Phantoms:           make([]common.Hash, len(receipt.PhantomTransactions)),
	}
	if receipt.GasFee != nil {
		encoded.GasFee = receipt.GasFee.ToBig()
	}
	for i, log := range receipt.Logs {
		encoded.Logs[i] = logRLP{Space: uint8(log.Space), Address: log.Address, Topics: log.Topics, Data: log.Data}
	}
	for i, phantom := range receipt.PhantomTransactions {
		encoded.Phantoms[i] = phantom.Hash
	}

	bytes, err := rlp.EncodeToBytes(&encoded)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. receipts are always RLP-encodable"))
	}
	w := hashes.NewReceiptHashWriter()
	w.InfallibleWrite(bytes)
	return w.Finalize()
}

// CalculateBlockReceiptsRoot calculates the merkle root of the receipts of a
// single block
func CalculateBlockReceiptsRoot(receipts []*externalapi.Receipt) *externalapi.DomainHash {
	leaves := make([]*externalapi.DomainHash, len(receipts))
	for i, receipt := range receipts {
		leaves[i] = ReceiptHash(receipt)
	}
	return Root(leaves)
}

// CalculateEpochReceiptsRoot calculates the merkle root over the block
// receipts roots of every executed block of an epoch, in execution order
func CalculateEpochReceiptsRoot(blockReceipts []*externalapi.BlockReceipts) *externalapi.DomainHash {
	leaves := make([]*externalapi.DomainHash, len(blockReceipts))
	for i, receipts := range blockReceipts {
		leaves[i] = CalculateBlockReceiptsRoot(receipts.Receipts)
	}
	return Root(leaves)
}

// CalculateLogsBloom returns the union of the blooms of all receipts
func CalculateLogsBloom(blockReceipts []*externalapi.BlockReceipts) types.Bloom {
	var bloom types.Bloom
	for _, receipts := range blockReceipts {
		for _, receipt := range receipts.Receipts {
			for i := range bloom {
				bloom[i] |= receipt.LogsBloom[i]
			}
		}
	}
	return bloom
}

// LogsBloomHash returns the commitment to a logs bloom
func LogsBloomHash(bloom types.Bloom) *externalapi.DomainHash {
	w := hashes.NewBloomHashWriter()
	w.InfallibleWrite(bloom.Bytes())
	return w.Finalize()
}

// LogBloom returns the bloom of a list of logs
func LogBloom(logs []*externalapi.Log) types.Bloom {
	var bloom types.Bloom
	for _, log := range logs {
		bloom.Add(log.Address.Bytes())
		for _, topic := range log.Topics {
			bloom.Add(topic.Bytes())
		}
	}
	return bloom
}
