package hashes

import (
	"hash"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"lukechampine.com/blake3"
)

// HashWriter is used to incrementally hash data without concatenating all of the data to a single buffer
// it exposes an io.Writer api and a Finalize function to get the resulting hash.
// The used hash function is blake3, keyed per domain.
// This can only be created via one of the domain separated constructors
type HashWriter struct {
	hash.Hash
}

// InfallibleWrite is just like write but doesn't return anything
func (h HashWriter) InfallibleWrite(p []byte) {
	// This write can never return an error, this is part of the hash.Hash interface contract.
	_, err := h.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. hash.Hash interface promises to not return errors."))
	}
}

// Finalize returns the resulting hash
func (h HashWriter) Finalize() *externalapi.DomainHash {
	var sum [externalapi.DomainHashSize]byte
	copy(sum[:], h.Sum(nil))
	return externalapi.NewDomainHashFromByteArray(&sum)
}

func newHashWriter(domain string) HashWriter {
	var key [32]byte
	copy(key[:], domain)
	return HashWriter{blake3.New(externalapi.DomainHashSize, key[:])}
}

// NewBlockHashWriter returns a new HashWriter used for block hashes
func NewBlockHashWriter() HashWriter {
	return newHashWriter(blockDomain)
}

// NewTransactionIDWriter returns a new HashWriter used for transaction IDs
func NewTransactionIDWriter() HashWriter {
	return newHashWriter(transactionIDDomain)
}

// NewMerkleBranchHashWriter returns a new HashWriter used for merkle tree branches
func NewMerkleBranchHashWriter() HashWriter {
	return newHashWriter(merkleBranchDomain)
}

// NewReceiptHashWriter returns a new HashWriter used for receipt leaves
func NewReceiptHashWriter() HashWriter {
	return newHashWriter(receiptDomain)
}

// NewPoWHashWriter returns a new HashWriter used by the proof-of-work function
func NewPoWHashWriter() HashWriter {
	return newHashWriter(proofOfWorkDomain)
}

// NewBloomHashWriter returns a new HashWriter used for logs bloom commitments
func NewBloomHashWriter() HashWriter {
	return newHashWriter(bloomDomain)
}
