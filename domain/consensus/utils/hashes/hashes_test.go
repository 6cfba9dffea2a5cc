package hashes

import (
	"testing"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

func TestDomainSeparation(t *testing.T) {
	data := []byte("tree-graph")

	blockWriter := NewBlockHashWriter()
	blockWriter.InfallibleWrite(data)
	transactionWriter := NewTransactionIDWriter()
	transactionWriter.InfallibleWrite(data)

	if blockWriter.Finalize().Equal(transactionWriter.Finalize()) {
		t.Fatalf("hashes of different domains are equal")
	}

	again := NewBlockHashWriter()
	again.InfallibleWrite(data)
	first := NewBlockHashWriter()
	first.InfallibleWrite(data)
	if !again.Finalize().Equal(first.Finalize()) {
		t.Fatalf("hashing is not deterministic")
	}
}

func TestSortHashes(t *testing.T) {
	hashes := []*externalapi.DomainHash{
		externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{3}),
		externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1}),
		externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2}),
	}
	SortHashes(hashes)
	for i := 1; i < len(hashes); i++ {
		if !Less(hashes[i-1], hashes[i]) {
			t.Fatalf("hashes are not sorted: %v", hashes)
		}
	}
}
