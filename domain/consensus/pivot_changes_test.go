package consensus

import (
	"testing"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/davecgh/go-spew/spew"
)

func hash(i byte) *externalapi.DomainHash {
	return externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{i})
}

func hashes(indices ...byte) []*externalapi.DomainHash {
	result := make([]*externalapi.DomainHash, len(indices))
	for i, index := range indices {
		result[i] = hash(index)
	}
	return result
}

func TestPivotChanges(t *testing.T) {
	tests := []struct {
		name            string
		updates         []*model.PivotUpdate
		expectedRemoved []*externalapi.DomainHash
		expectedAdded   []*externalapi.DomainHash
	}{
		{
			name: "no updates",
		},
		{
			name:          "extensions",
			updates:       []*model.PivotUpdate{{Added: hashes(1)}, {Added: hashes(2, 3)}},
			expectedAdded: hashes(1, 2, 3),
		},
		{
			name: "reorg of an added block",
			updates: []*model.PivotUpdate{
				{Added: hashes(1, 2)},
				{Removed: hashes(2), Added: hashes(3)},
			},
			expectedAdded: hashes(1, 3),
		},
		{
			name: "reorg below the added blocks",
			updates: []*model.PivotUpdate{
				{Removed: hashes(5), Added: hashes(1)},
				{Removed: hashes(4, 1), Added: hashes(2, 3)},
			},
			expectedRemoved: hashes(4, 5),
			expectedAdded:   hashes(2, 3),
		},
	}

	for _, test := range tests {
		changes := pivotChanges(test.updates)
		if !externalapi.HashesEqual(changes.Removed, test.expectedRemoved) ||
			!externalapi.HashesEqual(changes.Added, test.expectedAdded) {
			t.Fatalf("%s: unexpected changes %s", test.name, spew.Sdump(changes))
		}
	}
}
