package hashes

import (
	"bytes"
	"sort"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

// cmp compares two hashes and returns:
//
//	-1 if a <  b
//	 0 if a == b
//	+1 if a >  b
func cmp(a, b *externalapi.DomainHash) int {
	return bytes.Compare(a.ByteSlice(), b.ByteSlice())
}

// Less returns true iff hash a is less than hash b
func Less(a, b *externalapi.DomainHash) bool {
	return cmp(a, b) < 0
}

// SortHashes sorts hashes in ascending order in place
func SortHashes(hashes []*externalapi.DomainHash) {
	sort.Slice(hashes, func(i, j int) bool {
		return Less(hashes[i], hashes[j])
	})
}
