package outliercache

import (
	"sort"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
)

// OutlierSet is a read-only set of arena indices
type OutlierSet struct {
	members map[model.ArenaIndex]struct{}
}

// NewOutlierSet returns an OutlierSet owning members. The caller must not
// modify members afterwards.
func NewOutlierSet(members map[model.ArenaIndex]struct{}) OutlierSet {
	return OutlierSet{members: members}
}

// Len returns the number of members
func (os OutlierSet) Len() int {
	return len(os.members)
}

// Contains returns whether index is a member
func (os OutlierSet) Contains(index model.ArenaIndex) bool {
	_, ok := os.members[index]
	return ok
}

// ForEach calls f for every member, in no particular order
func (os OutlierSet) ForEach(f func(index model.ArenaIndex)) {
	for index := range os.members {
		f(index)
	}
}

// Sorted returns the members in ascending order
func (os OutlierSet) Sorted() []model.ArenaIndex {
	sorted := make([]model.ArenaIndex, 0, len(os.members))
	for index := range os.members {
		sorted = append(sorted, index)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}
