package model

// ArenaIndex addresses a node of the consensus graph arena.
type ArenaIndex uint32

// NoIndex is the parent index of the genesis node.
const NoIndex ArenaIndex = ^ArenaIndex(0)
