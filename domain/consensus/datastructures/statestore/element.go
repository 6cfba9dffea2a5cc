package statestore

import "google.golang.org/protobuf/encoding/protowire"

// stateElement is the multiset element of one key-value pair. The key is
// length-prefixed so that no two distinct pairs share an encoding.
func stateElement(key, value []byte) []byte {
	element := make([]byte, 0, protowire.SizeVarint(uint64(len(key)))+len(key)+len(value))
	element = protowire.AppendVarint(element, uint64(len(key)))
	element = append(element, key...)
	return append(element, value...)
}
