package model

import "github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"

// Multiset is used to hash a set of elements in an order-independent way
type Multiset interface {
	Add(data []byte)
	Remove(data []byte)
	Hash() *externalapi.DomainHash
	Serialize() []byte
	Clone() Multiset
}
