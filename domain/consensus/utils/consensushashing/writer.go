package consensushashing

import (
	"encoding/binary"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/hashes"
)

// elementWriter writes fixed-layout little-endian elements into a hash writer
type elementWriter struct {
	hashes.HashWriter
	scratch [8]byte
}

func (w *elementWriter) writeUint8(value uint8) {
	w.scratch[0] = value
	w.InfallibleWrite(w.scratch[:1])
}

func (w *elementWriter) writeUint16(value uint16) {
	binary.LittleEndian.PutUint16(w.scratch[:2], value)
	w.InfallibleWrite(w.scratch[:2])
}

func (w *elementWriter) writeUint64(value uint64) {
	binary.LittleEndian.PutUint64(w.scratch[:], value)
	w.InfallibleWrite(w.scratch[:])
}

func (w *elementWriter) writeVarBytes(data []byte) {
	w.writeUint64(uint64(len(data)))
	w.InfallibleWrite(data)
}

// writeOptionalHash writes a presence flag followed by the hash, if any
func (w *elementWriter) writeOptionalHash(hash *externalapi.DomainHash) {
	if hash == nil {
		w.writeUint8(0)
		return
	}
	w.writeUint8(1)
	w.InfallibleWrite(hash.ByteSlice())
}
