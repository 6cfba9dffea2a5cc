package consensushashing

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/hashes"
)

// BlockHash returns the given block's hash
func BlockHash(block *externalapi.DomainBlock) *externalapi.DomainHash {
	return HeaderHash(block.Header)
}

// HeaderHash returns the given header's hash
func HeaderHash(header *externalapi.DomainBlockHeader) *externalapi.DomainHash {
	writer := &elementWriter{HashWriter: hashes.NewBlockHashWriter()}
	serializeHeader(writer, header)
	return writer.Finalize()
}

func serializeHeader(w *elementWriter, header *externalapi.DomainBlockHeader) {
	w.writeUint16(header.Version)
	w.writeOptionalHash(header.ParentHash)
	w.writeUint64(uint64(len(header.RefereeHashes)))
	for _, referee := range header.RefereeHashes {
		w.InfallibleWrite(referee.ByteSlice())
	}
	w.writeUint64(header.Height)
	w.writeUint64(uint64(header.TimeInMilliseconds))
	w.InfallibleWrite(header.Author.Bytes())
	var difficulty []byte
	if header.Difficulty != nil {
		difficulty = header.Difficulty.Bytes()
	}
	w.writeVarBytes(difficulty)
	w.writeOptionalHash(header.TransactionsRoot)
	w.writeUint64(header.GasLimit)
	w.writeUint64(header.Nonce)
}
