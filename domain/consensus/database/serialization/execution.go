package serialization

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	resultEpochHashField        protowire.Number = 1
	resultEpochNumberField      protowire.Number = 2
	resultStartBlockNumberField protowire.Number = 3
	resultExecutedBlockField    protowire.Number = 4
	resultSkippedBlockField     protowire.Number = 5
	resultStateRootField        protowire.Number = 6
	resultReceiptsRootField     protowire.Number = 7
	resultLogsBloomHashField    protowire.Number = 8
	resultIsLocalMainField      protowire.Number = 9
	resultFinalStateField       protowire.Number = 10

	contextEpochNumberField     protowire.Number = 1
	contextParentEpochHashField protowire.Number = 2
	contextMainBlockHashField   protowire.Number = 3
)

// SerializeEpochExecutionResult encodes the persisted part of an execution result
func SerializeEpochExecutionResult(result *externalapi.EpochExecutionResult) []byte {
	w := &recordWriter{}
	w.hash(resultEpochHashField, result.EpochHash)
	w.varint(resultEpochNumberField, result.EpochNumber)
	w.varint(resultStartBlockNumberField, result.StartBlockNumber)
	w.hashes(resultExecutedBlockField, result.ExecutedBlocks)
	w.hashes(resultSkippedBlockField, result.SkippedBlocks)
	w.hash(resultStateRootField, result.StateRoot)
	w.hash(resultReceiptsRootField, result.ReceiptsRoot)
	w.hash(resultLogsBloomHashField, result.LogsBloomHash)
	w.bool(resultIsLocalMainField, result.IsLocalMain)
	w.varint(resultFinalStateField, uint64(result.FinalState))
	return w.buf
}

// DeserializeEpochExecutionResult decodes a result serialized by SerializeEpochExecutionResult
func DeserializeEpochExecutionResult(data []byte) (*externalapi.EpochExecutionResult, error) {
	result := &externalapi.EpochExecutionResult{
		ExecutedBlocks: []*externalapi.DomainHash{},
		SkippedBlocks:  []*externalapi.DomainHash{},
	}
	err := readRecord(data, func(field protowire.Number, _ protowire.Type, varint uint64, bytes []byte) error {
		var err error
		var hash *externalapi.DomainHash
		switch field {
		case resultEpochHashField:
			result.EpochHash, err = toHash(bytes)
		case resultEpochNumberField:
			result.EpochNumber = varint
		case resultStartBlockNumberField:
			result.StartBlockNumber = varint
		case resultExecutedBlockField:
			hash, err = toHash(bytes)
			result.ExecutedBlocks = append(result.ExecutedBlocks, hash)
		case resultSkippedBlockField:
			hash, err = toHash(bytes)
			result.SkippedBlocks = append(result.SkippedBlocks, hash)
		case resultStateRootField:
			result.StateRoot, err = toHash(bytes)
		case resultReceiptsRootField:
			result.ReceiptsRoot, err = toHash(bytes)
		case resultLogsBloomHashField:
			result.LogsBloomHash, err = toHash(bytes)
		case resultIsLocalMainField:
			result.IsLocalMain = protowire.DecodeBool(varint)
		case resultFinalStateField:
			result.FinalState = externalapi.EpochState(varint)
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to deserialize epoch execution result")
	}
	return result, nil
}

// SerializeEpochExecutionContext encodes an epoch execution context
func SerializeEpochExecutionContext(context *externalapi.EpochExecutionContext) []byte {
	w := &recordWriter{}
	w.varint(contextEpochNumberField, context.EpochNumber)
	w.hash(contextParentEpochHashField, context.ParentEpochHash)
	w.hash(contextMainBlockHashField, context.MainBlockHash)
	return w.buf
}

// DeserializeEpochExecutionContext decodes a context serialized by SerializeEpochExecutionContext
func DeserializeEpochExecutionContext(data []byte) (*externalapi.EpochExecutionContext, error) {
	context := &externalapi.EpochExecutionContext{}
	err := readRecord(data, func(field protowire.Number, _ protowire.Type, varint uint64, bytes []byte) error {
		var err error
		switch field {
		case contextEpochNumberField:
			context.EpochNumber = varint
		case contextParentEpochHashField:
			context.ParentEpochHash, err = toHash(bytes)
		case contextMainBlockHashField:
			context.MainBlockHash, err = toHash(bytes)
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to deserialize epoch execution context")
	}
	return context, nil
}
