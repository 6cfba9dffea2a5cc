package ruleerrors

import (
	"fmt"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrDuplicateBlock indicates a block with the same hash already
	// exists.
	ErrDuplicateBlock = newRuleError("ErrDuplicateBlock")

	// ErrMissingParents indicates that the parent or some of the referees
	// of the block are not known yet.
	ErrMissingParents = newRuleError("ErrMissingParents")

	// ErrInvalidAncestor indicates that the parent or one of the referees
	// of the block is PartialInvalid.
	ErrInvalidAncestor = newRuleError("ErrInvalidAncestor")

	// ErrUnexpectedGenesis indicates that a parentless block other than the
	// configured genesis was submitted.
	ErrUnexpectedGenesis = newRuleError("ErrUnexpectedGenesis")

	// ErrTooManyReferees indicates that the block references more blocks
	// than allowed.
	ErrTooManyReferees = newRuleError("ErrTooManyReferees")

	// ErrDuplicateReferee indicates that a referee hash appears more than
	// once.
	ErrDuplicateReferee = newRuleError("ErrDuplicateReferee")

	// ErrParentIsReferee indicates that the parent hash also appears among
	// the referees.
	ErrParentIsReferee = newRuleError("ErrParentIsReferee")

	// ErrHashCollision indicates that two distinct blocks share a hash.
	ErrHashCollision = newRuleError("ErrHashCollision")

	// ErrWrongParentHeight indicates that the declared height is not the
	// height of the parent plus one.
	ErrWrongParentHeight = newRuleError("ErrWrongParentHeight")

	// ErrTimeTooNew indicates that the block timestamp is too much in the future.
	ErrTimeTooNew = newRuleError("ErrTimeTooNew")

	// ErrBadDifficulty indicates that the declared difficulty does not
	// match the target difficulty computed for the block's height.
	ErrBadDifficulty = newRuleError("ErrBadDifficulty")

	// ErrInvalidPoW indicates that the block proof-of-work is invalid.
	ErrInvalidPoW = newRuleError("ErrInvalidPoW")

	// ErrBadMerkleRoot indicates the calculated merkle root does not match
	// the expected value.
	ErrBadMerkleRoot = newRuleError("ErrBadMerkleRoot")

	// ErrBlockGasLimitExceeded indicates that the transactions of the block
	// declare more gas than the block's gas limit.
	ErrBlockGasLimitExceeded = newRuleError("ErrBlockGasLimitExceeded")

	// ErrNilDifficulty indicates that the header carries no difficulty.
	ErrNilDifficulty = newRuleError("ErrNilDifficulty")

	// ErrUnknownTransactionSpace indicates that a transaction names a space
	// other than native or EVM.
	ErrUnknownTransactionSpace = newRuleError("ErrUnknownTransactionSpace")

	// ErrTransactionMissingAmounts indicates that a transaction carries no
	// value or no gas price.
	ErrTransactionMissingAmounts = newRuleError("ErrTransactionMissingAmounts")

	// ErrTransactionDataTooLarge indicates that the data of a transaction
	// exceeds the maximum size.
	ErrTransactionDataTooLarge = newRuleError("ErrTransactionDataTooLarge")

	// ErrTransactionGasLimitTooHigh indicates that a single transaction
	// declares more gas than a block may hold.
	ErrTransactionGasLimitTooHigh = newRuleError("ErrTransactionGasLimitTooHigh")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block failed due to one of the many validation
// rules. The caller can use type assertions to determine if a failure was
// specifically due to a rule violation.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// IsRuleError returns whether err is, or wraps, a RuleError
func IsRuleError(err error) bool {
	var ruleError RuleError
	return errors.As(err, &ruleError)
}

// MissingDependenciesError lists the dependencies of an inserted block
// that the node has not seen yet. The block itself was still inserted.
type MissingDependenciesError struct {
	MissingHashes []*externalapi.DomainHash
}

func (e MissingDependenciesError) Error() string {
	return fmt.Sprintf("missing the following dependency hashes: %v", e.MissingHashes)
}

// NewErrMissingParents creates a new ErrMissingParents error wrapping the
// list of missing dependencies
func NewErrMissingParents(missingHashes []*externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message: "ErrMissingParents",
		inner:   MissingDependenciesError{MissingHashes: missingHashes},
	})
}

// Is matches any error created by NewErrMissingParents against ErrMissingParents
func (e RuleError) Is(target error) bool {
	targetRuleError, ok := target.(RuleError)
	if !ok {
		return false
	}
	return e.message == targetRuleError.message
}

// MissingDependencies extracts the missing hashes from an error created by
// NewErrMissingParents. ok is false for any other error.
func MissingDependencies(err error) (missingHashes []*externalapi.DomainHash, ok bool) {
	var missingError MissingDependenciesError
	if !errors.As(err, &missingError) {
		return nil, false
	}
	return missingError.MissingHashes, true
}
