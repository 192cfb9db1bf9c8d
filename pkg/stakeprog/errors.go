package stakeprog

import "errors"

// error values shared with the hosting runtime
var (
	ErrInvalidInstructionData   = errors.New("ErrInvalidInstructionData")
	ErrNotEnoughAccountKeys     = errors.New("ErrNotEnoughAccountKeys")
	ErrMissingAccount           = errors.New("ErrMissingAccount")
	ErrInvalidAccountOwner      = errors.New("ErrInvalidAccountOwner")
	ErrInvalidAccountData       = errors.New("ErrInvalidAccountData")
	ErrAccountDataTooSmall      = errors.New("ErrAccountDataTooSmall")
	ErrMissingRequiredSignature = errors.New("ErrMissingRequiredSignature")
	ErrInvalidArgument          = errors.New("ErrInvalidArgument")
	ErrInsufficientFunds        = errors.New("ErrInsufficientFunds")
	ErrArithmeticOverflow       = errors.New("ErrArithmeticOverflow")
	ErrReadonlyDataModified     = errors.New("ErrReadonlyDataModified")
	ErrIncorrectProgramId       = errors.New("ErrIncorrectProgramId")
	ErrUnsupportedSysvar        = errors.New("ErrUnsupportedSysvar")

	invalidEnumValue = errors.New("invalid enum value")
)

// pubkey derivation errors
var (
	PubkeyErrMaxSeedLengthExceeded = errors.New("PubkeyErrMaxSeedLengthExceeded")
	PubkeyErrIllegalOwner          = errors.New("PubkeyErrIllegalOwner")
)

// stake errors
var (
	StakeErrCustodianMissing                             = errors.New("StakeErrCustodianMissing")
	StakeErrCustodianSignatureMissing                    = errors.New("StakeErrCustodianSignatureMissing")
	StakeErrLockupInForce                                = errors.New("StakeErrLockupInForce")
	StakeErrInsufficientDelegation                       = errors.New("StakeErrInsufficientDelegation")
	StakeErrInsufficientStake                            = errors.New("StakeErrInsufficientStake")
	StakeErrAlreadyDeactivated                           = errors.New("StakeErrAlreadyDeactivated")
	StakeErrTooSoonToRedelegate                          = errors.New("StakeErrTooSoonToRedelegate")
	StakeErrMergeMismatch                                = errors.New("StakeErrMergeMismatch")
	StakeErrMergeTransientStake                          = errors.New("StakeErrMergeTransientStake")
	StakeErrVoteAddressMismatch                          = errors.New("StakeErrVoteAddressMismatch")
	StakeErrInsufficientReferenceVotes                   = errors.New("StakeErrInsufficientReferenceVotes")
	StakeErrMinimumDelinquentEpochsForDeactivationNotMet = errors.New("StakeErrMinimumDelinquentEpochsForDeactivationNotMet")
	StakeErrTooManySigners                               = errors.New("StakeErrTooManySigners")
	StakeErrRedelegateDisabled                           = errors.New("StakeErrRedelegateDisabled")
)
