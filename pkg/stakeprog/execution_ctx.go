package stakeprog

import (
	"github.com/gagliardetto/solana-go"
	"go.stakewheel.io/stakewheel/pkg/accounts"
	"go.stakewheel.io/stakewheel/pkg/features"
)

// MaximumSigners caps how many signer pubkeys a single instruction may carry.
const MaximumSigners = 32

// ExecutionCtx is everything the hosting runtime hands the program for one
// instruction: the global account store (for sysvars), the instruction's
// account list, the active feature set, and a slot for return data.
type ExecutionCtx struct {
	Accounts      accounts.Accounts
	InstrAccounts []*BorrowedAccount
	Features      features.Features
	ReturnData    []byte
}

func (execCtx *ExecutionCtx) InstructionAccount(idx int) (*BorrowedAccount, error) {
	if idx >= len(execCtx.InstrAccounts) {
		return nil, ErrNotEnoughAccountKeys
	}
	return execCtx.InstrAccounts[idx], nil
}

func (execCtx *ExecutionCtx) CheckNumOfInstructionAccounts(n int) error {
	if len(execCtx.InstrAccounts) < n {
		return ErrNotEnoughAccountKeys
	}
	return nil
}

func (execCtx *ExecutionCtx) SetReturnData(data []byte) {
	execCtx.ReturnData = data
}

func (execCtx *ExecutionCtx) collectSigners() ([]solana.PublicKey, error) {
	var signers []solana.PublicKey
	for _, acct := range execCtx.InstrAccounts {
		if acct.IsSigner() {
			if len(signers) >= MaximumSigners {
				return nil, StakeErrTooManySigners
			}
			signers = append(signers, acct.Key())
		}
	}
	return signers, nil
}

// getOptionalPubkey resolves an account that may or may not be present at
// the tail of the instruction's account list.
func getOptionalPubkey(execCtx *ExecutionCtx, instrAcctIdx int, shouldBeSigner bool) (*solana.PublicKey, error) {
	if instrAcctIdx >= len(execCtx.InstrAccounts) {
		return nil, nil
	}
	acct := execCtx.InstrAccounts[instrAcctIdx]
	if shouldBeSigner && !acct.IsSigner() {
		return nil, ErrMissingRequiredSignature
	}
	pubkey := acct.Key()
	return &pubkey, nil
}
