package stakeprog

import (
	"github.com/gagliardetto/solana-go"
	"go.stakewheel.io/stakewheel/pkg/accounts"
	"go.stakewheel.io/stakewheel/pkg/safemath"
)

// BorrowedAccount is the program's view of one account supplied by the
// hosting runtime for the duration of a single instruction. The host owns
// write-locking and rollback; this type only enforces the writability and
// balance rules a handler must respect.
type BorrowedAccount struct {
	Account  *accounts.Account
	Signer   bool
	Writable bool
}

func (acct *BorrowedAccount) Key() solana.PublicKey {
	return acct.Account.Key
}

func (acct *BorrowedAccount) Owner() solana.PublicKey {
	return acct.Account.Owner
}

func (acct *BorrowedAccount) Lamports() uint64 {
	return acct.Account.Lamports
}

func (acct *BorrowedAccount) Data() []byte {
	return acct.Account.Data
}

func (acct *BorrowedAccount) IsSigner() bool {
	return acct.Signer
}

func (acct *BorrowedAccount) IsWritable() bool {
	return acct.Writable
}

func (acct *BorrowedAccount) DataCanBeChanged() error {
	if !acct.Writable {
		return ErrReadonlyDataModified
	}
	return nil
}

func (acct *BorrowedAccount) SetData(data []byte) error {
	err := acct.DataCanBeChanged()
	if err != nil {
		return err
	}
	acct.Account.SetData(data)
	return nil
}

func (acct *BorrowedAccount) AddLamports(lamports uint64) error {
	newBalance, err := safemath.CheckedAddU64(acct.Account.Lamports, lamports)
	if err != nil {
		return ErrArithmeticOverflow
	}
	acct.Account.Lamports = newBalance
	return nil
}

func (acct *BorrowedAccount) SubLamports(lamports uint64) error {
	newBalance, err := safemath.CheckedSubU64(acct.Account.Lamports, lamports)
	if err != nil {
		return ErrInsufficientFunds
	}
	acct.Account.Lamports = newBalance
	return nil
}

// relocateLamports moves a balance between two accounts of the same
// transaction. Named to avoid colliding with the MoveLamports instruction.
func relocateLamports(src *BorrowedAccount, dst *BorrowedAccount, lamports uint64) error {
	err := src.SubLamports(lamports)
	if err != nil {
		return err
	}
	return dst.AddLamports(lamports)
}
