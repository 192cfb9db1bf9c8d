package stakeprog

import (
	"crypto/sha256"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// authority roles
const (
	StakeAuthorizeStaker = iota
	StakeAuthorizeWithdrawer
)

const maxSeedLength = 32
const pdaMarker = "ProgramDerivedAddress"

func signersContains(signers []solana.PublicKey, pubkey solana.PublicKey) bool {
	for _, signer := range signers {
		if signer == pubkey {
			return true
		}
	}
	return false
}

// Check verifies that the authority for the given role is among the signers.
func (authorized *Authorized) Check(signers []solana.PublicKey, stakeAuthorize uint32) error {
	switch stakeAuthorize {
	case StakeAuthorizeStaker:
		if !signersContains(signers, authorized.Staker) {
			return ErrMissingRequiredSignature
		}
	case StakeAuthorizeWithdrawer:
		if !signersContains(signers, authorized.Withdrawer) {
			return ErrMissingRequiredSignature
		}
	default:
		return ErrInvalidArgument
	}
	return nil
}

// Authorize replaces the authority for the given role, enforcing the signing
// policy: the staker may be rotated by either current authority, while the
// withdrawer may only be rotated by itself, and only once any active lockup
// has been co-signed away by the custodian.
func (authorized *Authorized) Authorize(signers []solana.PublicKey, newAuthorized solana.PublicKey, stakeAuthorize uint32, lockup *StakeLockup, clock *SysvarClock, custodian *solana.PublicKey) error {
	switch stakeAuthorize {
	case StakeAuthorizeStaker:
		if !signersContains(signers, authorized.Staker) && !signersContains(signers, authorized.Withdrawer) {
			return ErrMissingRequiredSignature
		}
		authorized.Staker = newAuthorized

	case StakeAuthorizeWithdrawer:
		if lockup.IsInForce(clock, nil) {
			if custodian == nil {
				return StakeErrCustodianMissing
			}
			if !signersContains(signers, *custodian) {
				return StakeErrCustodianSignatureMissing
			}
			if lockup.IsInForce(clock, custodian) {
				return StakeErrLockupInForce
			}
		}
		err := authorized.Check(signers, stakeAuthorize)
		if err != nil {
			return err
		}
		authorized.Withdrawer = newAuthorized

	default:
		return ErrInvalidArgument
	}
	return nil
}

// ValidateAndCreateWithSeed recomputes a seed-derived address the same way
// the system program creates them: sha256(base || seed || owner).
func ValidateAndCreateWithSeed(base solana.PublicKey, seed string, owner solana.PublicKey) (solana.PublicKey, error) {
	if len(seed) > maxSeedLength {
		return solana.PublicKey{}, PubkeyErrMaxSeedLengthExceeded
	}
	if strings.HasSuffix(string(owner[:]), pdaMarker) {
		return solana.PublicKey{}, PubkeyErrIllegalOwner
	}

	h := sha256.New()
	h.Write(base[:])
	h.Write([]byte(seed))
	h.Write(owner[:])

	var derived solana.PublicKey
	copy(derived[:], h.Sum(nil))
	return derived, nil
}
