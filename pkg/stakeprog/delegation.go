package stakeprog

import (
	"math"

	"github.com/gagliardetto/solana-go"
	"go.stakewheel.io/stakewheel/pkg/features"
	"go.stakewheel.io/stakewheel/pkg/safemath"
)

const LamportsPerSol = 1_000_000_000

const (
	DefaultWarmupCooldownRate = 0.25
	NewWarmupCooldownRate     = 0.09
)

// GetMinimumDelegation returns the smallest delegation a stake account may
// carry, in lamports.
func GetMinimumDelegation(f features.Features) uint64 {
	if f.IsActive(features.StakeRaiseMinimumDelegationTo1Sol) {
		return LamportsPerSol
	}
	return 1
}

// WarmupCooldownRate returns the fraction of total cluster stake allowed to
// change activation state per epoch. Informational only: the activation
// calculator below settles within a single epoch boundary and never scales
// by the cluster-wide rate.
func WarmupCooldownRate(f features.Features) float64 {
	if f.IsActive(features.ReduceStakeWarmupCooldown) {
		return NewWarmupCooldownRate
	}
	return DefaultWarmupCooldownRate
}

func (delegation *Delegation) stakeAndActivating(targetEpoch uint64) (uint64, uint64) {
	if isBootstrapDelegation(delegation) {
		// bootstrap stake is effective from genesis
		return delegation.StakeLamports, 0
	}
	if delegation.ActivationEpoch == delegation.DeactivationEpoch {
		// activated and deactivated in the same epoch: never effective
		return 0, 0
	}
	if targetEpoch == delegation.ActivationEpoch {
		return 0, delegation.StakeLamports
	}
	if targetEpoch < delegation.ActivationEpoch {
		return 0, 0
	}
	// a full epoch boundary has passed since activation
	return delegation.StakeLamports, 0
}

// StakeActivatingAndDeactivating computes the delegation's effective,
// activating and deactivating portions at targetEpoch. A delegation becomes
// fully effective once one full epoch has elapsed since its activation
// epoch, and fully inactive once one full epoch has elapsed since its
// deactivation epoch; the stake history oracle exists so callers can resolve
// partially-settled cluster aggregates, but individual delegations settle at
// the epoch boundary.
func (delegation *Delegation) StakeActivatingAndDeactivating(targetEpoch uint64, stakeHistory SysvarStakeHistory) StakeHistoryEntry {
	effective, activating := delegation.stakeAndActivating(targetEpoch)

	if targetEpoch < delegation.DeactivationEpoch {
		return StakeHistoryEntry{Effective: effective, Activating: activating}
	}
	if targetEpoch == delegation.DeactivationEpoch {
		return StakeHistoryEntry{Effective: effective, Deactivating: effective}
	}
	return StakeHistoryEntry{}
}

// Stake returns the delegation's effective stake at the given epoch.
func (delegation *Delegation) Stake(epoch uint64, stakeHistory SysvarStakeHistory) uint64 {
	return delegation.StakeActivatingAndDeactivating(epoch, stakeHistory).Effective
}

func newStake(stakeLamports uint64, voterPubkey solana.PublicKey, voteRecord *VoteRecord, activationEpoch uint64) Stake {
	return Stake{
		Delegation: Delegation{
			VoterPubkey:       voterPubkey,
			StakeLamports:     stakeLamports,
			ActivationEpoch:   activationEpoch,
			DeactivationEpoch: math.MaxUint64,
		},
		CreditsObserved: voteRecord.Credits(),
	}
}

// Deactivate schedules the delegation for cooldown. Deactivation is final:
// a deactivation epoch, once set, is never rescinded.
func (stake *Stake) Deactivate(epoch uint64) error {
	if stake.Delegation.DeactivationEpoch != math.MaxUint64 {
		return StakeErrAlreadyDeactivated
	}
	stake.Delegation.DeactivationEpoch = epoch
	return nil
}

// Split carves splitStakeAmount of delegated stake out of the receiver,
// leaving it reduced by remainingStakeDelta.
func (stake *Stake) Split(remainingStakeDelta uint64, splitStakeAmount uint64) (Stake, error) {
	if remainingStakeDelta > stake.Delegation.StakeLamports {
		return Stake{}, StakeErrInsufficientStake
	}
	stake.Delegation.StakeLamports -= remainingStakeDelta

	splitStake := *stake
	splitStake.Delegation.StakeLamports = splitStakeAmount
	return splitStake, nil
}

// validateDelegatedAmount computes the delegated amount for an account about
// to be delegated: everything above the rent-exempt reserve.
func validateDelegatedAmount(acct *BorrowedAccount, meta *Meta, f features.Features) (uint64, error) {
	stakeAmount := safemath.SaturatingSubU64(acct.Lamports(), meta.RentExemptReserve)
	if stakeAmount < GetMinimumDelegation(f) {
		return 0, StakeErrInsufficientDelegation
	}
	return stakeAmount, nil
}

type validatedSplitInfo struct {
	SourceRemainingBalance       uint64
	DestinationRentExemptReserve uint64
}

// validateSplitAmount enforces the balance rules for carving lamports out of
// a source stake account into an uninitialized destination.
func validateSplitAmount(execCtx *ExecutionCtx, sourceAcctIdx int, destAcctIdx int, lamports uint64, sourceMeta *Meta, additionalRequiredLamports uint64, sourceIsActive bool) (validatedSplitInfo, error) {
	sourceAcct, err := execCtx.InstructionAccount(sourceAcctIdx)
	if err != nil {
		return validatedSplitInfo{}, err
	}
	sourceLamports := sourceAcct.Lamports()

	destAcct, err := execCtx.InstructionAccount(destAcctIdx)
	if err != nil {
		return validatedSplitInfo{}, err
	}
	destLamports := destAcct.Lamports()

	if lamports == 0 {
		return validatedSplitInfo{}, ErrInsufficientFunds
	}
	if lamports > sourceLamports {
		return validatedSplitInfo{}, ErrInsufficientFunds
	}

	// Either the split drains the source entirely, or what remains must
	// cover the reserve plus the minimum delegation.
	sourceRemainingBalance := sourceLamports - lamports
	if sourceRemainingBalance != 0 {
		sourceMinimumBalance := safemath.SaturatingAddU64(sourceMeta.RentExemptReserve, additionalRequiredLamports)
		if sourceRemainingBalance < sourceMinimumBalance {
			return validatedSplitInfo{}, ErrInsufficientFunds
		}
	}

	rent := ReadRentSysvar(&execCtx.Accounts)
	destRentExemptReserve := rent.MinimumBalance(uint64(len(destAcct.Data())))

	// An active source may not be used to fund the destination's reserve:
	// the destination must already be rent exempt before the split.
	if execCtx.Features.IsActive(features.RequireRentExemptSplitDestination) &&
		sourceIsActive && sourceRemainingBalance != 0 && destLamports < destRentExemptReserve {
		return validatedSplitInfo{}, ErrInsufficientFunds
	}

	destMinimumBalance := safemath.SaturatingAddU64(destRentExemptReserve, additionalRequiredLamports)
	destBalanceDeficit := safemath.SaturatingSubU64(destMinimumBalance, destLamports)
	if lamports < destBalanceDeficit {
		return validatedSplitInfo{}, ErrInsufficientFunds
	}

	return validatedSplitInfo{
		SourceRemainingBalance:       sourceRemainingBalance,
		DestinationRentExemptReserve: destRentExemptReserve,
	}, nil
}
