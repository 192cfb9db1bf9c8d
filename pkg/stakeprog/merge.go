package stakeprog

import (
	"math"

	"github.com/holiman/uint256"
	"go.stakewheel.io/stakewheel/pkg/safemath"
)

// merge classification
const (
	MergeKindFullyActive = iota
	MergeKindInactive
	MergeKindTransitioning
)

// MergeKind is the merge-eligibility classification of one stake account at
// a point in time. Lamports is populated for Inactive, Stake for FullyActive
// and Transitioning.
type MergeKind struct {
	Status   uint32
	Meta     Meta
	Stake    Stake
	Lamports uint64
	Flags    StakeFlags
}

// getIfMergeable classifies a stake account by its activation status at the
// current epoch.
func getIfMergeable(state *StakeStateV2, stakeLamports uint64, clock SysvarClock, stakeHistory SysvarStakeHistory) (*MergeKind, error) {
	switch state.Status {
	case StakeStateV2StatusStake:
		status := state.Stake.Stake.Delegation.StakeActivatingAndDeactivating(clock.Epoch, stakeHistory)

		if status.Effective == 0 && status.Activating == 0 && status.Deactivating == 0 {
			return &MergeKind{Status: MergeKindInactive, Meta: state.Stake.Meta, Lamports: stakeLamports, Flags: state.Stake.StakeFlags}, nil
		}
		if status.Effective != 0 && status.Activating == 0 && status.Deactivating == 0 {
			return &MergeKind{Status: MergeKindFullyActive, Meta: state.Stake.Meta, Stake: state.Stake.Stake}, nil
		}
		return &MergeKind{Status: MergeKindTransitioning, Meta: state.Stake.Meta, Stake: state.Stake.Stake, Flags: state.Stake.StakeFlags}, nil

	case StakeStateV2StatusInitialized:
		return &MergeKind{Status: MergeKindInactive, Meta: state.Initialized.Meta, Lamports: stakeLamports, Flags: stakeFlagsEmpty()}, nil

	default:
		return nil, ErrInvalidAccountData
	}
}

// metasCanMerge requires identical authorities and compatible lockups.
// Lockups are compatible when byte-identical or both expired.
func metasCanMerge(stake *Meta, source *Meta, clock SysvarClock) error {
	canMergeLockups := stake.Lockup == source.Lockup ||
		(!stake.Lockup.IsInForce(&clock, nil) && !source.Lockup.IsInForce(&clock, nil))

	if stake.Authorized == source.Authorized && canMergeLockups {
		return nil
	}
	return StakeErrMergeMismatch
}

// activeDelegationsCanMerge requires both delegations to target the same
// validator with no deactivation pending.
func activeDelegationsCanMerge(stake *Delegation, source *Delegation) error {
	if stake.VoterPubkey != source.VoterPubkey {
		return StakeErrMergeMismatch
	}
	if stake.DeactivationEpoch != math.MaxUint64 || source.DeactivationEpoch != math.MaxUint64 {
		return StakeErrMergeMismatch
	}
	return nil
}

// Merge absorbs source into the receiver (the destination classification)
// and returns the destination's new state, or nil when only the lamport
// balances move. Accounts in an activation or deactivation transition never
// merge.
func (mergeKind *MergeKind) Merge(source *MergeKind, clock SysvarClock) (*StakeStateV2, error) {
	err := metasCanMerge(&mergeKind.Meta, &source.Meta, clock)
	if err != nil {
		return nil, err
	}

	if mergeKind.Status == MergeKindTransitioning || source.Status == MergeKindTransitioning {
		return nil, StakeErrMergeTransientStake
	}

	switch {
	case mergeKind.Status == MergeKindInactive && source.Status == MergeKindInactive:
		return nil, nil

	case mergeKind.Status == MergeKindFullyActive && source.Status == MergeKindInactive:
		// the source's balance joins the destination as undelegated lamports
		return nil, nil

	case mergeKind.Status == MergeKindInactive && source.Status == MergeKindFullyActive:
		// the destination adopts the source's delegation wholesale
		newState := &StakeStateV2{Status: StakeStateV2StatusStake}
		newState.Stake.Meta = mergeKind.Meta
		newState.Stake.Stake = source.Stake
		newState.Stake.StakeFlags = stakeFlagsEmpty()
		return newState, nil

	default: // FullyActive, FullyActive
		err = activeDelegationsCanMerge(&mergeKind.Stake.Delegation, &source.Stake.Delegation)
		if err != nil {
			return nil, err
		}

		stake := mergeKind.Stake
		err = mergeDelegationStakeAndCreditsObserved(&stake, source.Stake.Delegation.StakeLamports, source.Stake.CreditsObserved)
		if err != nil {
			return nil, err
		}

		newState := &StakeStateV2{Status: StakeStateV2StatusStake}
		newState.Stake.Meta = mergeKind.Meta
		newState.Stake.Stake = stake
		newState.Stake.StakeFlags = stakeFlagsEmpty()
		return newState, nil
	}
}

func mergeDelegationStakeAndCreditsObserved(stake *Stake, absorbedLamports uint64, absorbedCreditsObserved uint64) error {
	creditsObserved, err := stakeWeightedCreditsObserved(stake, absorbedLamports, absorbedCreditsObserved)
	if err != nil {
		return err
	}
	stake.CreditsObserved = creditsObserved

	newStakeLamports, err := safemath.CheckedAddU64(stake.Delegation.StakeLamports, absorbedLamports)
	if err != nil {
		return ErrArithmeticOverflow
	}
	stake.Delegation.StakeLamports = newStakeLamports
	return nil
}

// stakeWeightedCreditsObserved combines two credit totals weighted by their
// stake, rounding up so a merge can never lower the result below either
// input's contribution.
func stakeWeightedCreditsObserved(stake *Stake, absorbedLamports uint64, absorbedCreditsObserved uint64) (uint64, error) {
	if stake.CreditsObserved == absorbedCreditsObserved {
		return stake.CreditsObserved, nil
	}

	totalStake, err := safemath.CheckedAddU64(stake.Delegation.StakeLamports, absorbedLamports)
	if err != nil {
		return 0, ErrArithmeticOverflow
	}
	if totalStake == 0 {
		return stake.CreditsObserved, nil
	}

	stakeWeighted := new(uint256.Int).Mul(uint256.NewInt(stake.CreditsObserved), uint256.NewInt(stake.Delegation.StakeLamports))
	absorbedWeighted := new(uint256.Int).Mul(uint256.NewInt(absorbedCreditsObserved), uint256.NewInt(absorbedLamports))

	totalWeighted := new(uint256.Int).Add(stakeWeighted, absorbedWeighted)
	totalStakeInt := uint256.NewInt(totalStake)

	// ceiling division
	totalWeighted.Add(totalWeighted, totalStakeInt)
	totalWeighted.Sub(totalWeighted, uint256.NewInt(1))

	result := new(uint256.Int).Div(totalWeighted, totalStakeInt)
	if !result.IsUint64() {
		return 0, ErrArithmeticOverflow
	}
	return result.Uint64(), nil
}
