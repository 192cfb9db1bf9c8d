package stakeprog

import (
	"math"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.stakewheel.io/stakewheel/pkg/base58"
	"go.stakewheel.io/stakewheel/pkg/safemath"
	"k8s.io/klog/v2"
)

var StakeProgramAddr = base58.MustDecodeFromString("Stake11111111111111111111111111111111111111")
var VoteProgramAddr = base58.MustDecodeFromString("Vote111111111111111111111111111111111111111")

// MinimumDelinquentEpochsForDeactivation is how many epochs a vote account
// must be silent before anyone may deactivate its delegations.
const MinimumDelinquentEpochsForDeactivation = 5

func getStakeAccount(execCtx *ExecutionCtx) (*BorrowedAccount, error) {
	acct, err := execCtx.InstructionAccount(0)
	if err != nil {
		return nil, err
	}
	if acct.Owner() != solana.PublicKey(StakeProgramAddr) {
		return nil, ErrInvalidAccountOwner
	}
	return acct, nil
}

func getVoteAccount(execCtx *ExecutionCtx, instrAcctIdx int) (*BorrowedAccount, *VoteRecord, error) {
	acct, err := execCtx.InstructionAccount(instrAcctIdx)
	if err != nil {
		return nil, nil, err
	}
	if acct.Owner() != solana.PublicKey(VoteProgramAddr) {
		return nil, nil, ErrIncorrectProgramId
	}
	voteRecord, err := unmarshalVoteRecord(acct.Data())
	if err != nil {
		return nil, nil, err
	}
	return acct, voteRecord, nil
}

// Execute is the program entry point: it decodes the instruction and
// dispatches to the handler. The hosting runtime is responsible for write
// locks and for rolling accounts back when an error is returned.
func Execute(execCtx *ExecutionCtx, instrData []byte) error {
	decoder := bin.NewBinDecoder(instrData)

	instructionType, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return ErrInvalidInstructionData
	}

	signers, err := execCtx.collectSigners()
	if err != nil {
		return err
	}

	switch instructionType {
	case StakeProgramInstrTypeInitialize:
		klog.V(2).Infof("StakeProgram instruction: Initialize")

		var initialize StakeInstrInitialize
		err = initialize.UnmarshalWithDecoder(decoder)
		if err != nil {
			return ErrInvalidInstructionData
		}

		err = execCtx.CheckNumOfInstructionAccounts(2)
		if err != nil {
			return err
		}
		stakeAcct, err := getStakeAccount(execCtx)
		if err != nil {
			return err
		}
		rent, err := checkAcctForRentSysvar(execCtx, 1)
		if err != nil {
			return err
		}
		return StakeProgramInitialize(stakeAcct, initialize.Authorized, initialize.Lockup, rent)

	case StakeProgramInstrTypeAuthorize:
		klog.V(2).Infof("StakeProgram instruction: Authorize")

		var authorize StakeInstrAuthorize
		err = authorize.UnmarshalWithDecoder(decoder)
		if err != nil {
			return ErrInvalidInstructionData
		}

		err = execCtx.CheckNumOfInstructionAccounts(3)
		if err != nil {
			return err
		}
		stakeAcct, err := getStakeAccount(execCtx)
		if err != nil {
			return err
		}
		clock, err := checkAcctForClockSysvar(execCtx, 1)
		if err != nil {
			return err
		}
		custodianPubkey, err := getOptionalPubkey(execCtx, 3, false)
		if err != nil {
			return err
		}
		return StakeProgramAuthorize(stakeAcct, signers, authorize.NewAuthorized, authorize.StakeAuthorize, clock, custodianPubkey)

	case StakeProgramInstrTypeDelegateStake:
		klog.V(2).Infof("StakeProgram instruction: DelegateStake")

		err = execCtx.CheckNumOfInstructionAccounts(4)
		if err != nil {
			return err
		}
		return StakeProgramDelegate(execCtx, signers)

	case StakeProgramInstrTypeSplit:
		klog.V(2).Infof("StakeProgram instruction: Split")

		var split StakeInstrSplit
		err = split.UnmarshalWithDecoder(decoder)
		if err != nil {
			return ErrInvalidInstructionData
		}

		err = execCtx.CheckNumOfInstructionAccounts(2)
		if err != nil {
			return err
		}
		return StakeProgramSplit(execCtx, split.Lamports, signers)

	case StakeProgramInstrTypeWithdraw:
		klog.V(2).Infof("StakeProgram instruction: Withdraw")

		var withdraw StakeInstrWithdraw
		err = withdraw.UnmarshalWithDecoder(decoder)
		if err != nil {
			return ErrInvalidInstructionData
		}

		err = execCtx.CheckNumOfInstructionAccounts(5)
		if err != nil {
			return err
		}
		return StakeProgramWithdraw(execCtx, withdraw.Lamports)

	case StakeProgramInstrTypeDeactivate:
		klog.V(2).Infof("StakeProgram instruction: Deactivate")

		err = execCtx.CheckNumOfInstructionAccounts(2)
		if err != nil {
			return err
		}
		stakeAcct, err := getStakeAccount(execCtx)
		if err != nil {
			return err
		}
		clock, err := checkAcctForClockSysvar(execCtx, 1)
		if err != nil {
			return err
		}
		return StakeProgramDeactivate(stakeAcct, clock, signers)

	case StakeProgramInstrTypeSetLockup:
		klog.V(2).Infof("StakeProgram instruction: SetLockup")

		var setLockup StakeInstrSetLockup
		err = setLockup.UnmarshalWithDecoder(decoder)
		if err != nil {
			return ErrInvalidInstructionData
		}

		err = execCtx.CheckNumOfInstructionAccounts(1)
		if err != nil {
			return err
		}
		stakeAcct, err := getStakeAccount(execCtx)
		if err != nil {
			return err
		}
		clock := ReadClockSysvar(&execCtx.Accounts)
		return StakeProgramSetLockup(stakeAcct, setLockup.UnixTimestamp, setLockup.Epoch, setLockup.Custodian, signers, clock)

	case StakeProgramInstrTypeMerge:
		klog.V(2).Infof("StakeProgram instruction: Merge")

		err = execCtx.CheckNumOfInstructionAccounts(4)
		if err != nil {
			return err
		}
		return StakeProgramMerge(execCtx, signers)

	case StakeProgramInstrTypeAuthorizeWithSeed:
		klog.V(2).Infof("StakeProgram instruction: AuthorizeWithSeed")

		var authorizeWithSeed StakeInstrAuthorizeWithSeed
		err = authorizeWithSeed.UnmarshalWithDecoder(decoder)
		if err != nil {
			return ErrInvalidInstructionData
		}

		err = execCtx.CheckNumOfInstructionAccounts(2)
		if err != nil {
			return err
		}
		return StakeProgramAuthorizeWithSeed(execCtx, authorizeWithSeed.NewAuthorizedPubkey, authorizeWithSeed.StakeAuthorize, authorizeWithSeed.AuthoritySeed, authorizeWithSeed.AuthorityOwner, 3)

	case StakeProgramInstrTypeInitializeChecked:
		klog.V(2).Infof("StakeProgram instruction: InitializeChecked")

		err = execCtx.CheckNumOfInstructionAccounts(4)
		if err != nil {
			return err
		}
		return StakeProgramInitializeChecked(execCtx)

	case StakeProgramInstrTypeAuthorizeChecked:
		klog.V(2).Infof("StakeProgram instruction: AuthorizeChecked")

		var authorizeChecked StakeInstrAuthorizeChecked
		err = authorizeChecked.UnmarshalWithDecoder(decoder)
		if err != nil {
			return ErrInvalidInstructionData
		}

		err = execCtx.CheckNumOfInstructionAccounts(4)
		if err != nil {
			return err
		}
		return StakeProgramAuthorizeChecked(execCtx, signers, authorizeChecked.StakeAuthorize)

	case StakeProgramInstrTypeAuthorizeCheckedWithSeed:
		klog.V(2).Infof("StakeProgram instruction: AuthorizeCheckedWithSeed")

		var authorizeCheckedWithSeed StakeInstrAuthorizeCheckedWithSeed
		err = authorizeCheckedWithSeed.UnmarshalWithDecoder(decoder)
		if err != nil {
			return ErrInvalidInstructionData
		}

		err = execCtx.CheckNumOfInstructionAccounts(4)
		if err != nil {
			return err
		}
		newAuthorityAcct, err := execCtx.InstructionAccount(3)
		if err != nil {
			return err
		}
		if !newAuthorityAcct.IsSigner() {
			return ErrMissingRequiredSignature
		}
		return StakeProgramAuthorizeWithSeed(execCtx, newAuthorityAcct.Key(), authorizeCheckedWithSeed.StakeAuthorize, authorizeCheckedWithSeed.AuthoritySeed, authorizeCheckedWithSeed.AuthorityOwner, 4)

	case StakeProgramInstrTypeSetLockupChecked:
		klog.V(2).Infof("StakeProgram instruction: SetLockupChecked")

		var setLockupChecked StakeInstrSetLockupChecked
		err = setLockupChecked.UnmarshalWithDecoder(decoder)
		if err != nil {
			return ErrInvalidInstructionData
		}

		err = execCtx.CheckNumOfInstructionAccounts(1)
		if err != nil {
			return err
		}
		stakeAcct, err := getStakeAccount(execCtx)
		if err != nil {
			return err
		}
		custodianPubkey, err := getOptionalPubkey(execCtx, 2, true)
		if err != nil {
			return err
		}
		clock := ReadClockSysvar(&execCtx.Accounts)
		return StakeProgramSetLockup(stakeAcct, setLockupChecked.UnixTimestamp, setLockupChecked.Epoch, custodianPubkey, signers, clock)

	case StakeProgramInstrTypeGetMinimumDelegation:
		klog.V(2).Infof("StakeProgram instruction: GetMinimumDelegation")

		minimumDelegation := GetMinimumDelegation(execCtx.Features)
		returnData := make([]byte, 8)
		bin.LE.PutUint64(returnData, minimumDelegation)
		execCtx.SetReturnData(returnData)
		return nil

	case StakeProgramInstrTypeDeactivateDelinquent:
		klog.V(2).Infof("StakeProgram instruction: DeactivateDelinquent")

		err = execCtx.CheckNumOfInstructionAccounts(3)
		if err != nil {
			return err
		}
		return StakeProgramDeactivateDelinquent(execCtx)

	case StakeProgramInstrTypeRedelegate:
		klog.V(2).Infof("StakeProgram instruction: Redelegate (disabled)")
		return StakeErrRedelegateDisabled

	case StakeProgramInstrTypeMoveStake:
		klog.V(2).Infof("StakeProgram instruction: MoveStake")

		var moveStake StakeInstrMoveStake
		err = moveStake.UnmarshalWithDecoder(decoder)
		if err != nil {
			return ErrInvalidInstructionData
		}

		err = execCtx.CheckNumOfInstructionAccounts(3)
		if err != nil {
			return err
		}
		return StakeProgramMoveStake(execCtx, moveStake.Lamports)

	case StakeProgramInstrTypeMoveLamports:
		klog.V(2).Infof("StakeProgram instruction: MoveLamports")

		var moveLamports StakeInstrMoveLamports
		err = moveLamports.UnmarshalWithDecoder(decoder)
		if err != nil {
			return ErrInvalidInstructionData
		}

		err = execCtx.CheckNumOfInstructionAccounts(3)
		if err != nil {
			return err
		}
		return StakeProgramMoveLamports(execCtx, moveLamports.Lamports)

	default:
		return ErrInvalidInstructionData
	}
}

func StakeProgramInitialize(stakeAcct *BorrowedAccount, authorized Authorized, lockup StakeLockup, rent SysvarRent) error {
	if uint64(len(stakeAcct.Data())) != StakeStateV2AccountSize {
		return ErrInvalidAccountData
	}

	state, err := getStakeAccountState(stakeAcct)
	if err != nil {
		return err
	}
	if state.Status != StakeStateV2StatusUninitialized {
		return ErrInvalidAccountData
	}

	rentExemptReserve := rent.MinimumBalance(uint64(len(stakeAcct.Data())))
	if stakeAcct.Lamports() < rentExemptReserve {
		return ErrInsufficientFunds
	}

	newState := &StakeStateV2{Status: StakeStateV2StatusInitialized}
	newState.Initialized.Meta = Meta{
		RentExemptReserve: rentExemptReserve,
		Authorized:        authorized,
		Lockup:            lockup,
	}
	return setStakeAccountState(stakeAcct, newState)
}

func StakeProgramInitializeChecked(execCtx *ExecutionCtx) error {
	stakeAcct, err := getStakeAccount(execCtx)
	if err != nil {
		return err
	}
	rent, err := checkAcctForRentSysvar(execCtx, 1)
	if err != nil {
		return err
	}
	stakerAcct, err := execCtx.InstructionAccount(2)
	if err != nil {
		return err
	}
	withdrawerAcct, err := execCtx.InstructionAccount(3)
	if err != nil {
		return err
	}
	if !withdrawerAcct.IsSigner() {
		return ErrMissingRequiredSignature
	}

	authorized := Authorized{Staker: stakerAcct.Key(), Withdrawer: withdrawerAcct.Key()}
	return StakeProgramInitialize(stakeAcct, authorized, StakeLockup{}, rent)
}

func StakeProgramAuthorize(stakeAcct *BorrowedAccount, signers []solana.PublicKey, newAuthority solana.PublicKey, stakeAuthorize uint32, clock SysvarClock, custodianPubkey *solana.PublicKey) error {
	state, err := getStakeAccountState(stakeAcct)
	if err != nil {
		return err
	}

	switch state.Status {
	case StakeStateV2StatusStake:
		err = state.Stake.Meta.Authorized.Authorize(signers, newAuthority, stakeAuthorize, &state.Stake.Meta.Lockup, &clock, custodianPubkey)
	case StakeStateV2StatusInitialized:
		err = state.Initialized.Meta.Authorized.Authorize(signers, newAuthority, stakeAuthorize, &state.Initialized.Meta.Lockup, &clock, custodianPubkey)
	default:
		return ErrInvalidAccountData
	}
	if err != nil {
		return err
	}
	return setStakeAccountState(stakeAcct, state)
}

// StakeProgramAuthorizeWithSeed rotates an authority whose current value is
// a seed-derived address. The base account signs; the derived address is the
// effective signer.
func StakeProgramAuthorizeWithSeed(execCtx *ExecutionCtx, newAuthority solana.PublicKey, stakeAuthorize uint32, authoritySeed string, authorityOwner solana.PublicKey, custodianIdx int) error {
	stakeAcct, err := getStakeAccount(execCtx)
	if err != nil {
		return err
	}
	baseAcct, err := execCtx.InstructionAccount(1)
	if err != nil {
		return err
	}
	clock, err := checkAcctForClockSysvar(execCtx, 2)
	if err != nil {
		return err
	}
	custodianPubkey, err := getOptionalPubkey(execCtx, custodianIdx, false)
	if err != nil {
		return err
	}

	var signers []solana.PublicKey
	if baseAcct.IsSigner() {
		derived, err := ValidateAndCreateWithSeed(baseAcct.Key(), authoritySeed, authorityOwner)
		if err != nil {
			return err
		}
		signers = append(signers, derived)
	}

	return StakeProgramAuthorize(stakeAcct, signers, newAuthority, stakeAuthorize, clock, custodianPubkey)
}

func StakeProgramAuthorizeChecked(execCtx *ExecutionCtx, signers []solana.PublicKey, stakeAuthorize uint32) error {
	stakeAcct, err := getStakeAccount(execCtx)
	if err != nil {
		return err
	}
	clock, err := checkAcctForClockSysvar(execCtx, 1)
	if err != nil {
		return err
	}
	newAuthorityAcct, err := execCtx.InstructionAccount(3)
	if err != nil {
		return err
	}
	if !newAuthorityAcct.IsSigner() {
		return ErrMissingRequiredSignature
	}
	custodianPubkey, err := getOptionalPubkey(execCtx, 4, false)
	if err != nil {
		return err
	}

	return StakeProgramAuthorize(stakeAcct, signers, newAuthorityAcct.Key(), stakeAuthorize, clock, custodianPubkey)
}

// modifyStakeForRedelegation re-points an existing delegation at a new
// target. A delegation still carrying effective stake may only be topped up
// in place on the same target; deactivation is never rescinded.
func modifyStakeForRedelegation(stake *Stake, stakeAmount uint64, voterPubkey solana.PublicKey, voteRecord *VoteRecord, clock SysvarClock, stakeHistory SysvarStakeHistory) error {
	if stake.Delegation.Stake(clock.Epoch, stakeHistory) != 0 {
		if stake.Delegation.VoterPubkey == voterPubkey && stake.Delegation.DeactivationEpoch == math.MaxUint64 {
			stake.Delegation.StakeLamports = stakeAmount
			stake.CreditsObserved = voteRecord.Credits()
			return nil
		}
		return StakeErrTooSoonToRedelegate
	}

	stake.Delegation.StakeLamports = stakeAmount
	stake.Delegation.ActivationEpoch = clock.Epoch
	stake.Delegation.DeactivationEpoch = math.MaxUint64
	stake.Delegation.VoterPubkey = voterPubkey
	stake.CreditsObserved = voteRecord.Credits()
	return nil
}

func StakeProgramDelegate(execCtx *ExecutionCtx, signers []solana.PublicKey) error {
	voteAcct, voteRecord, err := getVoteAccount(execCtx, 1)
	if err != nil {
		return err
	}
	clock, err := checkAcctForClockSysvar(execCtx, 2)
	if err != nil {
		return err
	}
	stakeHistory, err := checkAcctForStakeHistorySysvar(execCtx, 3)
	if err != nil {
		return err
	}
	stakeAcct, err := getStakeAccount(execCtx)
	if err != nil {
		return err
	}

	state, err := getStakeAccountState(stakeAcct)
	if err != nil {
		return err
	}

	switch state.Status {
	case StakeStateV2StatusInitialized:
		meta := state.Initialized.Meta
		err = meta.Authorized.Check(signers, StakeAuthorizeStaker)
		if err != nil {
			return err
		}
		stakeAmount, err := validateDelegatedAmount(stakeAcct, &meta, execCtx.Features)
		if err != nil {
			return err
		}

		newState := &StakeStateV2{Status: StakeStateV2StatusStake}
		newState.Stake.Meta = meta
		newState.Stake.Stake = newStake(stakeAmount, voteAcct.Key(), voteRecord, clock.Epoch)
		newState.Stake.StakeFlags = stakeFlagsEmpty()
		return setStakeAccountState(stakeAcct, newState)

	case StakeStateV2StatusStake:
		meta := state.Stake.Meta
		err = meta.Authorized.Check(signers, StakeAuthorizeStaker)
		if err != nil {
			return err
		}
		stakeAmount, err := validateDelegatedAmount(stakeAcct, &meta, execCtx.Features)
		if err != nil {
			return err
		}
		err = modifyStakeForRedelegation(&state.Stake.Stake, stakeAmount, voteAcct.Key(), voteRecord, clock, stakeHistory)
		if err != nil {
			return err
		}
		return setStakeAccountState(stakeAcct, state)

	default:
		return ErrInvalidAccountData
	}
}

func StakeProgramDeactivate(stakeAcct *BorrowedAccount, clock SysvarClock, signers []solana.PublicKey) error {
	state, err := getStakeAccountState(stakeAcct)
	if err != nil {
		return err
	}
	if state.Status != StakeStateV2StatusStake {
		return ErrInvalidAccountData
	}

	err = state.Stake.Meta.Authorized.Check(signers, StakeAuthorizeStaker)
	if err != nil {
		return err
	}
	err = state.Stake.Stake.Deactivate(clock.Epoch)
	if err != nil {
		return err
	}
	return setStakeAccountState(stakeAcct, state)
}

// StakeProgramSetLockup overwrites whichever lockup fields are provided.
// While the lockup is in force only the custodian may change it; afterwards
// the withdraw authority may.
func StakeProgramSetLockup(stakeAcct *BorrowedAccount, unixTimestamp *int64, epoch *uint64, custodian *solana.PublicKey, signers []solana.PublicKey, clock SysvarClock) error {
	state, err := getStakeAccountState(stakeAcct)
	if err != nil {
		return err
	}

	meta, err := state.MetaFromState()
	if err != nil {
		return err
	}

	if meta.Lockup.IsInForce(&clock, nil) {
		if !signersContains(signers, meta.Lockup.Custodian) {
			return ErrMissingRequiredSignature
		}
	} else if !signersContains(signers, meta.Authorized.Withdrawer) {
		return ErrMissingRequiredSignature
	}

	if unixTimestamp != nil {
		meta.Lockup.UnixTimestamp = *unixTimestamp
	}
	if epoch != nil {
		meta.Lockup.Epoch = *epoch
	}
	if custodian != nil {
		meta.Lockup.Custodian = *custodian
	}

	return setStakeAccountState(stakeAcct, state)
}

func StakeProgramSplit(execCtx *ExecutionCtx, splitLamports uint64, signers []solana.PublicKey) error {
	splitAcct, err := execCtx.InstructionAccount(1)
	if err != nil {
		return err
	}
	if splitAcct.Owner() != solana.PublicKey(StakeProgramAddr) {
		return ErrInvalidAccountOwner
	}
	if uint64(len(splitAcct.Data())) != StakeStateV2AccountSize {
		return ErrInvalidAccountData
	}
	splitState, err := getStakeAccountState(splitAcct)
	if err != nil {
		return err
	}
	if splitState.Status != StakeStateV2StatusUninitialized {
		return ErrInvalidAccountData
	}

	stakeAcct, err := getStakeAccount(execCtx)
	if err != nil {
		return err
	}

	state, err := getStakeAccountState(stakeAcct)
	if err != nil {
		return err
	}

	switch state.Status {
	case StakeStateV2StatusStake:
		err = state.Stake.Meta.Authorized.Check(signers, StakeAuthorizeStaker)
		if err != nil {
			return err
		}
		minimumDelegation := GetMinimumDelegation(execCtx.Features)

		clock := ReadClockSysvar(&execCtx.Accounts)
		stakeHistory := ReadStakeHistorySysvar(&execCtx.Accounts)
		isActive := state.Stake.Stake.Delegation.Stake(clock.Epoch, stakeHistory) > 0

		validatedSplitInfo, err := validateSplitAmount(execCtx, 0, 1, splitLamports, &state.Stake.Meta, minimumDelegation, isActive)
		if err != nil {
			return err
		}

		var remainingStakeDelta, splitStakeAmount uint64
		if validatedSplitInfo.SourceRemainingBalance == 0 {
			remainingStakeDelta = safemath.SaturatingSubU64(splitLamports, state.Stake.Meta.RentExemptReserve)
			splitStakeAmount = remainingStakeDelta
		} else {
			if safemath.SaturatingSubU64(state.Stake.Stake.Delegation.StakeLamports, splitLamports) < minimumDelegation {
				return StakeErrInsufficientDelegation
			}
			remainingStakeDelta = splitLamports
			splitStakeAmount = safemath.SaturatingSubU64(splitLamports,
				safemath.SaturatingSubU64(validatedSplitInfo.DestinationRentExemptReserve, splitAcct.Lamports()))
		}
		if splitStakeAmount < minimumDelegation {
			return StakeErrInsufficientDelegation
		}

		splitStake, err := state.Stake.Stake.Split(remainingStakeDelta, splitStakeAmount)
		if err != nil {
			return err
		}

		splitMeta := state.Stake.Meta
		splitMeta.RentExemptReserve = validatedSplitInfo.DestinationRentExemptReserve

		err = setStakeAccountState(stakeAcct, state)
		if err != nil {
			return err
		}

		newSplitState := &StakeStateV2{Status: StakeStateV2StatusStake}
		newSplitState.Stake.Meta = splitMeta
		newSplitState.Stake.Stake = splitStake
		newSplitState.Stake.StakeFlags = state.Stake.StakeFlags
		err = setStakeAccountState(splitAcct, newSplitState)
		if err != nil {
			return err
		}

	case StakeStateV2StatusInitialized:
		err = state.Initialized.Meta.Authorized.Check(signers, StakeAuthorizeStaker)
		if err != nil {
			return err
		}
		validatedSplitInfo, err := validateSplitAmount(execCtx, 0, 1, splitLamports, &state.Initialized.Meta, 0, false)
		if err != nil {
			return err
		}

		splitMeta := state.Initialized.Meta
		splitMeta.RentExemptReserve = validatedSplitInfo.DestinationRentExemptReserve

		newSplitState := &StakeStateV2{Status: StakeStateV2StatusInitialized}
		newSplitState.Initialized.Meta = splitMeta
		err = setStakeAccountState(splitAcct, newSplitState)
		if err != nil {
			return err
		}

	case StakeStateV2StatusUninitialized:
		if !signersContains(signers, stakeAcct.Key()) {
			return ErrMissingRequiredSignature
		}

	default:
		return ErrInvalidAccountData
	}

	// a split that drains the source deinitializes it
	if splitLamports == stakeAcct.Lamports() {
		err = setStakeAccountState(stakeAcct, &StakeStateV2{Status: StakeStateV2StatusUninitialized})
		if err != nil {
			return err
		}
	}

	return relocateLamports(stakeAcct, splitAcct, splitLamports)
}

func StakeProgramWithdraw(execCtx *ExecutionCtx, withdrawLamports uint64) error {
	withdrawAuthorityAcct, err := execCtx.InstructionAccount(4)
	if err != nil {
		return err
	}
	if !withdrawAuthorityAcct.IsSigner() {
		return ErrMissingRequiredSignature
	}
	withdrawSigners := []solana.PublicKey{withdrawAuthorityAcct.Key()}

	clock, err := checkAcctForClockSysvar(execCtx, 2)
	if err != nil {
		return err
	}
	stakeHistory, err := checkAcctForStakeHistorySysvar(execCtx, 3)
	if err != nil {
		return err
	}

	stakeAcct, err := getStakeAccount(execCtx)
	if err != nil {
		return err
	}

	state, err := getStakeAccountState(stakeAcct)
	if err != nil {
		return err
	}

	var lockup StakeLockup
	var reserve uint64
	var isStaked bool

	switch state.Status {
	case StakeStateV2StatusStake:
		meta := state.Stake.Meta
		err = meta.Authorized.Check(withdrawSigners, StakeAuthorizeWithdrawer)
		if err != nil {
			return err
		}

		// once the cooldown epoch has passed nothing remains staked
		var staked uint64
		if clock.Epoch >= state.Stake.Stake.Delegation.DeactivationEpoch {
			staked = state.Stake.Stake.Delegation.Stake(clock.Epoch, stakeHistory)
		} else {
			staked = state.Stake.Stake.Delegation.StakeLamports
		}

		stakedAndReserve, err := safemath.CheckedAddU64(staked, meta.RentExemptReserve)
		if err != nil {
			return ErrInsufficientFunds
		}
		lockup = meta.Lockup
		reserve = stakedAndReserve
		isStaked = staked != 0

	case StakeStateV2StatusInitialized:
		meta := state.Initialized.Meta
		err = meta.Authorized.Check(withdrawSigners, StakeAuthorizeWithdrawer)
		if err != nil {
			return err
		}
		lockup = meta.Lockup
		reserve = meta.RentExemptReserve
		isStaked = false

	case StakeStateV2StatusUninitialized:
		// an uninitialized account is controlled by its own key
		if !signersContains(withdrawSigners, stakeAcct.Key()) {
			return ErrMissingRequiredSignature
		}

	default:
		return ErrInvalidAccountData
	}

	custodianPubkey, err := getOptionalPubkey(execCtx, 5, true)
	if err != nil {
		return err
	}
	if lockup.IsInForce(&clock, custodianPubkey) {
		return StakeErrLockupInForce
	}

	lamportsAndReserve, err := safemath.CheckedAddU64(withdrawLamports, reserve)
	if err != nil {
		return ErrInsufficientFunds
	}
	if isStaked && lamportsAndReserve > stakeAcct.Lamports() {
		return ErrInsufficientFunds
	}
	if withdrawLamports != stakeAcct.Lamports() && lamportsAndReserve > stakeAcct.Lamports() {
		return ErrInsufficientFunds
	}

	if withdrawLamports == stakeAcct.Lamports() {
		err = setStakeAccountState(stakeAcct, &StakeStateV2{Status: StakeStateV2StatusUninitialized})
		if err != nil {
			return err
		}
	}

	recipientAcct, err := execCtx.InstructionAccount(1)
	if err != nil {
		return err
	}
	return relocateLamports(stakeAcct, recipientAcct, withdrawLamports)
}

func StakeProgramMerge(execCtx *ExecutionCtx, signers []solana.PublicKey) error {
	clock, err := checkAcctForClockSysvar(execCtx, 2)
	if err != nil {
		return err
	}
	stakeHistory, err := checkAcctForStakeHistorySysvar(execCtx, 3)
	if err != nil {
		return err
	}

	sourceAcct, err := execCtx.InstructionAccount(1)
	if err != nil {
		return err
	}
	if sourceAcct.Owner() != solana.PublicKey(StakeProgramAddr) {
		return ErrInvalidAccountOwner
	}

	stakeAcct, err := getStakeAccount(execCtx)
	if err != nil {
		return err
	}
	if stakeAcct.Key() == sourceAcct.Key() {
		return ErrInvalidArgument
	}

	state, err := getStakeAccountState(stakeAcct)
	if err != nil {
		return err
	}
	sourceState, err := getStakeAccountState(sourceAcct)
	if err != nil {
		return err
	}

	stakeMergeKind, err := getIfMergeable(state, stakeAcct.Lamports(), clock, stakeHistory)
	if err != nil {
		return err
	}

	// authorization is checked against the destination only; the merge
	// compatibility rules require the source to carry the same authorities
	err = stakeMergeKind.Meta.Authorized.Check(signers, StakeAuthorizeStaker)
	if err != nil {
		return err
	}

	sourceMergeKind, err := getIfMergeable(sourceState, sourceAcct.Lamports(), clock, stakeHistory)
	if err != nil {
		return err
	}

	mergedState, err := stakeMergeKind.Merge(sourceMergeKind, clock)
	if err != nil {
		return err
	}
	if mergedState != nil {
		err = setStakeAccountState(stakeAcct, mergedState)
		if err != nil {
			return err
		}
	}

	// the source is always drained and deinitialized
	err = setStakeAccountState(sourceAcct, &StakeStateV2{Status: StakeStateV2StatusUninitialized})
	if err != nil {
		return err
	}
	return relocateLamports(sourceAcct, stakeAcct, sourceAcct.Lamports())
}

func StakeProgramDeactivateDelinquent(execCtx *ExecutionCtx) error {
	clock := ReadClockSysvar(&execCtx.Accounts)

	delinquentVoteAcct, delinquentVoteRecord, err := getVoteAccount(execCtx, 1)
	if err != nil {
		return err
	}
	_, referenceVoteRecord, err := getVoteAccount(execCtx, 2)
	if err != nil {
		return err
	}

	if !acceptableReferenceEpochCredits(referenceVoteRecord, clock.Epoch) {
		return StakeErrInsufficientReferenceVotes
	}

	stakeAcct, err := getStakeAccount(execCtx)
	if err != nil {
		return err
	}
	state, err := getStakeAccountState(stakeAcct)
	if err != nil {
		return err
	}
	if state.Status != StakeStateV2StatusStake {
		return ErrInvalidAccountData
	}

	if state.Stake.Stake.Delegation.VoterPubkey != delinquentVoteAcct.Key() {
		return StakeErrVoteAddressMismatch
	}

	if !eligibleForDeactivateDelinquent(delinquentVoteRecord, clock.Epoch) {
		return StakeErrMinimumDelinquentEpochsForDeactivationNotMet
	}

	err = state.Stake.Stake.Deactivate(clock.Epoch)
	if err != nil {
		return err
	}
	return setStakeAccountState(stakeAcct, state)
}

// moveStakeOrLamportsSharedChecks validates the account shape shared by
// MoveStake and MoveLamports and classifies both accounts.
func moveStakeOrLamportsSharedChecks(execCtx *ExecutionCtx, lamports uint64) (*MergeKind, *MergeKind, *BorrowedAccount, *BorrowedAccount, error) {
	stakerAuthorityAcct, err := execCtx.InstructionAccount(2)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if !stakerAuthorityAcct.IsSigner() {
		return nil, nil, nil, nil, ErrMissingRequiredSignature
	}
	signers := []solana.PublicKey{stakerAuthorityAcct.Key()}

	sourceAcct, err := getStakeAccount(execCtx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	destAcct, err := execCtx.InstructionAccount(1)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if destAcct.Owner() != solana.PublicKey(StakeProgramAddr) {
		return nil, nil, nil, nil, ErrInvalidAccountOwner
	}

	if sourceAcct.Key() == destAcct.Key() {
		return nil, nil, nil, nil, ErrInvalidInstructionData
	}
	if !sourceAcct.IsWritable() || !destAcct.IsWritable() {
		return nil, nil, nil, nil, ErrInvalidInstructionData
	}
	if lamports == 0 {
		return nil, nil, nil, nil, ErrInvalidArgument
	}

	clock := ReadClockSysvar(&execCtx.Accounts)
	stakeHistory := ReadStakeHistorySysvar(&execCtx.Accounts)

	sourceState, err := getStakeAccountState(sourceAcct)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	sourceMergeKind, err := getIfMergeable(sourceState, sourceAcct.Lamports(), clock, stakeHistory)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	err = sourceMergeKind.Meta.Authorized.Check(signers, StakeAuthorizeStaker)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	destState, err := getStakeAccountState(destAcct)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	destMergeKind, err := getIfMergeable(destState, destAcct.Lamports(), clock, stakeHistory)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	err = metasCanMerge(&sourceMergeKind.Meta, &destMergeKind.Meta, clock)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return sourceMergeKind, destMergeKind, sourceAcct, destAcct, nil
}

// StakeProgramMoveStake moves delegated stake between two fully settled
// accounts sharing authorities and an active delegation target.
func StakeProgramMoveStake(execCtx *ExecutionCtx, lamports uint64) error {
	sourceMergeKind, destMergeKind, sourceAcct, destAcct, err := moveStakeOrLamportsSharedChecks(execCtx, lamports)
	if err != nil {
		return err
	}

	if sourceMergeKind.Status != MergeKindFullyActive {
		return ErrInvalidAccountData
	}
	sourceMeta := sourceMergeKind.Meta
	sourceStake := sourceMergeKind.Stake

	minimumDelegation := GetMinimumDelegation(execCtx.Features)

	sourceFinalStake, err := safemath.CheckedSubU64(sourceStake.Delegation.StakeLamports, lamports)
	if err != nil {
		return ErrInvalidArgument
	}
	if sourceFinalStake != 0 && sourceFinalStake < minimumDelegation {
		return ErrInvalidArgument
	}

	var destMeta Meta

	switch destMergeKind.Status {
	case MergeKindFullyActive:
		if sourceStake.Delegation.VoterPubkey != destMergeKind.Stake.Delegation.VoterPubkey {
			return StakeErrVoteAddressMismatch
		}
		destMeta = destMergeKind.Meta
		destStake := destMergeKind.Stake

		destFinalStake, err := safemath.CheckedAddU64(destStake.Delegation.StakeLamports, lamports)
		if err != nil {
			return ErrArithmeticOverflow
		}
		if destFinalStake < minimumDelegation {
			return ErrInvalidArgument
		}

		err = mergeDelegationStakeAndCreditsObserved(&destStake, lamports, sourceStake.CreditsObserved)
		if err != nil {
			return err
		}

		newDestState := &StakeStateV2{Status: StakeStateV2StatusStake}
		newDestState.Stake.Meta = destMeta
		newDestState.Stake.Stake = destStake
		newDestState.Stake.StakeFlags = stakeFlagsEmpty()
		err = setStakeAccountState(destAcct, newDestState)
		if err != nil {
			return err
		}

	case MergeKindInactive:
		if lamports < minimumDelegation {
			return ErrInvalidArgument
		}
		destMeta = destMergeKind.Meta

		destStake := sourceStake
		destStake.Delegation.StakeLamports = lamports

		newDestState := &StakeStateV2{Status: StakeStateV2StatusStake}
		newDestState.Stake.Meta = destMeta
		newDestState.Stake.Stake = destStake
		newDestState.Stake.StakeFlags = stakeFlagsEmpty()
		err = setStakeAccountState(destAcct, newDestState)
		if err != nil {
			return err
		}

	default:
		return ErrInvalidAccountData
	}

	if sourceFinalStake == 0 {
		newSourceState := &StakeStateV2{Status: StakeStateV2StatusInitialized}
		newSourceState.Initialized.Meta = sourceMeta
		err = setStakeAccountState(sourceAcct, newSourceState)
	} else {
		newSourceState := &StakeStateV2{Status: StakeStateV2StatusStake}
		newSourceState.Stake.Meta = sourceMeta
		newSourceState.Stake.Stake = sourceStake
		newSourceState.Stake.Stake.Delegation.StakeLamports = sourceFinalStake
		newSourceState.Stake.StakeFlags = stakeFlagsEmpty()
		err = setStakeAccountState(sourceAcct, newSourceState)
	}
	if err != nil {
		return err
	}

	err = relocateLamports(sourceAcct, destAcct, lamports)
	if err != nil {
		return err
	}

	if sourceAcct.Lamports() < sourceMeta.RentExemptReserve ||
		destAcct.Lamports() < destMeta.RentExemptReserve {
		klog.Warningf("stake move violated lamport balance assumptions")
		return ErrInvalidArgument
	}

	return nil
}

// StakeProgramMoveLamports moves undelegated lamports between two settled
// accounts sharing authorities.
func StakeProgramMoveLamports(execCtx *ExecutionCtx, lamports uint64) error {
	sourceMergeKind, destMergeKind, sourceAcct, destAcct, err := moveStakeOrLamportsSharedChecks(execCtx, lamports)
	if err != nil {
		return err
	}

	// a destination mid-transition cannot absorb a balance
	if destMergeKind.Status == MergeKindTransitioning {
		return ErrInvalidAccountData
	}

	var sourceFreeLamports uint64
	switch sourceMergeKind.Status {
	case MergeKindFullyActive:
		sourceFreeLamports = safemath.SaturatingSubU64(
			safemath.SaturatingSubU64(sourceAcct.Lamports(), sourceMergeKind.Stake.Delegation.StakeLamports),
			sourceMergeKind.Meta.RentExemptReserve)
	case MergeKindInactive:
		sourceFreeLamports = safemath.SaturatingSubU64(sourceAcct.Lamports(), sourceMergeKind.Meta.RentExemptReserve)
	default:
		return ErrInvalidAccountData
	}

	if lamports > sourceFreeLamports {
		return ErrInvalidArgument
	}

	return relocateLamports(sourceAcct, destAcct, lamports)
}
