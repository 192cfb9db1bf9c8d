package stakeprog

import (
	"bytes"
	"math"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// account state discriminants, stored in byte 0 of the account image
const (
	StakeStateV2StatusUninitialized = iota
	StakeStateV2StatusInitialized
	StakeStateV2StatusStake
	StakeStateV2StatusRewardsPool
)

// StakeStateV2AccountSize is the fixed size of every stake account image.
// Unused trailing bytes are always zero.
const StakeStateV2AccountSize = 200

type Authorized struct {
	Staker     solana.PublicKey
	Withdrawer solana.PublicKey
}

type StakeLockup struct {
	UnixTimestamp int64
	Epoch         uint64
	Custodian     solana.PublicKey
}

type Meta struct {
	RentExemptReserve uint64
	Authorized        Authorized
	Lockup            StakeLockup
}

type Delegation struct {
	VoterPubkey       solana.PublicKey
	StakeLamports     uint64
	ActivationEpoch   uint64
	DeactivationEpoch uint64
}

type Stake struct {
	Delegation      Delegation
	CreditsObserved uint64
}

type StakeFlags struct {
	Bits byte
}

type StakeStateV2Initialized struct {
	Meta Meta
}

type StakeStateV2Stake struct {
	Meta       Meta
	Stake      Stake
	StakeFlags StakeFlags
}

type StakeStateV2 struct {
	Status      uint32
	Initialized StakeStateV2Initialized
	Stake       StakeStateV2Stake
}

func (authorized *Authorized) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	staker, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(authorized.Staker[:], staker)

	withdrawer, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(authorized.Withdrawer[:], withdrawer)
	return nil
}

func (authorized *Authorized) MarshalWithEncoder(encoder *bin.Encoder) error {
	_ = encoder.WriteBytes(authorized.Staker[:], false)
	return encoder.WriteBytes(authorized.Withdrawer[:], false)
}

func (lockup *StakeLockup) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	lockup.UnixTimestamp, err = decoder.ReadInt64(bin.LE)
	if err != nil {
		return err
	}
	lockup.Epoch, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	custodian, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(lockup.Custodian[:], custodian)
	return nil
}

func (lockup *StakeLockup) MarshalWithEncoder(encoder *bin.Encoder) error {
	_ = encoder.WriteInt64(lockup.UnixTimestamp, bin.LE)
	_ = encoder.WriteUint64(lockup.Epoch, bin.LE)
	return encoder.WriteBytes(lockup.Custodian[:], false)
}

// IsInForce reports whether the lockup still gates balance movement at the
// given point in time. The custodian, when signing, is exempt.
func (lockup *StakeLockup) IsInForce(clock *SysvarClock, custodian *solana.PublicKey) bool {
	if custodian != nil && *custodian == lockup.Custodian {
		return false
	}
	return lockup.UnixTimestamp > clock.UnixTimestamp || lockup.Epoch > clock.Epoch
}

func (meta *Meta) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	meta.RentExemptReserve, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	err = meta.Authorized.UnmarshalWithDecoder(decoder)
	if err != nil {
		return err
	}
	return meta.Lockup.UnmarshalWithDecoder(decoder)
}

func (meta *Meta) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteUint64(meta.RentExemptReserve, bin.LE)
	if err != nil {
		return err
	}
	err = meta.Authorized.MarshalWithEncoder(encoder)
	if err != nil {
		return err
	}
	return meta.Lockup.MarshalWithEncoder(encoder)
}

func (delegation *Delegation) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	voterPubkey, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(delegation.VoterPubkey[:], voterPubkey)

	delegation.StakeLamports, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	delegation.ActivationEpoch, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	delegation.DeactivationEpoch, err = decoder.ReadUint64(bin.LE)
	return err
}

func (delegation *Delegation) MarshalWithEncoder(encoder *bin.Encoder) error {
	_ = encoder.WriteBytes(delegation.VoterPubkey[:], false)
	_ = encoder.WriteUint64(delegation.StakeLamports, bin.LE)
	_ = encoder.WriteUint64(delegation.ActivationEpoch, bin.LE)
	return encoder.WriteUint64(delegation.DeactivationEpoch, bin.LE)
}

func (stake *Stake) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	err = stake.Delegation.UnmarshalWithDecoder(decoder)
	if err != nil {
		return err
	}
	stake.CreditsObserved, err = decoder.ReadUint64(bin.LE)
	return err
}

func (stake *Stake) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := stake.Delegation.MarshalWithEncoder(encoder)
	if err != nil {
		return err
	}
	return encoder.WriteUint64(stake.CreditsObserved, bin.LE)
}

func (flags *StakeFlags) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	flags.Bits, err = decoder.ReadByte()
	return err
}

func (flags *StakeFlags) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteByte(flags.Bits)
}

func stakeFlagsEmpty() StakeFlags {
	return StakeFlags{Bits: 0}
}

// union combines the flag bits of two merged accounts.
func (flags *StakeFlags) Union(other StakeFlags) StakeFlags {
	return StakeFlags{Bits: flags.Bits | other.Bits}
}

func (state *StakeStateV2) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	status, err := decoder.ReadByte()
	if err != nil {
		return err
	}
	state.Status = uint32(status)

	switch state.Status {
	case StakeStateV2StatusUninitialized, StakeStateV2StatusRewardsPool:
		// no payload

	case StakeStateV2StatusInitialized:
		err = state.Initialized.Meta.UnmarshalWithDecoder(decoder)
		if err != nil {
			return err
		}

	case StakeStateV2StatusStake:
		err = state.Stake.Meta.UnmarshalWithDecoder(decoder)
		if err != nil {
			return err
		}
		err = state.Stake.Stake.UnmarshalWithDecoder(decoder)
		if err != nil {
			return err
		}
		err = state.Stake.StakeFlags.UnmarshalWithDecoder(decoder)
		if err != nil {
			return err
		}

	default:
		return invalidEnumValue
	}

	return nil
}

func (state *StakeStateV2) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteByte(byte(state.Status))
	if err != nil {
		return err
	}

	switch state.Status {
	case StakeStateV2StatusUninitialized, StakeStateV2StatusRewardsPool:
		// no payload

	case StakeStateV2StatusInitialized:
		err = state.Initialized.Meta.MarshalWithEncoder(encoder)

	case StakeStateV2StatusStake:
		err = state.Stake.Meta.MarshalWithEncoder(encoder)
		if err != nil {
			return err
		}
		err = state.Stake.Stake.MarshalWithEncoder(encoder)
		if err != nil {
			return err
		}
		err = state.Stake.StakeFlags.MarshalWithEncoder(encoder)

	default:
		err = invalidEnumValue
	}

	return err
}

// UnmarshalStakeState decodes a full stake account image. Short buffers and
// unknown discriminants surface as corrupt account data.
func UnmarshalStakeState(data []byte) (*StakeStateV2, error) {
	if len(data) < StakeStateV2AccountSize {
		return nil, ErrInvalidAccountData
	}

	state := new(StakeStateV2)
	decoder := bin.NewBinDecoder(data)
	err := state.UnmarshalWithDecoder(decoder)
	if err != nil {
		return nil, ErrInvalidAccountData
	}
	return state, nil
}

// MarshalStakeState produces the fixed-size account image. The buffer is
// zeroed first so that bytes past the encoded variant never leak stale state.
func MarshalStakeState(state *StakeStateV2) ([]byte, error) {
	buffer := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(buffer)

	err := state.MarshalWithEncoder(encoder)
	if err != nil {
		return nil, err
	}
	if buffer.Len() > StakeStateV2AccountSize {
		return nil, ErrAccountDataTooSmall
	}

	stateBytes := make([]byte, StakeStateV2AccountSize)
	copy(stateBytes, buffer.Bytes())
	return stateBytes, nil
}

func setStakeAccountState(acct *BorrowedAccount, state *StakeStateV2) error {
	if uint64(len(acct.Data())) < StakeStateV2AccountSize {
		return ErrAccountDataTooSmall
	}
	stateBytes, err := MarshalStakeState(state)
	if err != nil {
		return err
	}
	return acct.SetData(stateBytes)
}

func getStakeAccountState(acct *BorrowedAccount) (*StakeStateV2, error) {
	return UnmarshalStakeState(acct.Data())
}

// MetaFromState returns the Meta of an Initialized or Stake account.
func (state *StakeStateV2) MetaFromState() (*Meta, error) {
	switch state.Status {
	case StakeStateV2StatusInitialized:
		return &state.Initialized.Meta, nil
	case StakeStateV2StatusStake:
		return &state.Stake.Meta, nil
	default:
		return nil, ErrInvalidAccountData
	}
}

func isBootstrapDelegation(delegation *Delegation) bool {
	return delegation.ActivationEpoch == math.MaxUint64
}
