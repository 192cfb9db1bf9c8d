package stakeprog

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// instruction discriminants, u32 little-endian at the head of the
// instruction data
const (
	StakeProgramInstrTypeInitialize = iota
	StakeProgramInstrTypeAuthorize
	StakeProgramInstrTypeDelegateStake
	StakeProgramInstrTypeSplit
	StakeProgramInstrTypeWithdraw
	StakeProgramInstrTypeDeactivate
	StakeProgramInstrTypeSetLockup
	StakeProgramInstrTypeMerge
	StakeProgramInstrTypeAuthorizeWithSeed
	StakeProgramInstrTypeInitializeChecked
	StakeProgramInstrTypeAuthorizeChecked
	StakeProgramInstrTypeAuthorizeCheckedWithSeed
	StakeProgramInstrTypeSetLockupChecked
	StakeProgramInstrTypeGetMinimumDelegation
	StakeProgramInstrTypeDeactivateDelinquent
	StakeProgramInstrTypeRedelegate
	StakeProgramInstrTypeMoveStake
	StakeProgramInstrTypeMoveLamports
)

type StakeInstrInitialize struct {
	Authorized Authorized
	Lockup     StakeLockup
}

type StakeInstrAuthorize struct {
	NewAuthorized  solana.PublicKey
	StakeAuthorize uint32
}

type StakeInstrSplit struct {
	Lamports uint64
}

type StakeInstrWithdraw struct {
	Lamports uint64
}

type StakeInstrSetLockup struct {
	UnixTimestamp *int64
	Epoch         *uint64
	Custodian     *solana.PublicKey
}

type StakeInstrAuthorizeWithSeed struct {
	NewAuthorizedPubkey solana.PublicKey
	StakeAuthorize      uint32
	AuthoritySeed       string
	AuthorityOwner      solana.PublicKey
}

type StakeInstrAuthorizeChecked struct {
	StakeAuthorize uint32
}

type StakeInstrAuthorizeCheckedWithSeed struct {
	StakeAuthorize uint32
	AuthoritySeed  string
	AuthorityOwner solana.PublicKey
}

type StakeInstrSetLockupChecked struct {
	UnixTimestamp *int64
	Epoch         *uint64
}

type StakeInstrMoveStake struct {
	Lamports uint64
}

type StakeInstrMoveLamports struct {
	Lamports uint64
}

func readOptionalInt64(decoder *bin.Decoder) (*int64, error) {
	present, err := decoder.ReadByte()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	value, err := decoder.ReadInt64(bin.LE)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func readOptionalUint64(decoder *bin.Decoder) (*uint64, error) {
	present, err := decoder.ReadByte()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	value, err := decoder.ReadUint64(bin.LE)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func readOptionalPubkey(decoder *bin.Decoder) (*solana.PublicKey, error) {
	present, err := decoder.ReadByte()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	pkBytes, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return nil, err
	}
	var pk solana.PublicKey
	copy(pk[:], pkBytes)
	return &pk, nil
}

func (instr *StakeInstrInitialize) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	err := instr.Authorized.UnmarshalWithDecoder(decoder)
	if err != nil {
		return err
	}
	return instr.Lockup.UnmarshalWithDecoder(decoder)
}

func (instr *StakeInstrInitialize) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := instr.Authorized.MarshalWithEncoder(encoder)
	if err != nil {
		return err
	}
	return instr.Lockup.MarshalWithEncoder(encoder)
}

func (instr *StakeInstrAuthorize) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	newAuthorized, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(instr.NewAuthorized[:], newAuthorized)

	instr.StakeAuthorize, err = decoder.ReadUint32(bin.LE)
	return err
}

func (instr *StakeInstrAuthorize) MarshalWithEncoder(encoder *bin.Encoder) error {
	_ = encoder.WriteBytes(instr.NewAuthorized[:], false)
	return encoder.WriteUint32(instr.StakeAuthorize, bin.LE)
}

func (instr *StakeInstrSplit) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	instr.Lamports, err = decoder.ReadUint64(bin.LE)
	return err
}

func (instr *StakeInstrSplit) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteUint64(instr.Lamports, bin.LE)
}

func (instr *StakeInstrWithdraw) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	instr.Lamports, err = decoder.ReadUint64(bin.LE)
	return err
}

func (instr *StakeInstrWithdraw) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteUint64(instr.Lamports, bin.LE)
}

func (instr *StakeInstrSetLockup) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	instr.UnixTimestamp, err = readOptionalInt64(decoder)
	if err != nil {
		return err
	}
	instr.Epoch, err = readOptionalUint64(decoder)
	if err != nil {
		return err
	}
	instr.Custodian, err = readOptionalPubkey(decoder)
	return err
}

func (instr *StakeInstrSetLockup) MarshalWithEncoder(encoder *bin.Encoder) error {
	if instr.UnixTimestamp != nil {
		_ = encoder.WriteByte(1)
		_ = encoder.WriteInt64(*instr.UnixTimestamp, bin.LE)
	} else {
		_ = encoder.WriteByte(0)
	}
	if instr.Epoch != nil {
		_ = encoder.WriteByte(1)
		_ = encoder.WriteUint64(*instr.Epoch, bin.LE)
	} else {
		_ = encoder.WriteByte(0)
	}
	if instr.Custodian != nil {
		_ = encoder.WriteByte(1)
		return encoder.WriteBytes(instr.Custodian[:], false)
	}
	return encoder.WriteByte(0)
}

func (instr *StakeInstrAuthorizeWithSeed) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	newAuthorized, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(instr.NewAuthorizedPubkey[:], newAuthorized)

	instr.StakeAuthorize, err = decoder.ReadUint32(bin.LE)
	if err != nil {
		return err
	}
	instr.AuthoritySeed, err = decoder.ReadRustString()
	if err != nil {
		return err
	}
	authorityOwner, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(instr.AuthorityOwner[:], authorityOwner)
	return nil
}

func (instr *StakeInstrAuthorizeWithSeed) MarshalWithEncoder(encoder *bin.Encoder) error {
	_ = encoder.WriteBytes(instr.NewAuthorizedPubkey[:], false)
	_ = encoder.WriteUint32(instr.StakeAuthorize, bin.LE)
	_ = encoder.WriteRustString(instr.AuthoritySeed)
	return encoder.WriteBytes(instr.AuthorityOwner[:], false)
}

func (instr *StakeInstrAuthorizeChecked) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	instr.StakeAuthorize, err = decoder.ReadUint32(bin.LE)
	return err
}

func (instr *StakeInstrAuthorizeChecked) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteUint32(instr.StakeAuthorize, bin.LE)
}

func (instr *StakeInstrAuthorizeCheckedWithSeed) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	instr.StakeAuthorize, err = decoder.ReadUint32(bin.LE)
	if err != nil {
		return err
	}
	instr.AuthoritySeed, err = decoder.ReadRustString()
	if err != nil {
		return err
	}
	authorityOwner, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(instr.AuthorityOwner[:], authorityOwner)
	return nil
}

func (instr *StakeInstrAuthorizeCheckedWithSeed) MarshalWithEncoder(encoder *bin.Encoder) error {
	_ = encoder.WriteUint32(instr.StakeAuthorize, bin.LE)
	_ = encoder.WriteRustString(instr.AuthoritySeed)
	return encoder.WriteBytes(instr.AuthorityOwner[:], false)
}

func (instr *StakeInstrSetLockupChecked) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	instr.UnixTimestamp, err = readOptionalInt64(decoder)
	if err != nil {
		return err
	}
	instr.Epoch, err = readOptionalUint64(decoder)
	return err
}

func (instr *StakeInstrSetLockupChecked) MarshalWithEncoder(encoder *bin.Encoder) error {
	if instr.UnixTimestamp != nil {
		_ = encoder.WriteByte(1)
		_ = encoder.WriteInt64(*instr.UnixTimestamp, bin.LE)
	} else {
		_ = encoder.WriteByte(0)
	}
	if instr.Epoch != nil {
		_ = encoder.WriteByte(1)
		return encoder.WriteUint64(*instr.Epoch, bin.LE)
	}
	return encoder.WriteByte(0)
}

func (instr *StakeInstrMoveStake) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	instr.Lamports, err = decoder.ReadUint64(bin.LE)
	return err
}

func (instr *StakeInstrMoveStake) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteUint64(instr.Lamports, bin.LE)
}

func (instr *StakeInstrMoveLamports) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	instr.Lamports, err = decoder.ReadUint64(bin.LE)
	return err
}

func (instr *StakeInstrMoveLamports) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteUint64(instr.Lamports, bin.LE)
}
