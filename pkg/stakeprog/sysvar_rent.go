package stakeprog

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.stakewheel.io/stakewheel/pkg/accounts"
	"go.stakewheel.io/stakewheel/pkg/base58"
)

var SysvarRentAddr = base58.MustDecodeFromString("SysvarRent111111111111111111111111111111111")

const SysvarRentStructLen = 17

// accountStorageOverhead is charged on top of the account's own data when
// computing the rent-exempt reserve.
const accountStorageOverhead = 128

type SysvarRent struct {
	LamportsPerUint8Year uint64
	ExemptionThreshold   float64
	BurnPercent          byte
}

func (sr *SysvarRent) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	sr.LamportsPerUint8Year, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read LamportsPerUint8Year when decoding SysvarRent: %w", err)
	}
	sr.ExemptionThreshold, err = decoder.ReadFloat64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read ExemptionThreshold when decoding SysvarRent: %w", err)
	}
	sr.BurnPercent, err = decoder.ReadByte()
	if err != nil {
		return fmt.Errorf("failed to read BurnPercent when decoding SysvarRent: %w", err)
	}
	return
}

func (sr *SysvarRent) MustUnmarshalWithDecoder(decoder *bin.Decoder) {
	err := sr.UnmarshalWithDecoder(decoder)
	if err != nil {
		panic(err.Error())
	}
}

func (sr *SysvarRent) MarshalWithEncoder(encoder *bin.Encoder) error {
	_ = encoder.WriteUint64(sr.LamportsPerUint8Year, bin.LE)
	_ = encoder.WriteFloat64(sr.ExemptionThreshold, bin.LE)
	return encoder.WriteByte(sr.BurnPercent)
}

func (sr *SysvarRent) MinimumBalance(dataLen uint64) uint64 {
	storageBytes := accountStorageOverhead + dataLen
	return uint64(float64(storageBytes*sr.LamportsPerUint8Year) * sr.ExemptionThreshold)
}

func (sr *SysvarRent) IsExempt(lamports uint64, dataLen uint64) bool {
	return lamports >= sr.MinimumBalance(dataLen)
}

func ReadRentSysvar(accts *accounts.Accounts) SysvarRent {
	rentSysvarAcct, err := (*accts).GetAccount(&SysvarRentAddr)
	if err != nil {
		panic("failed to read rent sysvar account")
	}

	dec := bin.NewBinDecoder(rentSysvarAcct.Data)

	var rent SysvarRent
	rent.MustUnmarshalWithDecoder(dec)

	return rent
}

func WriteRentSysvar(accts *accounts.Accounts, rent SysvarRent) {
	rentSysvarAcct, err := (*accts).GetAccount(&SysvarRentAddr)
	if err != nil {
		panic("failed to read rent sysvar account")
	}

	data := new(bytes.Buffer)
	enc := bin.NewBinEncoder(data)

	err = rent.MarshalWithEncoder(enc)
	if err != nil {
		panic(fmt.Sprintf("failed to serialize Rent sysvar: %s", err))
	}

	rentSysvarAcct.Data = data.Bytes()
}

func checkAcctForRentSysvar(execCtx *ExecutionCtx, instrAcctIdx int) (SysvarRent, error) {
	acct, err := execCtx.InstructionAccount(instrAcctIdx)
	if err != nil {
		return SysvarRent{}, err
	}
	if acct.Key() != solana.PublicKey(SysvarRentAddr) {
		return SysvarRent{}, ErrUnsupportedSysvar
	}
	return ReadRentSysvar(&execCtx.Accounts), nil
}
