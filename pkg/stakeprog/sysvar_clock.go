package stakeprog

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.stakewheel.io/stakewheel/pkg/accounts"
	"go.stakewheel.io/stakewheel/pkg/base58"
)

var SysvarClockAddr = base58.MustDecodeFromString("SysvarC1ock11111111111111111111111111111111")

const SysvarClockStructLen = 40

type SysvarClock struct {
	Slot                uint64
	EpochStartTimestamp int64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       int64
}

func (sc *SysvarClock) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	sc.Slot, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read Slot when decoding SysvarClock: %w", err)
	}
	sc.EpochStartTimestamp, err = decoder.ReadInt64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read EpochStartTimestamp when decoding SysvarClock: %w", err)
	}
	sc.Epoch, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read Epoch when decoding SysvarClock: %w", err)
	}
	sc.LeaderScheduleEpoch, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read LeaderScheduleEpoch when decoding SysvarClock: %w", err)
	}
	sc.UnixTimestamp, err = decoder.ReadInt64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read UnixTimestamp when decoding SysvarClock: %w", err)
	}
	return
}

func (sc *SysvarClock) MustUnmarshalWithDecoder(decoder *bin.Decoder) {
	err := sc.UnmarshalWithDecoder(decoder)
	if err != nil {
		panic(err.Error())
	}
}

func (sc *SysvarClock) MarshalWithEncoder(encoder *bin.Encoder) error {
	_ = encoder.WriteUint64(sc.Slot, bin.LE)
	_ = encoder.WriteInt64(sc.EpochStartTimestamp, bin.LE)
	_ = encoder.WriteUint64(sc.Epoch, bin.LE)
	_ = encoder.WriteUint64(sc.LeaderScheduleEpoch, bin.LE)
	return encoder.WriteInt64(sc.UnixTimestamp, bin.LE)
}

func ReadClockSysvar(accts *accounts.Accounts) SysvarClock {
	clockSysvarAcct, err := (*accts).GetAccount(&SysvarClockAddr)
	if err != nil {
		panic("failed to read clock sysvar account")
	}

	dec := bin.NewBinDecoder(clockSysvarAcct.Data)

	var clock SysvarClock
	clock.MustUnmarshalWithDecoder(dec)

	return clock
}

func WriteClockSysvar(accts *accounts.Accounts, clock SysvarClock) {
	clockSysvarAcct, err := (*accts).GetAccount(&SysvarClockAddr)
	if err != nil {
		panic("failed to read clock sysvar account")
	}

	data := new(bytes.Buffer)
	enc := bin.NewBinEncoder(data)

	err = clock.MarshalWithEncoder(enc)
	if err != nil {
		panic(fmt.Sprintf("failed to serialize Clock sysvar: %s", err))
	}

	clockSysvarAcct.Data = data.Bytes()
}

func checkAcctForClockSysvar(execCtx *ExecutionCtx, instrAcctIdx int) (SysvarClock, error) {
	acct, err := execCtx.InstructionAccount(instrAcctIdx)
	if err != nil {
		return SysvarClock{}, err
	}
	if acct.Key() != solana.PublicKey(SysvarClockAddr) {
		return SysvarClock{}, ErrUnsupportedSysvar
	}
	return ReadClockSysvar(&execCtx.Accounts), nil
}
