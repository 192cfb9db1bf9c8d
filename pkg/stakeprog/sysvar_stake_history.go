package stakeprog

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.stakewheel.io/stakewheel/pkg/accounts"
	"go.stakewheel.io/stakewheel/pkg/base58"
)

var SysvarStakeHistoryAddr = base58.MustDecodeFromString("SysvarStakeHistory1111111111111111111111111")

type StakeHistoryEntry struct {
	Effective    uint64
	Activating   uint64
	Deactivating uint64
}

type StakeHistoryPair struct {
	Epoch uint64
	Entry StakeHistoryEntry
}

// SysvarStakeHistory holds one aggregate entry per past epoch, newest first.
type SysvarStakeHistory []StakeHistoryPair

func (sh *SysvarStakeHistory) Get(epoch uint64) *StakeHistoryEntry {
	for _, pair := range *sh {
		if pair.Epoch == epoch {
			return &pair.Entry
		}
	}
	return nil
}

func (sh *SysvarStakeHistory) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	numEntries, err := decoder.ReadUint64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read length of StakeHistory vec: %w", err)
	}

	for count := uint64(0); count < numEntries; count++ {
		var pair StakeHistoryPair

		pair.Epoch, err = decoder.ReadUint64(bin.LE)
		if err != nil {
			return fmt.Errorf("failed to read Epoch when decoding SysvarStakeHistory: %w", err)
		}
		pair.Entry.Effective, err = decoder.ReadUint64(bin.LE)
		if err != nil {
			return fmt.Errorf("failed to read Effective when decoding SysvarStakeHistory: %w", err)
		}
		pair.Entry.Activating, err = decoder.ReadUint64(bin.LE)
		if err != nil {
			return fmt.Errorf("failed to read Activating when decoding SysvarStakeHistory: %w", err)
		}
		pair.Entry.Deactivating, err = decoder.ReadUint64(bin.LE)
		if err != nil {
			return fmt.Errorf("failed to read Deactivating when decoding SysvarStakeHistory: %w", err)
		}

		*sh = append(*sh, pair)
	}

	return
}

func (sh *SysvarStakeHistory) MustUnmarshalWithDecoder(decoder *bin.Decoder) {
	err := sh.UnmarshalWithDecoder(decoder)
	if err != nil {
		panic(err.Error())
	}
}

func (sh SysvarStakeHistory) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteUint64(uint64(len(sh)), bin.LE)
	if err != nil {
		return err
	}
	for _, pair := range sh {
		_ = encoder.WriteUint64(pair.Epoch, bin.LE)
		_ = encoder.WriteUint64(pair.Entry.Effective, bin.LE)
		_ = encoder.WriteUint64(pair.Entry.Activating, bin.LE)
		err = encoder.WriteUint64(pair.Entry.Deactivating, bin.LE)
		if err != nil {
			return err
		}
	}
	return nil
}

func ReadStakeHistorySysvar(accts *accounts.Accounts) SysvarStakeHistory {
	stakeHistorySysvarAcct, err := (*accts).GetAccount(&SysvarStakeHistoryAddr)
	if err != nil {
		panic("failed to read stake history sysvar account")
	}

	dec := bin.NewBinDecoder(stakeHistorySysvarAcct.Data)

	var stakeHistory SysvarStakeHistory
	stakeHistory.MustUnmarshalWithDecoder(dec)

	return stakeHistory
}

func WriteStakeHistorySysvar(accts *accounts.Accounts, stakeHistory SysvarStakeHistory) {
	stakeHistorySysvarAcct, err := (*accts).GetAccount(&SysvarStakeHistoryAddr)
	if err != nil {
		panic("failed to read stake history sysvar account")
	}

	data := new(bytes.Buffer)
	enc := bin.NewBinEncoder(data)

	err = stakeHistory.MarshalWithEncoder(enc)
	if err != nil {
		panic(fmt.Sprintf("failed to serialize StakeHistory sysvar: %s", err))
	}

	stakeHistorySysvarAcct.Data = data.Bytes()
}

func checkAcctForStakeHistorySysvar(execCtx *ExecutionCtx, instrAcctIdx int) (SysvarStakeHistory, error) {
	acct, err := execCtx.InstructionAccount(instrAcctIdx)
	if err != nil {
		return nil, err
	}
	if acct.Key() != solana.PublicKey(SysvarStakeHistoryAddr) {
		return nil, ErrUnsupportedSysvar
	}
	return ReadStakeHistorySysvar(&execCtx.Accounts), nil
}
