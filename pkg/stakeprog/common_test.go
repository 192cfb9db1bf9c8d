package stakeprog

import (
	"bytes"
	"math"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"go.stakewheel.io/stakewheel/pkg/accounts"
	"go.stakewheel.io/stakewheel/pkg/features"
)

func testPubkey(fill byte) solana.PublicKey {
	var pk solana.PublicKey
	for i := range pk {
		pk[i] = fill
	}
	return pk
}

var testRent = SysvarRent{
	LamportsPerUint8Year: 3480,
	ExemptionThreshold:   2.0,
	BurnPercent:          50,
}

// rent-exempt reserve for a stake account under testRent
func testRentExemptReserve() uint64 {
	return testRent.MinimumBalance(StakeStateV2AccountSize)
}

func newStakeBorrowedAccount(key solana.PublicKey, lamports uint64, data []byte) *BorrowedAccount {
	return &BorrowedAccount{
		Account: &accounts.Account{
			Key:      key,
			Lamports: lamports,
			Data:     data,
			Owner:    solana.PublicKey(StakeProgramAddr),
		},
		Writable: true,
	}
}

func stakeAccountWithState(t *testing.T, key solana.PublicKey, lamports uint64, state *StakeStateV2) *BorrowedAccount {
	data, err := MarshalStakeState(state)
	assert.NoError(t, err)
	return newStakeBorrowedAccount(key, lamports, data)
}

func uninitializedStakeAccount(key solana.PublicKey, lamports uint64) *BorrowedAccount {
	return newStakeBorrowedAccount(key, lamports, make([]byte, StakeStateV2AccountSize))
}

func voteBorrowedAccount(t *testing.T, key solana.PublicKey, voteRecord *VoteRecord) *BorrowedAccount {
	buffer := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(buffer)
	err := voteRecord.MarshalWithEncoder(encoder)
	assert.NoError(t, err)

	return &BorrowedAccount{
		Account: &accounts.Account{
			Key:   key,
			Data:  buffer.Bytes(),
			Owner: solana.PublicKey(VoteProgramAddr),
		},
	}
}

func sysvarBorrowedAccount(addr [32]byte) *BorrowedAccount {
	return &BorrowedAccount{Account: &accounts.Account{Key: solana.PublicKey(addr)}}
}

func signerAccount(key solana.PublicKey) *BorrowedAccount {
	return &BorrowedAccount{
		Account: &accounts.Account{Key: key},
		Signer:  true,
	}
}

// newTestExecCtx builds an execution context with the given instruction
// accounts and a sysvar store seeded with clock, rent and stake history.
func newTestExecCtx(t *testing.T, instrAccounts []*BorrowedAccount, clock SysvarClock) *ExecutionCtx {
	accts := accounts.NewMemAccounts()

	for _, addr := range [][32]byte{SysvarClockAddr, SysvarRentAddr, SysvarStakeHistoryAddr} {
		a := addr
		err := accts.SetAccount(&a, &accounts.Account{Key: solana.PublicKey(a)})
		assert.NoError(t, err)
	}

	var acctsIface accounts.Accounts = accts
	WriteClockSysvar(&acctsIface, clock)
	WriteRentSysvar(&acctsIface, testRent)
	WriteStakeHistorySysvar(&acctsIface, SysvarStakeHistory{})

	return &ExecutionCtx{
		Accounts:      accts,
		InstrAccounts: instrAccounts,
		Features:      features.NewFeaturesDefault(),
	}
}

func activeStakeState(staker solana.PublicKey, withdrawer solana.PublicKey, voter solana.PublicKey, stakeLamports uint64, activationEpoch uint64) *StakeStateV2 {
	state := &StakeStateV2{Status: StakeStateV2StatusStake}
	state.Stake.Meta = Meta{
		RentExemptReserve: testRentExemptReserve(),
		Authorized:        Authorized{Staker: staker, Withdrawer: withdrawer},
	}
	state.Stake.Stake = Stake{
		Delegation: Delegation{
			VoterPubkey:       voter,
			StakeLamports:     stakeLamports,
			ActivationEpoch:   activationEpoch,
			DeactivationEpoch: math.MaxUint64,
		},
		CreditsObserved: 100,
	}
	return state
}

func initializedStakeState(staker solana.PublicKey, withdrawer solana.PublicKey) *StakeStateV2 {
	state := &StakeStateV2{Status: StakeStateV2StatusInitialized}
	state.Initialized.Meta = Meta{
		RentExemptReserve: testRentExemptReserve(),
		Authorized:        Authorized{Staker: staker, Withdrawer: withdrawer},
	}
	return state
}

func encodeInstruction(t *testing.T, instructionType uint32, payload func(encoder *bin.Encoder) error) []byte {
	buffer := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(buffer)
	err := encoder.WriteUint32(instructionType, bin.LE)
	assert.NoError(t, err)
	if payload != nil {
		err = payload(encoder)
		assert.NoError(t, err)
	}
	return buffer.Bytes()
}
