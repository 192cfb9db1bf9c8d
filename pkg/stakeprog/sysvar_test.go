package stakeprog

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"go.stakewheel.io/stakewheel/pkg/accounts"
)

func TestClockSysvarReadWrite(t *testing.T) {
	accts := accounts.NewMemAccounts()
	addr := SysvarClockAddr
	err := accts.SetAccount(&addr, &accounts.Account{Key: solana.PublicKey(addr)})
	assert.NoError(t, err)

	var acctsIface accounts.Accounts = accts
	clock := SysvarClock{Slot: 1234, EpochStartTimestamp: 5000, Epoch: 7, LeaderScheduleEpoch: 8, UnixTimestamp: 6000}
	WriteClockSysvar(&acctsIface, clock)

	readClock := ReadClockSysvar(&acctsIface)
	assert.Equal(t, clock, readClock)
}

func TestRentSysvarMinimumBalance(t *testing.T) {
	// (128 + 200) * 3480 * 2.0
	assert.Equal(t, uint64(2282880), testRent.MinimumBalance(StakeStateV2AccountSize))

	assert.True(t, testRent.IsExempt(2282880, StakeStateV2AccountSize))
	assert.False(t, testRent.IsExempt(2282879, StakeStateV2AccountSize))
}

func TestStakeHistorySysvarGet(t *testing.T) {
	history := SysvarStakeHistory{
		{Epoch: 10, Entry: StakeHistoryEntry{Effective: 100, Activating: 10, Deactivating: 5}},
		{Epoch: 9, Entry: StakeHistoryEntry{Effective: 90}},
	}

	entry := history.Get(10)
	assert.NotNil(t, entry)
	assert.Equal(t, uint64(100), entry.Effective)

	assert.Nil(t, history.Get(11))
}

func TestStakeHistorySysvarReadWrite(t *testing.T) {
	accts := accounts.NewMemAccounts()
	addr := SysvarStakeHistoryAddr
	err := accts.SetAccount(&addr, &accounts.Account{Key: solana.PublicKey(addr)})
	assert.NoError(t, err)

	var acctsIface accounts.Accounts = accts
	history := SysvarStakeHistory{
		{Epoch: 3, Entry: StakeHistoryEntry{Effective: 7, Activating: 1, Deactivating: 2}},
	}
	WriteStakeHistorySysvar(&acctsIface, history)

	readHistory := ReadStakeHistorySysvar(&acctsIface)
	assert.Equal(t, history, readHistory)
}

func TestCheckAcctForSysvarRejectsWrongAccount(t *testing.T) {
	execCtx := newTestExecCtx(t, []*BorrowedAccount{
		sysvarBorrowedAccount(SysvarRentAddr),
	}, SysvarClock{Epoch: 3})

	_, err := checkAcctForClockSysvar(execCtx, 0)
	assert.Equal(t, ErrUnsupportedSysvar, err)

	_, err = checkAcctForStakeHistorySysvar(execCtx, 0)
	assert.Equal(t, ErrUnsupportedSysvar, err)

	rent, err := checkAcctForRentSysvar(execCtx, 0)
	assert.NoError(t, err)
	assert.Equal(t, testRent, rent)
}
